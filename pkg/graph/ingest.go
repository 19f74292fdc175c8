package graph

import (
	"strings"

	"github.com/graphloom/graphloom/backend/pkg/common"
)

// CleanExtraction validates untrusted extraction output and produces a batch
// satisfying the graph store's contract. Entities without a name or type are
// dropped, duplicate names collapse case-insensitively onto the first
// occurrence, and relationships survive only when both endpoints resolve to a
// kept entity. A nil result yields an empty batch.
func CleanExtraction(res *ExtractionResult) common.Batch {
	batch := common.Batch{
		Entities:      []common.Entity{},
		Relationships: []common.Relationship{},
	}
	if res == nil {
		return batch
	}

	// First occurrence wins; later duplicates only differ by casing or
	// come from repeated mentions in the same unit.
	kept := make(map[string]string, len(res.Entities))
	for _, e := range res.Entities {
		name := strings.TrimSpace(e.Name)
		typ := strings.TrimSpace(e.Type)
		if name == "" || typ == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := kept[key]; ok {
			continue
		}
		kept[key] = name
		batch.Entities = append(batch.Entities, common.Entity{
			Name:        name,
			Type:        typ,
			Description: strings.TrimSpace(e.Description),
		})
	}

	seenRels := make(map[string]struct{}, len(res.Relationships))
	for _, r := range res.Relationships {
		source, ok := kept[strings.ToLower(strings.TrimSpace(r.Source))]
		if !ok {
			continue
		}
		target, ok := kept[strings.ToLower(strings.TrimSpace(r.Target))]
		if !ok {
			continue
		}

		rel := common.Relationship{
			Source: source,
			Target: target,
			Type:   common.SanitizeRelationshipType(r.Type),
		}
		key := rel.Source + "\x00" + rel.Target + "\x00" + rel.Type
		if _, ok := seenRels[key]; ok {
			continue
		}
		seenRels[key] = struct{}{}
		batch.Relationships = append(batch.Relationships, rel)
	}

	return batch
}

// combineExtractions merges per-unit extraction results into one, preserving
// unit order so CleanExtraction's first-wins rule stays deterministic.
func combineExtractions(results []*ExtractionResult) *ExtractionResult {
	combined := &ExtractionResult{}
	for _, r := range results {
		if r == nil {
			continue
		}
		combined.Entities = append(combined.Entities, r.Entities...)
		combined.Relationships = append(combined.Relationships, r.Relationships...)
	}
	return combined
}

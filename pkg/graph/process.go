package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/graphloom/graphloom/backend/internal/util"
	"github.com/graphloom/graphloom/backend/pkg/ai"
	"github.com/graphloom/graphloom/backend/pkg/common"
	"github.com/graphloom/graphloom/backend/pkg/logger"
	"github.com/graphloom/graphloom/backend/pkg/store"

	"golang.org/x/sync/errgroup"
)

// IngestDocumentParams bundles the inputs for one document ingestion.
type IngestDocumentParams struct {
	WorkspaceID  string
	DocumentName string
	Text         string
	EntityTypes  []string
}

// IngestDocument splits the document into units, extracts entities and
// relationships from each unit concurrently, cleans the combined result and
// upserts it into the workspace graph. Units whose extraction keeps failing
// after retries are skipped rather than failing the document; an upstream
// failure on every unit yields an empty batch and no store write.
func (g *GraphClient) IngestDocument(
	ctx context.Context,
	params IngestDocumentParams,
	client ai.GraphAIClient,
	storage store.GraphStorage,
) (common.Batch, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return CleanExtraction(nil), nil
	}

	units, err := transformIntoUnits(text, g.tokenEncoder, g.maxUnitTokens)
	if err != nil {
		return common.Batch{}, fmt.Errorf("failed to split document into units: %w", err)
	}

	logger.Info("[Graph][IngestDocument] Extracting",
		"workspace", params.WorkspaceID, "document", params.DocumentName, "units", len(units))

	results := make([]*ExtractionResult, len(units))
	mergeMu := sync.Mutex{}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelAiRequests)
	for i, unit := range units {
		idx := i
		u := unit
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}

			res, err := util.RetryWithContext(gCtx, g.maxRetries, func(ctx context.Context) (*ExtractionResult, error) {
				return extractFromUnit(ctx, u, params.DocumentName, params.EntityTypes, client)
			})
			if err != nil {
				logger.Warn("[Graph][IngestDocument] Unit extraction failed, skipping unit",
					"workspace", params.WorkspaceID, "document", params.DocumentName, "unit", u.id, "err", err)
				return nil
			}

			mergeMu.Lock()
			results[idx] = res
			mergeMu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return common.Batch{}, err
	}

	batch := CleanExtraction(combineExtractions(results))
	if batch.Empty() {
		logger.Warn("[Graph][IngestDocument] Extraction produced no usable entities",
			"workspace", params.WorkspaceID, "document", params.DocumentName)
		return batch, nil
	}

	if err := storage.UpsertGraph(ctx, params.WorkspaceID, batch); err != nil {
		return common.Batch{}, fmt.Errorf("failed to upsert graph: %w", err)
	}

	logger.Info("[Graph][IngestDocument] Ingested",
		"workspace", params.WorkspaceID, "document", params.DocumentName,
		"entities", len(batch.Entities), "relationships", len(batch.Relationships))

	return batch, nil
}

package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphloom/graphloom/backend/pkg/ai"
)

var defaultEntityTypes = []string{
	"ORGANIZATION", "PERSON", "LOCATION", "CONCEPT", "PRODUCT", "EVENT", "DATE",
}

// ExtractionEntity is one entity as reported by the model. Fields may be
// empty or malformed; CleanExtraction validates before anything reaches
// the store.
type ExtractionEntity struct {
	Name        string `json:"name" jsonschema_description:"Name of the entity, all letters capitalized"`
	Type        string `json:"type" jsonschema_description:"One of the provided entity types"`
	Description string `json:"description" jsonschema_description:"Comprehensive description of the entity's attributes, activities and information provided by the source"`
}

// ExtractionRelationship is one directed relationship as reported by the
// model, referencing entity names from the same response.
type ExtractionRelationship struct {
	Source string `json:"source" jsonschema_description:"Name of the source entity, as identified in the entity list"`
	Target string `json:"target" jsonschema_description:"Name of the target entity, as identified in the entity list"`
	Type   string `json:"type" jsonschema_description:"Short relationship label in capital letters with underscores, e.g. WORKS_AT"`
}

// ExtractionResult is the raw, untrusted extraction output for one unit.
type ExtractionResult struct {
	Entities      []ExtractionEntity       `json:"entities" jsonschema_description:"Entities identified in the text"`
	Relationships []ExtractionRelationship `json:"relationships" jsonschema_description:"Relationships identified in the text"`
}

func extractFromUnit(
	ctx context.Context,
	unit processUnit,
	documentName string,
	entityTypes []string,
	client ai.GraphAIClient,
) (*ExtractionResult, error) {
	types := entityTypes
	if len(types) == 0 {
		types = defaultEntityTypes
	}

	systemPrompt := fmt.Sprintf(
		ai.ExtractPromptText,
		strings.Join(types, ","),
		documentName,
		strings.Join(types, ","),
		strings.Join(types, ","),
	)

	var res ExtractionResult
	err := client.GenerateCompletionWithFormat(
		ctx,
		"extract_entities_and_relationships",
		"Extract entities and relationships from a provided document.",
		unit.text,
		&res,
		ai.WithSystemPrompts(systemPrompt),
	)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

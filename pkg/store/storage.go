package store

import (
	"context"
	"errors"

	"github.com/graphloom/graphloom/backend/pkg/common"
)

var (
	// ErrEntityNotFound is returned when an entity lookup by name finds no
	// row in the workspace.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrEntityExists is returned when a rename would collide with an
	// entity that already carries the target name in the same workspace.
	ErrEntityExists = errors.New("entity already exists")
)

// GraphStorage defines the interface for persisting and querying
// per-workspace knowledge graphs. Entities are unique per (workspace, name);
// relationships are unique per (workspace, source, target, type).
type GraphStorage interface {
	// UpsertGraph inserts or updates the batch's entities and
	// relationships in a single transaction. Existing entities are
	// updated in place; relationships whose endpoints are unknown are
	// dropped silently.
	UpsertGraph(ctx context.Context, workspaceID string, batch common.Batch) error

	// ProjectGraph returns the workspace graph as nodes and edges for
	// client-side rendering.
	ProjectGraph(ctx context.Context, workspaceID string) (*common.GraphProjection, error)

	// RenameEntity renames an entity and updates its type and
	// description. Returns ErrEntityNotFound if no entity carries
	// oldName, ErrEntityExists if newName is already taken.
	RenameEntity(ctx context.Context, workspaceID, oldName, newName, newType, newDescription string) error

	// MergeEntities folds deleteName's relationships into keepName and
	// removes deleteName. Returns ErrEntityNotFound naming the missing
	// entity when either side does not exist.
	MergeEntities(ctx context.Context, workspaceID, keepName, deleteName string) error

	// FindMergeCandidates suggests entity pairs that likely refer to the
	// same real-world thing, ordered by descending similarity.
	FindMergeCandidates(ctx context.Context, workspaceID string, limit int) ([]common.MergeCandidate, error)
}

package pgx

import (
	"context"
	"fmt"

	"github.com/graphloom/graphloom/backend/pkg/logger"
	"github.com/graphloom/graphloom/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// RenameEntity rewrites an entity's name, type and description in place.
// Relationship endpoints reference the entity row by id, so incident edges
// follow the rename without any edge rewrite. The uniqueness constraint on
// (workspace_id, name) turns a concurrent collision into ErrEntityExists.
func (s *GraphDBStorage) RenameEntity(
	ctx context.Context,
	workspaceID, oldName, newName, newType, newDescription string,
) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tag, err := s.conn.Exec(ctx, `
		UPDATE entities
		SET name = $1, type = $2, description = $3, updated_at = now()
		WHERE workspace_id = $4 AND name = $5
	`, newName, newType, newDescription, workspaceID, oldName)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrEntityExists, newName)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrEntityNotFound, oldName)
	}

	s.refreshEmbedding(ctx, workspaceID, newName, newDescription)
	return nil
}

// refreshEmbedding re-embeds an entity after its description changed.
// Best-effort: a failed embedding leaves the stored vector stale.
func (s *GraphDBStorage) refreshEmbedding(ctx context.Context, workspaceID, name, description string) {
	if s.aiClient == nil {
		return
	}
	vec, err := s.aiClient.GenerateEmbedding(ctx, []byte(name+": "+description))
	if err != nil {
		logger.Warn("[Store][RenameEntity] Embedding refresh failed", "workspace", workspaceID, "entity", name, "err", err)
		return
	}
	_, err = s.conn.Exec(ctx, `
		UPDATE entities SET embedding = $1
		WHERE workspace_id = $2 AND name = $3
	`, pgvector.NewVector(vec), workspaceID, name)
	if err != nil {
		logger.Warn("[Store][RenameEntity] Embedding update failed", "workspace", workspaceID, "entity", name, "err", err)
	}
}

// MergeEntities folds deleteName into keepName: relationships incident to the
// deleted entity are retargeted onto the kept one, self-loops are suppressed,
// duplicates collapse into the existing edge, and the deleted entity goes
// away. The whole rewrite runs in one transaction; if it cannot complete, a
// degraded fallback detach-deletes the entity so the graph stays consistent
// at the cost of the relocated edges.
func (s *GraphDBStorage) MergeEntities(
	ctx context.Context,
	workspaceID, keepName, deleteName string,
) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	keepID, err := s.entityID(ctx, workspaceID, keepName)
	if err != nil {
		return err
	}
	deleteID, err := s.entityID(ctx, workspaceID, deleteName)
	if err != nil {
		return err
	}

	if err := s.mergeRelationships(ctx, workspaceID, keepID, deleteID); err != nil {
		logger.Warn("[Store][MergeEntities] Relationship relocation failed, falling back to detach-delete",
			"workspace", workspaceID, "keep", keepName, "delete", deleteName, "err", err)
		return s.detachDelete(ctx, workspaceID, deleteID)
	}
	return nil
}

func (s *GraphDBStorage) entityID(ctx context.Context, workspaceID, name string) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx, `
		SELECT id FROM entities WHERE workspace_id = $1 AND name = $2
	`, workspaceID, name).Scan(&id)
	if err == pgxv5.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", store.ErrEntityNotFound, name)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *GraphDBStorage) mergeRelationships(
	ctx context.Context,
	workspaceID string,
	keepID, deleteID int64,
) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Retarget outgoing edges unless that would create a self-loop or a
	// duplicate of an edge the kept entity already has.
	_, err = tx.Exec(ctx, `
		UPDATE relationships r
		SET source_id = $1
		WHERE r.workspace_id = $3 AND r.source_id = $2 AND r.target_id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM relationships d
			WHERE d.workspace_id = r.workspace_id
			  AND d.source_id = $1 AND d.target_id = r.target_id AND d.type = r.type
		  )
	`, keepID, deleteID, workspaceID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE relationships r
		SET target_id = $1
		WHERE r.workspace_id = $3 AND r.target_id = $2 AND r.source_id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM relationships d
			WHERE d.workspace_id = r.workspace_id
			  AND d.source_id = r.source_id AND d.target_id = $1 AND d.type = r.type
		  )
	`, keepID, deleteID, workspaceID)
	if err != nil {
		return err
	}

	// Whatever still touches the deleted entity was either a suppressed
	// self-loop or a duplicate of a retained edge.
	_, err = tx.Exec(ctx, `
		DELETE FROM relationships
		WHERE workspace_id = $2 AND (source_id = $1 OR target_id = $1)
	`, deleteID, workspaceID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM entities WHERE workspace_id = $2 AND id = $1
	`, deleteID, workspaceID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// detachDelete removes the entity outright. Incident relationships go with
// it via the ON DELETE CASCADE on the endpoint foreign keys.
func (s *GraphDBStorage) detachDelete(ctx context.Context, workspaceID string, deleteID int64) error {
	_, err := s.conn.Exec(ctx, `
		DELETE FROM entities WHERE workspace_id = $2 AND id = $1
	`, deleteID, workspaceID)
	return err
}

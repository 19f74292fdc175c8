package pgx

import (
	"context"

	"github.com/graphloom/graphloom/backend/pkg/common"
	"github.com/graphloom/graphloom/backend/pkg/logger"
	"github.com/graphloom/graphloom/backend/pkg/store"

	"github.com/pgvector/pgvector-go"
)

const entityChunk = 250

// UpsertGraph persists a batch of entities and relationships in a single
// transaction. Entities go first so relationships referencing names from the
// same batch resolve; relationships with unknown endpoints are skipped by the
// join rather than failing the batch.
func (s *GraphDBStorage) UpsertGraph(
	ctx context.Context,
	workspaceID string,
	batch common.Batch,
) error {
	if batch.Empty() {
		return nil
	}

	embeddings := s.generateEntityEmbeddings(ctx, batch.Entities)

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = store.ChunkRange(len(batch.Entities), entityChunk, func(start, end int) error {
		chunk := batch.Entities[start:end]

		names := make([]string, len(chunk))
		types := make([]string, len(chunk))
		descriptions := make([]string, len(chunk))
		for i, e := range chunk {
			names[i] = e.Name
			types[i] = e.Type
			descriptions[i] = e.Description
		}

		logger.Debug("[Store][UpsertGraph] Upserting entity chunk", "workspace", workspaceID, "entities", len(chunk))

		_, err := tx.Exec(ctx, `
			INSERT INTO entities (workspace_id, name, type, description)
			SELECT $1, n, t, d
			FROM unnest($2::text[], $3::text[], $4::text[]) AS u(n, t, d)
			ON CONFLICT (workspace_id, name) DO UPDATE
			SET type = EXCLUDED.type,
			    description = EXCLUDED.description,
			    updated_at = now()
		`, workspaceID, names, types, descriptions)
		if err != nil {
			return err
		}

		if embeddings == nil {
			return nil
		}
		for i, e := range chunk {
			vec := embeddings[start+i]
			if vec == nil {
				continue
			}
			_, err := tx.Exec(ctx, `
				UPDATE entities SET embedding = $1
				WHERE workspace_id = $2 AND name = $3
			`, pgvector.NewVector(vec), workspaceID, e.Name)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = store.ChunkRange(len(batch.Relationships), entityChunk, func(start, end int) error {
		chunk := batch.Relationships[start:end]

		sources := make([]string, len(chunk))
		targets := make([]string, len(chunk))
		types := make([]string, len(chunk))
		for i, r := range chunk {
			sources[i] = r.Source
			targets[i] = r.Target
			types[i] = common.SanitizeRelationshipType(r.Type)
		}

		logger.Debug("[Store][UpsertGraph] Upserting relationship chunk", "workspace", workspaceID, "relationships", len(chunk))

		_, err := tx.Exec(ctx, `
			INSERT INTO relationships (workspace_id, source_id, target_id, type)
			SELECT $1, src.id, tgt.id, u.t
			FROM unnest($2::text[], $3::text[], $4::text[]) AS u(s, tg, t)
			JOIN entities src ON src.workspace_id = $1 AND src.name = u.s
			JOIN entities tgt ON tgt.workspace_id = $1 AND tgt.name = u.tg
			ON CONFLICT (workspace_id, source_id, target_id, type) DO NOTHING
		`, workspaceID, sources, targets, types)
		return err
	})
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// generateEntityEmbeddings embeds entity descriptions for similarity search.
// Embeddings are best-effort: without an AI client, or when the embedding
// call fails, entities are stored without vectors and merge suggestions fall
// back to name similarity.
func (s *GraphDBStorage) generateEntityEmbeddings(
	ctx context.Context,
	entities []common.Entity,
) [][]float32 {
	if s.aiClient == nil || len(entities) == 0 {
		return nil
	}

	inputs := make([][]byte, len(entities))
	for i, e := range entities {
		inputs[i] = []byte(e.Name + ": " + e.Description)
	}

	embeddings, err := store.GenerateEmbeddings(ctx, s.aiClient, inputs)
	if err != nil {
		logger.Warn("[Store][UpsertGraph] Embedding generation failed, storing entities without vectors", "err", err)
		return nil
	}
	if len(embeddings) != len(entities) {
		logger.Warn("[Store][UpsertGraph] Embedding count mismatch, storing entities without vectors",
			"got", len(embeddings), "want", len(entities))
		return nil
	}
	return embeddings
}

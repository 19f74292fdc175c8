package pgx

import (
	"context"
	"sort"

	"github.com/graphloom/graphloom/backend/pkg/common"
	"github.com/graphloom/graphloom/backend/pkg/logger"
)

const (
	nameSimilarityThreshold      = 0.4
	embeddingSimilarityThreshold = 0.75
	defaultCandidateLimit        = 20
)

// FindMergeCandidates suggests entity pairs that likely refer to the same
// real-world thing. Name similarity comes from pg_trgm; when embeddings are
// present, semantically close descriptions contribute additional pairs. The
// result is ordered by descending similarity.
func (s *GraphDBStorage) FindMergeCandidates(
	ctx context.Context,
	workspaceID string,
	limit int,
) ([]common.MergeCandidate, error) {
	if limit <= 0 {
		limit = defaultCandidateLimit
	}

	namePairs, err := s.nameSimilarPairs(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	embeddingPairs, err := s.embeddingSimilarPairs(ctx, workspaceID)
	if err != nil {
		// Name similarity alone still yields usable suggestions.
		logger.Warn("[Store][FindMergeCandidates] Embedding similarity query failed", "workspace", workspaceID, "err", err)
		embeddingPairs = nil
	}

	return rankMergeCandidates(namePairs, embeddingPairs, limit), nil
}

func (s *GraphDBStorage) nameSimilarPairs(
	ctx context.Context,
	workspaceID string,
) ([]common.MergeCandidate, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT a.name, a.type, b.name, b.type, similarity(a.name, b.name)
		FROM entities a
		JOIN entities b ON b.workspace_id = a.workspace_id AND b.id > a.id
		WHERE a.workspace_id = $1
		  AND similarity(a.name, b.name) > $2
	`, workspaceID, nameSimilarityThreshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMergeCandidates(rows)
}

func (s *GraphDBStorage) embeddingSimilarPairs(
	ctx context.Context,
	workspaceID string,
) ([]common.MergeCandidate, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT a.name, a.type, b.name, b.type, 1 - (a.embedding <=> b.embedding)
		FROM entities a
		JOIN entities b ON b.workspace_id = a.workspace_id AND b.id > a.id
		WHERE a.workspace_id = $1
		  AND a.embedding IS NOT NULL AND b.embedding IS NOT NULL
		  AND 1 - (a.embedding <=> b.embedding) > $2
	`, workspaceID, embeddingSimilarityThreshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMergeCandidates(rows)
}

func scanMergeCandidates(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]common.MergeCandidate, error) {
	var out []common.MergeCandidate
	for rows.Next() {
		var c common.MergeCandidate
		if err := rows.Scan(&c.Left, &c.LeftType, &c.Right, &c.RightType, &c.Similarity); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rankMergeCandidates combines pairs from both similarity sources, keeping
// the highest score per unordered pair, ordered by descending similarity.
func rankMergeCandidates(
	namePairs []common.MergeCandidate,
	embeddingPairs []common.MergeCandidate,
	limit int,
) []common.MergeCandidate {
	best := make(map[[2]string]common.MergeCandidate)
	for _, c := range append(namePairs, embeddingPairs...) {
		key := [2]string{c.Left, c.Right}
		if c.Right < c.Left {
			key = [2]string{c.Right, c.Left}
		}
		if prev, ok := best[key]; !ok || c.Similarity > prev.Similarity {
			best[key] = c
		}
	}

	out := make([]common.MergeCandidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		if out[i].Left != out[j].Left {
			return out[i].Left < out[j].Left
		}
		return out[i].Right < out[j].Right
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

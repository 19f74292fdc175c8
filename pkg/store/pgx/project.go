package pgx

import (
	"context"

	"github.com/graphloom/graphloom/backend/pkg/common"
)

type entityRow struct {
	name        string
	typ         string
	description string
}

type relationshipRow struct {
	source string
	target string
	typ    string
}

// ProjectGraph reads the full workspace graph as a renderable projection.
// A workspace with no entities yields empty (non-nil) node and edge lists.
func (s *GraphDBStorage) ProjectGraph(
	ctx context.Context,
	workspaceID string,
) (*common.GraphProjection, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT name, type, description
		FROM entities
		WHERE workspace_id = $1
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []entityRow
	for rows.Next() {
		var e entityRow
		if err := rows.Scan(&e.name, &e.typ, &e.description); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	relRows, err := s.conn.Query(ctx, `
		SELECT src.name, tgt.name, r.type
		FROM relationships r
		JOIN entities src ON src.id = r.source_id
		JOIN entities tgt ON tgt.id = r.target_id
		WHERE r.workspace_id = $1
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer relRows.Close()

	var relationships []relationshipRow
	for relRows.Next() {
		var r relationshipRow
		if err := relRows.Scan(&r.source, &r.target, &r.typ); err != nil {
			return nil, err
		}
		relationships = append(relationships, r)
	}
	if err := relRows.Err(); err != nil {
		return nil, err
	}

	return buildProjection(entities, relationships), nil
}

// buildProjection converts raw rows into the node/edge projection, deduping
// nodes by name. Entity name doubles as the node id and label.
func buildProjection(entities []entityRow, relationships []relationshipRow) *common.GraphProjection {
	nodes := make([]common.Node, 0, len(entities))
	seen := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		if _, ok := seen[e.name]; ok {
			continue
		}
		seen[e.name] = struct{}{}
		nodes = append(nodes, common.Node{
			ID:          e.name,
			Label:       e.name,
			Type:        e.typ,
			Description: e.description,
		})
	}

	edges := make([]common.Edge, 0, len(relationships))
	for _, r := range relationships {
		edges = append(edges, common.Edge{
			Source: r.source,
			Target: r.target,
			Label:  r.typ,
		})
	}

	return &common.GraphProjection{Nodes: nodes, Edges: edges}
}

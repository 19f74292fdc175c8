// Package registry manages workspace records: ownership, naming, and the
// aggregate counters shown in workspace listings.
package registry

import (
	"context"
	"errors"
	"time"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrWorkspaceNotFound is returned when a workspace id does not exist or is
// not owned by the requesting user.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// Workspace is one user-owned knowledge graph container.
type Workspace struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	OwnerID           string    `json:"owner_id"`
	DocumentCount     int       `json:"document_count"`
	EntityCount       int       `json:"entity_count"`
	RelationshipCount int       `json:"relationship_count"`
	CreatedAt         time.Time `json:"created_at"`
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// Registry provides workspace CRUD against Postgres.
type Registry struct {
	conn pgxQuerier
}

func New(conn pgxQuerier) *Registry {
	return &Registry{conn: conn}
}

// GetWorkspace fetches a workspace owned by userID.
func (r *Registry) GetWorkspace(ctx context.Context, id, userID string) (*Workspace, error) {
	var w Workspace
	err := r.conn.QueryRow(ctx, `
		SELECT id, name, owner_id, document_count, entity_count, relationship_count, created_at
		FROM workspaces
		WHERE id = $1 AND owner_id = $2
	`, id, userID).Scan(&w.ID, &w.Name, &w.OwnerID, &w.DocumentCount, &w.EntityCount, &w.RelationshipCount, &w.CreatedAt)
	if err == pgxv5.ErrNoRows {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWorkspaces returns all workspaces owned by userID, newest first.
func (r *Registry) ListWorkspaces(ctx context.Context, userID string) ([]Workspace, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, name, owner_id, document_count, entity_count, relationship_count, created_at
		FROM workspaces
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Workspace{}
	for rows.Next() {
		var w Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.OwnerID, &w.DocumentCount, &w.EntityCount, &w.RelationshipCount, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// CreateWorkspace creates a new empty workspace for userID.
func (r *Registry) CreateWorkspace(ctx context.Context, name, userID string) (*Workspace, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	var w Workspace
	err = r.conn.QueryRow(ctx, `
		INSERT INTO workspaces (id, name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, owner_id, document_count, entity_count, relationship_count, created_at
	`, id, name, userID).Scan(&w.ID, &w.Name, &w.OwnerID, &w.DocumentCount, &w.EntityCount, &w.RelationshipCount, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// UpdateStats bumps the document counter by documentDelta and overwrites the
// entity and relationship counters with fresh projection totals.
func (r *Registry) UpdateStats(ctx context.Context, id string, documentDelta, entityCount, relationshipCount int) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE workspaces
		SET document_count = document_count + $2,
		    entity_count = $3,
		    relationship_count = $4
		WHERE id = $1
	`, id, documentDelta, entityCount, relationshipCount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkspaceNotFound
	}
	return nil
}

package routes

import (
	"context"
	"errors"
	"strings"
	"testing"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/graphloom/graphloom/backend/internal/registry"
	"github.com/graphloom/graphloom/backend/pkg/common"
)

type statsStorage struct {
	projection *common.GraphProjection
	err        error
}

func (s *statsStorage) UpsertGraph(ctx context.Context, workspaceID string, batch common.Batch) error {
	return nil
}

func (s *statsStorage) ProjectGraph(ctx context.Context, workspaceID string) (*common.GraphProjection, error) {
	return s.projection, s.err
}

func (s *statsStorage) RenameEntity(ctx context.Context, workspaceID, oldName, newName, newType, newDescription string) error {
	return nil
}

func (s *statsStorage) MergeEntities(ctx context.Context, workspaceID, keepName, deleteName string) error {
	return nil
}

func (s *statsStorage) FindMergeCandidates(ctx context.Context, workspaceID string, limit int) ([]common.MergeCandidate, error) {
	return nil, nil
}

// recordingQuerier satisfies the registry's connection seam and records the
// statements it receives.
type recordingQuerier struct {
	execSQL  []string
	execArgs [][]any
	execTag  pgconn.CommandTag
	execErr  error
}

func (q *recordingQuerier) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	q.execSQL = append(q.execSQL, sql)
	q.execArgs = append(q.execArgs, arguments)
	return q.execTag, q.execErr
}

func (q *recordingQuerier) Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error) {
	return nil, errors.New("not implemented")
}

func (q *recordingQuerier) QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row {
	return nil
}

func TestRefreshWorkspaceStatsUpdatesCounters(t *testing.T) {
	querier := &recordingQuerier{execTag: pgconn.NewCommandTag("UPDATE 1")}
	storage := &statsStorage{
		projection: &common.GraphProjection{
			Nodes: []common.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
			Edges: []common.Edge{{Source: "A", Target: "B", Label: "KNOWS"}},
		},
	}

	refreshWorkspaceStats(context.Background(), registry.New(querier), storage, "ws1", 1)

	if len(querier.execSQL) != 1 {
		t.Fatalf("expected 1 counter update, got %d", len(querier.execSQL))
	}
	if !strings.Contains(querier.execSQL[0], "UPDATE workspaces") {
		t.Fatalf("unexpected statement: %s", querier.execSQL[0])
	}
	wantArgs := []any{"ws1", 1, 3, 1}
	for i, want := range wantArgs {
		if querier.execArgs[0][i] != want {
			t.Fatalf("arg %d: expected %v, got %v", i, want, querier.execArgs[0][i])
		}
	}
}

func TestRefreshWorkspaceStatsSkipsUpdateOnProjectionFailure(t *testing.T) {
	querier := &recordingQuerier{execTag: pgconn.NewCommandTag("UPDATE 1")}
	storage := &statsStorage{err: errors.New("connection refused")}

	refreshWorkspaceStats(context.Background(), registry.New(querier), storage, "ws1", 1)

	if len(querier.execSQL) != 0 {
		t.Fatalf("expected no counter update after projection failure, got %d", len(querier.execSQL))
	}
}

func TestRefreshWorkspaceStatsSurvivesUpdateFailure(t *testing.T) {
	querier := &recordingQuerier{execErr: errors.New("connection refused")}
	storage := &statsStorage{projection: &common.GraphProjection{
		Nodes: []common.Node{},
		Edges: []common.Edge{},
	}}

	refreshWorkspaceStats(context.Background(), registry.New(querier), storage, "ws1", 1)

	if len(querier.execSQL) != 1 {
		t.Fatalf("expected the counter update to be attempted, got %d", len(querier.execSQL))
	}
}

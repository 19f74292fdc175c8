package pgx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graphloom/graphloom/backend/pkg/common"
	"github.com/graphloom/graphloom/backend/pkg/store"
)

func initStorage(t *testing.T) *GraphDBStorage {
	t.Helper()
	if testPool == nil {
		t.Skip("requires the postgres container")
	}
	s, err := NewGraphDBStorageWithConnection(context.Background(), testPool, nil)
	require.NoError(t, err)
	return s
}

func seedWorkspace(t *testing.T, id string) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `
		INSERT INTO workspaces (id, name, owner_id) VALUES ($1, $1, 'tester')
	`, id)
	require.NoError(t, err)
}

// edgeSet flattens a projection's edges into "source|target|label" keys so
// tests can compare graphs without depending on row order.
func edgeSet(p *common.GraphProjection) map[string]bool {
	set := make(map[string]bool, len(p.Edges))
	for _, e := range p.Edges {
		set[e.Source+"|"+e.Target+"|"+e.Label] = true
	}
	return set
}

func nodeByID(p *common.GraphProjection, id string) (common.Node, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return common.Node{}, false
}

func TestUpsertGraphIdempotent(t *testing.T) {
	s := initStorage(t)
	ctx := context.Background()
	seedWorkspace(t, "ws-upsert-idem")

	batch := common.Batch{
		Entities: []common.Entity{
			{Name: "ALICE", Type: "Person", Description: "An engineer"},
			{Name: "ACME", Type: "Organization", Description: "A company"},
		},
		Relationships: []common.Relationship{
			{Source: "ALICE", Target: "ACME", Type: "works at"},
		},
	}

	require.NoError(t, s.UpsertGraph(ctx, "ws-upsert-idem", batch))
	first, err := s.ProjectGraph(ctx, "ws-upsert-idem")
	require.NoError(t, err)

	require.NoError(t, s.UpsertGraph(ctx, "ws-upsert-idem", batch))
	second, err := s.ProjectGraph(ctx, "ws-upsert-idem")
	require.NoError(t, err)

	require.Len(t, first.Nodes, 2)
	require.Len(t, first.Edges, 1)
	require.Equal(t, len(first.Nodes), len(second.Nodes))
	require.Equal(t, edgeSet(first), edgeSet(second))
	require.True(t, edgeSet(first)["ALICE|ACME|WORKS_AT"], "relationship type is sanitized on write")

	alice, ok := nodeByID(first, "ALICE")
	require.True(t, ok)
	require.Equal(t, "ALICE", alice.Label)
	require.Equal(t, "Person", alice.Type)
	require.Equal(t, "An engineer", alice.Description)
}

func TestUpsertGraphUpdatesInPlace(t *testing.T) {
	s := initStorage(t)
	ctx := context.Background()
	seedWorkspace(t, "ws-upsert-update")

	require.NoError(t, s.UpsertGraph(ctx, "ws-upsert-update", common.Batch{
		Entities: []common.Entity{{Name: "ALICE", Type: "Person", Description: "Old"}},
	}))
	require.NoError(t, s.UpsertGraph(ctx, "ws-upsert-update", common.Batch{
		Entities: []common.Entity{{Name: "ALICE", Type: "Engineer", Description: "New"}},
	}))

	projection, err := s.ProjectGraph(ctx, "ws-upsert-update")
	require.NoError(t, err)
	require.Len(t, projection.Nodes, 1)
	require.Equal(t, "Engineer", projection.Nodes[0].Type)
	require.Equal(t, "New", projection.Nodes[0].Description)
}

func TestUpsertGraphSkipsUnknownEndpoints(t *testing.T) {
	s := initStorage(t)
	ctx := context.Background()
	seedWorkspace(t, "ws-upsert-skip")

	err := s.UpsertGraph(ctx, "ws-upsert-skip", common.Batch{
		Entities: []common.Entity{{Name: "ALICE", Type: "Person"}},
		Relationships: []common.Relationship{
			{Source: "ALICE", Target: "GHOST", Type: "KNOWS"},
			{Source: "GHOST", Target: "ALICE", Type: "KNOWS"},
		},
	})
	require.NoError(t, err)

	projection, err := s.ProjectGraph(ctx, "ws-upsert-skip")
	require.NoError(t, err)
	require.Len(t, projection.Nodes, 1)
	require.Empty(t, projection.Edges)
}

func TestProjectGraphEmptyWorkspace(t *testing.T) {
	s := initStorage(t)
	seedWorkspace(t, "ws-empty")

	projection, err := s.ProjectGraph(context.Background(), "ws-empty")
	require.NoError(t, err)
	require.NotNil(t, projection.Nodes)
	require.NotNil(t, projection.Edges)
	require.Empty(t, projection.Nodes)
	require.Empty(t, projection.Edges)
}

func TestRenameEntityEdgesFollow(t *testing.T) {
	s := initStorage(t)
	ctx := context.Background()
	seedWorkspace(t, "ws-rename")

	require.NoError(t, s.UpsertGraph(ctx, "ws-rename", common.Batch{
		Entities: []common.Entity{
			{Name: "ALICE", Type: "Person", Description: "An engineer"},
			{Name: "ACME", Type: "Organization"},
		},
		Relationships: []common.Relationship{
			{Source: "ALICE", Target: "ACME", Type: "WORKS_AT"},
			{Source: "ACME", Target: "ALICE", Type: "EMPLOYS"},
		},
	}))

	require.NoError(t, s.RenameEntity(ctx, "ws-rename", "ALICE", "ALICE SMITH", "Person", "An engineer"))

	projection, err := s.ProjectGraph(ctx, "ws-rename")
	require.NoError(t, err)

	_, oldExists := nodeByID(projection, "ALICE")
	require.False(t, oldExists)
	_, newExists := nodeByID(projection, "ALICE SMITH")
	require.True(t, newExists)

	edges := edgeSet(projection)
	require.Len(t, projection.Edges, 2)
	require.True(t, edges["ALICE SMITH|ACME|WORKS_AT"])
	require.True(t, edges["ACME|ALICE SMITH|EMPLOYS"])
}

func TestRenameEntityNotFound(t *testing.T) {
	s := initStorage(t)
	seedWorkspace(t, "ws-rename-missing")

	err := s.RenameEntity(context.Background(), "ws-rename-missing", "NOBODY", "SOMEBODY", "Person", "")
	require.ErrorIs(t, err, store.ErrEntityNotFound)
	require.Contains(t, err.Error(), "NOBODY")
}

func TestRenameEntityCollisionLeavesGraphUnchanged(t *testing.T) {
	s := initStorage(t)
	ctx := context.Background()
	seedWorkspace(t, "ws-rename-collision")

	require.NoError(t, s.UpsertGraph(ctx, "ws-rename-collision", common.Batch{
		Entities: []common.Entity{
			{Name: "ALICE", Type: "Person", Description: "An engineer"},
			{Name: "BOB", Type: "Person", Description: "A manager"},
		},
		Relationships: []common.Relationship{
			{Source: "ALICE", Target: "BOB", Type: "KNOWS"},
		},
	}))
	before, err := s.ProjectGraph(ctx, "ws-rename-collision")
	require.NoError(t, err)

	err = s.RenameEntity(ctx, "ws-rename-collision", "ALICE", "BOB", "Person", "An engineer")
	require.ErrorIs(t, err, store.ErrEntityExists)
	require.Contains(t, err.Error(), "BOB")

	after, err := s.ProjectGraph(ctx, "ws-rename-collision")
	require.NoError(t, err)
	require.Equal(t, len(before.Nodes), len(after.Nodes))
	require.Equal(t, edgeSet(before), edgeSet(after))

	alice, ok := nodeByID(after, "ALICE")
	require.True(t, ok)
	require.Equal(t, "An engineer", alice.Description)
}

func TestMergeEntitiesRelocatesAndDeduplicates(t *testing.T) {
	s := initStorage(t)
	ctx := context.Background()
	seedWorkspace(t, "ws-merge")

	require.NoError(t, s.UpsertGraph(ctx, "ws-merge", common.Batch{
		Entities: []common.Entity{
			{Name: "ACME", Type: "Organization"},
			{Name: "ACME CORP", Type: "Organization"},
			{Name: "ALICE", Type: "Person"},
			{Name: "BOB", Type: "Person"},
		},
		Relationships: []common.Relationship{
			// Duplicate after relocation: ALICE already points at ACME.
			{Source: "ALICE", Target: "ACME", Type: "WORKS_AT"},
			{Source: "ALICE", Target: "ACME CORP", Type: "WORKS_AT"},
			// Plain relocations, one per direction.
			{Source: "BOB", Target: "ACME CORP", Type: "KNOWS"},
			{Source: "ACME CORP", Target: "BOB", Type: "EMPLOYS"},
			// Becomes a self-loop after relocation.
			{Source: "ACME", Target: "ACME CORP", Type: "PART_OF"},
		},
	}))

	require.NoError(t, s.MergeEntities(ctx, "ws-merge", "ACME", "ACME CORP"))

	projection, err := s.ProjectGraph(ctx, "ws-merge")
	require.NoError(t, err)

	_, deletedExists := nodeByID(projection, "ACME CORP")
	require.False(t, deletedExists)
	require.Len(t, projection.Nodes, 3)

	edges := edgeSet(projection)
	require.Len(t, projection.Edges, 3)
	require.True(t, edges["ALICE|ACME|WORKS_AT"], "duplicate edge collapses into the existing one")
	require.True(t, edges["BOB|ACME|KNOWS"], "incoming edge relocates to the kept entity")
	require.True(t, edges["ACME|BOB|EMPLOYS"], "outgoing edge relocates to the kept entity")
	require.False(t, edges["ACME|ACME|PART_OF"], "self-loop is suppressed")
}

func TestMergeEntitiesNotFound(t *testing.T) {
	s := initStorage(t)
	ctx := context.Background()
	seedWorkspace(t, "ws-merge-missing")

	require.NoError(t, s.UpsertGraph(ctx, "ws-merge-missing", common.Batch{
		Entities: []common.Entity{{Name: "ACME", Type: "Organization"}},
	}))

	err := s.MergeEntities(ctx, "ws-merge-missing", "ACME", "GHOST")
	require.ErrorIs(t, err, store.ErrEntityNotFound)
	require.Contains(t, err.Error(), "GHOST")

	err = s.MergeEntities(ctx, "ws-merge-missing", "PHANTOM", "ACME")
	require.ErrorIs(t, err, store.ErrEntityNotFound)
	require.Contains(t, err.Error(), "PHANTOM")

	projection, err := s.ProjectGraph(ctx, "ws-merge-missing")
	require.NoError(t, err)
	require.Len(t, projection.Nodes, 1)
}

func TestMergeEntitiesWorkspaceScoped(t *testing.T) {
	s := initStorage(t)
	ctx := context.Background()
	seedWorkspace(t, "ws-merge-a")
	seedWorkspace(t, "ws-merge-b")

	for _, ws := range []string{"ws-merge-a", "ws-merge-b"} {
		require.NoError(t, s.UpsertGraph(ctx, ws, common.Batch{
			Entities: []common.Entity{
				{Name: "ACME", Type: "Organization"},
				{Name: "ACME CORP", Type: "Organization"},
			},
			Relationships: []common.Relationship{
				{Source: "ACME", Target: "ACME CORP", Type: "RELATED_TO"},
			},
		}))
	}

	require.NoError(t, s.MergeEntities(ctx, "ws-merge-a", "ACME", "ACME CORP"))

	other, err := s.ProjectGraph(ctx, "ws-merge-b")
	require.NoError(t, err)
	require.Len(t, other.Nodes, 2)
	require.Len(t, other.Edges, 1)
}

func TestFindMergeCandidatesNameSimilarity(t *testing.T) {
	s := initStorage(t)
	ctx := context.Background()
	seedWorkspace(t, "ws-candidates")

	require.NoError(t, s.UpsertGraph(ctx, "ws-candidates", common.Batch{
		Entities: []common.Entity{
			{Name: "ACME CORPORATION", Type: "Organization"},
			{Name: "ACME CORP", Type: "Organization"},
			{Name: "ZEBRA", Type: "Animal"},
		},
	}))

	candidates, err := s.FindMergeCandidates(ctx, "ws-candidates", 10)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	found := false
	for _, c := range candidates {
		pair := map[string]bool{c.Left: true, c.Right: true}
		require.False(t, pair["ZEBRA"], "dissimilar names are not suggested")
		if pair["ACME CORP"] && pair["ACME CORPORATION"] {
			found = true
			require.Greater(t, c.Similarity, 0.0)
		}
	}
	require.True(t, found)
}

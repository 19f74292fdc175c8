package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/graphloom/graphloom/backend/pkg/ai"
	"github.com/graphloom/graphloom/backend/pkg/common"
)

type fakeAIClient struct {
	result *ExtractionResult
	err    error
	calls  int
}

func (f *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	res, ok := out.(*ExtractionResult)
	if !ok {
		return errors.New("unexpected output type")
	}
	*res = *f.result
	return nil
}

func (f *fakeAIClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return []float32{0.1}, nil
}

func (f *fakeAIClient) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{0.1}
	}
	return out, nil
}

func (f *fakeAIClient) ResetMetrics()               {}
func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

type fakeStorage struct {
	upserts []common.Batch
	err     error
}

func (f *fakeStorage) UpsertGraph(ctx context.Context, workspaceID string, batch common.Batch) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, batch)
	return nil
}

func (f *fakeStorage) ProjectGraph(ctx context.Context, workspaceID string) (*common.GraphProjection, error) {
	return &common.GraphProjection{}, nil
}

func (f *fakeStorage) RenameEntity(ctx context.Context, workspaceID, oldName, newName, newType, newDescription string) error {
	return nil
}

func (f *fakeStorage) MergeEntities(ctx context.Context, workspaceID, keepName, deleteName string) error {
	return nil
}

func (f *fakeStorage) FindMergeCandidates(ctx context.Context, workspaceID string, limit int) ([]common.MergeCandidate, error) {
	return nil, nil
}

func newTestGraphClient(t *testing.T) *GraphClient {
	t.Helper()
	g, err := NewGraphClient(NewGraphClientParams{
		TokenEncoder:       "o200k_base",
		MaxUnitTokens:      200,
		ParallelAiRequests: 2,
		MaxRetries:         2,
	})
	if err != nil {
		t.Fatalf("NewGraphClient() error = %v", err)
	}
	return g
}

func TestIngestDocument_UpsertsCleanedBatch(t *testing.T) {
	g := newTestGraphClient(t)
	aiClient := &fakeAIClient{result: &ExtractionResult{
		Entities: []ExtractionEntity{
			{Name: "ALICE", Type: "PERSON", Description: "an engineer"},
			{Name: "ACME", Type: "ORGANIZATION", Description: "a company"},
			{Name: "", Type: "PERSON"},
		},
		Relationships: []ExtractionRelationship{
			{Source: "ALICE", Target: "ACME", Type: "works at"},
			{Source: "ALICE", Target: "NOBODY", Type: "KNOWS"},
		},
	}}
	storage := &fakeStorage{}

	batch, err := g.IngestDocument(context.Background(), IngestDocumentParams{
		WorkspaceID:  "ws-1",
		DocumentName: "notes.txt",
		Text:         "Alice works at Acme.",
	}, aiClient, storage)
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}

	if len(batch.Entities) != 2 {
		t.Errorf("expected 2 entities, got %d", len(batch.Entities))
	}
	if len(batch.Relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(batch.Relationships))
	}
	if batch.Relationships[0].Type != "WORKS_AT" {
		t.Errorf("relationship type = %q, want WORKS_AT", batch.Relationships[0].Type)
	}

	if len(storage.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(storage.upserts))
	}
}

func TestIngestDocument_EmptyTextSkipsStore(t *testing.T) {
	g := newTestGraphClient(t)
	storage := &fakeStorage{}

	batch, err := g.IngestDocument(context.Background(), IngestDocumentParams{
		WorkspaceID:  "ws-1",
		DocumentName: "empty.txt",
		Text:         "   ",
	}, &fakeAIClient{}, storage)
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}
	if !batch.Empty() {
		t.Errorf("expected empty batch, got %+v", batch)
	}
	if len(storage.upserts) != 0 {
		t.Errorf("store should not be written for empty input")
	}
}

func TestIngestDocument_ExtractionFailureYieldsEmptyBatch(t *testing.T) {
	g := newTestGraphClient(t)
	aiClient := &fakeAIClient{err: errors.New("model unavailable")}
	storage := &fakeStorage{}

	batch, err := g.IngestDocument(context.Background(), IngestDocumentParams{
		WorkspaceID:  "ws-1",
		DocumentName: "notes.txt",
		Text:         "Alice works at Acme.",
	}, aiClient, storage)
	if err != nil {
		t.Fatalf("IngestDocument() should tolerate extraction failure, got %v", err)
	}
	if !batch.Empty() {
		t.Errorf("expected empty batch, got %+v", batch)
	}
	if len(storage.upserts) != 0 {
		t.Errorf("store should not be written when extraction fails")
	}
	if aiClient.calls < 2 {
		t.Errorf("expected retries before giving up, got %d calls", aiClient.calls)
	}
}

func TestIngestDocument_UpsertErrorPropagates(t *testing.T) {
	g := newTestGraphClient(t)
	aiClient := &fakeAIClient{result: &ExtractionResult{
		Entities: []ExtractionEntity{{Name: "ALICE", Type: "PERSON"}},
	}}
	storage := &fakeStorage{err: errors.New("connection refused")}

	_, err := g.IngestDocument(context.Background(), IngestDocumentParams{
		WorkspaceID:  "ws-1",
		DocumentName: "notes.txt",
		Text:         "Alice works at Acme.",
	}, aiClient, storage)
	if err == nil {
		t.Fatal("expected store error to propagate")
	}
}

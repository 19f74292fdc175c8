package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/graphloom/graphloom/backend/internal/registry"
	"github.com/graphloom/graphloom/backend/internal/storage"
	"github.com/graphloom/graphloom/backend/internal/util"
	"github.com/graphloom/graphloom/backend/pkg/ai"
	"github.com/graphloom/graphloom/backend/pkg/graph"
	"github.com/graphloom/graphloom/backend/pkg/loader"
	"github.com/graphloom/graphloom/backend/pkg/logger"
	pgxstore "github.com/graphloom/graphloom/backend/pkg/store/pgx"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IngestJobMsg is the payload published to the ingest queue when a document
// upload is processed asynchronously.
type IngestJobMsg struct {
	WorkspaceID   string `json:"workspace_id"`
	UserID        string `json:"user_id"`
	ObjectKey     string `json:"object_key"`
	Filename      string `json:"filename"`
	CorrelationID string `json:"correlation_id"`
}

// ProcessIngestMessage handles one ingest job: fetch the uploaded document
// from S3, extract its text, run the extraction pipeline into the workspace
// graph, refresh the workspace counters, and remove the parked object.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *s3.Client,
	aiClient ai.GraphAIClient,
	conn *pgxpool.Pool,
	body string,
) error {
	var msg IngestJobMsg
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("failed to unmarshal ingest message: %w", err)
	}

	logger.Info("[Queue][Ingest] Processing document",
		"workspace", msg.WorkspaceID, "file", msg.Filename, "correlation_id", msg.CorrelationID)

	// The workspace may have been deleted, or ownership revoked, between
	// enqueue and processing. A missing workspace is not retryable.
	reg := registry.New(conn)
	if _, err := reg.GetWorkspace(ctx, msg.WorkspaceID, msg.UserID); err != nil {
		if errors.Is(err, registry.ErrWorkspaceNotFound) {
			logger.Warn("[Queue][Ingest] Workspace not found or not owned by requester, dropping job",
				"workspace", msg.WorkspaceID, "user", msg.UserID, "correlation_id", msg.CorrelationID)
			return nil
		}
		return fmt.Errorf("failed to verify workspace ownership: %w", err)
	}

	content, err := storage.GetFile(ctx, s3Client, msg.ObjectKey)
	if err != nil {
		return fmt.Errorf("failed to fetch document from S3: %w", err)
	}

	text, err := loader.ExtractText(ctx, msg.Filename, content)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	graphStorage, err := pgxstore.NewGraphDBStorageWithConnection(ctx, conn, aiClient)
	if err != nil {
		return err
	}

	graphClient, err := graph.NewGraphClient(graph.NewGraphClientParams{
		TokenEncoder:       util.GetEnvString("AI_TOKEN_ENCODER", "o200k_base"),
		MaxUnitTokens:      int(util.GetEnvNumeric("AI_MAX_UNIT_TOKENS", 1200)),
		ParallelAiRequests: int(util.GetEnvNumeric("AI_PARALLEL_REQUESTS", 4)),
		MaxRetries:         int(util.GetEnvNumeric("AI_MAX_RETRIES", 3)),
	})
	if err != nil {
		return err
	}

	batch, err := graphClient.IngestDocument(ctx, graph.IngestDocumentParams{
		WorkspaceID:  msg.WorkspaceID,
		DocumentName: msg.Filename,
		Text:         text,
	}, aiClient, graphStorage)
	if err != nil {
		return err
	}

	projection, err := graphStorage.ProjectGraph(ctx, msg.WorkspaceID)
	if err != nil {
		return fmt.Errorf("failed to project graph for counters: %w", err)
	}
	if err := reg.UpdateStats(ctx, msg.WorkspaceID, 1, len(projection.Nodes), len(projection.Edges)); err != nil {
		return fmt.Errorf("failed to update workspace counters: %w", err)
	}

	err = util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
		return storage.DeleteFile(ctx, s3Client, msg.ObjectKey)
	})
	if err != nil {
		logger.Warn("[Queue][Ingest] Failed to delete parked object", "key", msg.ObjectKey, "err", err)
	}

	logger.Info("[Queue][Ingest] Document ingested",
		"workspace", msg.WorkspaceID, "file", msg.Filename,
		"entities", len(batch.Entities), "relationships", len(batch.Relationships))

	return nil
}

package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/graphloom/graphloom/backend/internal/queue"
	"github.com/graphloom/graphloom/backend/internal/registry"
	"github.com/graphloom/graphloom/backend/internal/server/middleware"
	"github.com/graphloom/graphloom/backend/internal/storage"
	"github.com/graphloom/graphloom/backend/internal/util"
	"github.com/graphloom/graphloom/backend/pkg/graph"
	"github.com/graphloom/graphloom/backend/pkg/loader"
	pgxstore "github.com/graphloom/graphloom/backend/pkg/store/pgx"
)

// maxWorkspaceDocuments caps how many documents a workspace can ingest.
const maxWorkspaceDocuments = 10

func UploadDocumentHandler(c echo.Context) error {
	type uploadData struct {
		ID    string `param:"id" validate:"required"`
		Async bool   `query:"async"`
	}

	type uploadResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
		Entities      int    `json:"entities,omitempty"`
		Relationships int    `json:"relationships,omitempty"`
	}

	data := new(uploadData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	reg := registry.New(app.DBConn)

	workspace, err := reg.GetWorkspace(ctx, data.ID, user.UserID)
	if err != nil {
		if err == registry.ErrWorkspaceNotFound {
			return c.JSON(http.StatusNotFound, uploadResponse{Message: "Workspace not found"})
		}
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}

	if workspace.DocumentCount >= maxWorkspaceDocuments {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Workspace document limit reached"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Missing file"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}

	if data.Async {
		correlationID, err := gonanoid.New()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
		}

		objectKey, err := storage.PutFile(ctx, app.S3, data.ID, fileHeader.Filename, correlationID, bytes.NewReader(content))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Failed to store document"})
		}

		msg := queue.IngestJobMsg{
			WorkspaceID:   data.ID,
			UserID:        user.UserID,
			ObjectKey:     objectKey,
			Filename:      fileHeader.Filename,
			CorrelationID: correlationID,
		}
		msgBytes, err := json.Marshal(msg)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
		}
		if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msgBytes); err != nil {
			return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Failed to enqueue document"})
		}

		return c.JSON(http.StatusAccepted, uploadResponse{
			Message:       "Document queued for ingestion",
			CorrelationID: correlationID,
		})
	}

	text, err := loader.ExtractText(ctx, fileHeader.Filename, content)
	if err != nil {
		if errors.Is(err, loader.ErrUnsupportedFormat) {
			return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Unsupported file format"})
		}
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Failed to extract text from document"})
	}

	graphStorage, err := pgxstore.NewGraphDBStorageWithConnection(ctx, app.DBConn, app.AiClient)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}

	graphClient, err := graph.NewGraphClient(graph.NewGraphClientParams{
		TokenEncoder:       util.GetEnvString("AI_TOKEN_ENCODER", "o200k_base"),
		MaxUnitTokens:      int(util.GetEnvNumeric("AI_MAX_UNIT_TOKENS", 1200)),
		ParallelAiRequests: int(util.GetEnvNumeric("AI_PARALLEL_REQUESTS", 4)),
		MaxRetries:         int(util.GetEnvNumeric("AI_MAX_RETRIES", 3)),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}

	batch, err := graphClient.IngestDocument(ctx, graph.IngestDocumentParams{
		WorkspaceID:  data.ID,
		DocumentName: fileHeader.Filename,
		Text:         text,
	}, app.AiClient, graphStorage)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, uploadResponse{Message: "Failed to ingest document"})
	}

	refreshWorkspaceStats(ctx, reg, graphStorage, data.ID, 1)

	return c.JSON(http.StatusOK, uploadResponse{
		Message:       "Document ingested successfully",
		Entities:      len(batch.Entities),
		Relationships: len(batch.Relationships),
	})
}

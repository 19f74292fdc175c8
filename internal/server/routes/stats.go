package routes

import (
	"context"

	"github.com/graphloom/graphloom/backend/internal/registry"
	"github.com/graphloom/graphloom/backend/pkg/logger"
	"github.com/graphloom/graphloom/backend/pkg/store"
)

// refreshWorkspaceStats recomputes the workspace counters from a fresh
// projection after an ingest. Counter updates are best-effort relative to the
// ingest itself, but a failed update means the document quota undercounts, so
// both failure paths are logged.
func refreshWorkspaceStats(
	ctx context.Context,
	reg *registry.Registry,
	graphStorage store.GraphStorage,
	workspaceID string,
	documentDelta int,
) {
	projection, err := graphStorage.ProjectGraph(ctx, workspaceID)
	if err != nil {
		logger.Warn("[Routes][WorkspaceStats] Failed to project graph for counters",
			"workspace", workspaceID, "err", err)
		return
	}

	err = reg.UpdateStats(ctx, workspaceID, documentDelta, len(projection.Nodes), len(projection.Edges))
	if err != nil {
		logger.Warn("[Routes][WorkspaceStats] Failed to update workspace counters",
			"workspace", workspaceID, "err", err)
	}
}

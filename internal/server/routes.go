package server

import (
	"github.com/graphloom/graphloom/backend/internal/server/middleware"
	"github.com/graphloom/graphloom/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Workspace routes
	apiRoutes.GET("/workspaces", routes.GetWorkspacesHandler)
	apiRoutes.POST("/workspaces", routes.CreateWorkspaceHandler)
	apiRoutes.GET("/workspaces/:id", routes.GetWorkspaceHandler)

	// Document ingestion
	apiRoutes.POST("/workspaces/:id/documents", routes.UploadDocumentHandler)

	// Graph read
	apiRoutes.GET("/workspaces/:id/graph", routes.GetGraphHandler)

	// Entity mutations
	apiRoutes.PATCH("/workspaces/:id/entities", routes.EditEntityHandler)
	apiRoutes.POST("/workspaces/:id/entities/merge", routes.MergeEntitiesHandler)
	apiRoutes.GET("/workspaces/:id/entities/suggestions", routes.GetMergeSuggestionsHandler)
}

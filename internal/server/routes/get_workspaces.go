package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphloom/graphloom/backend/internal/registry"
	"github.com/graphloom/graphloom/backend/internal/server/middleware"
)

func GetWorkspacesHandler(c echo.Context) error {
	type getWorkspacesResponse struct {
		Message    string               `json:"message"`
		Workspaces []registry.Workspace `json:"workspaces"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	reg := registry.New(c.(*middleware.AppContext).App.DBConn)

	workspaces, err := reg.ListWorkspaces(ctx, user.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, getWorkspacesResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, getWorkspacesResponse{
		Message:    "Workspaces fetched successfully",
		Workspaces: workspaces,
	})
}

package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphloom/graphloom/backend/internal/registry"
	"github.com/graphloom/graphloom/backend/internal/server/middleware"
)

func GetWorkspaceHandler(c echo.Context) error {
	type getWorkspaceResponse struct {
		Message   string              `json:"message"`
		Workspace *registry.Workspace `json:"workspace,omitempty"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	reg := registry.New(c.(*middleware.AppContext).App.DBConn)

	workspace, err := reg.GetWorkspace(ctx, c.Param("id"), user.UserID)
	if err != nil {
		if errors.Is(err, registry.ErrWorkspaceNotFound) {
			return c.JSON(http.StatusNotFound, getWorkspaceResponse{Message: "Workspace not found"})
		}
		return c.JSON(http.StatusInternalServerError, getWorkspaceResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, getWorkspaceResponse{
		Message:   "Workspace fetched successfully",
		Workspace: workspace,
	})
}

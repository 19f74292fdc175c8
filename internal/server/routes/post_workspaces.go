package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphloom/graphloom/backend/internal/registry"
	"github.com/graphloom/graphloom/backend/internal/server/middleware"
)

func CreateWorkspaceHandler(c echo.Context) error {
	type createWorkspaceData struct {
		Name string `json:"name" validate:"required"`
	}

	type createWorkspaceResponse struct {
		Message   string              `json:"message"`
		Workspace *registry.Workspace `json:"workspace,omitempty"`
	}

	data := new(createWorkspaceData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createWorkspaceResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createWorkspaceResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	reg := registry.New(c.(*middleware.AppContext).App.DBConn)

	workspace, err := reg.CreateWorkspace(ctx, data.Name, user.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createWorkspaceResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusCreated, createWorkspaceResponse{
		Message:   "Workspace created successfully",
		Workspace: workspace,
	})
}

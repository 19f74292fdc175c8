package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphloom/graphloom/backend/internal/registry"
	"github.com/graphloom/graphloom/backend/internal/server/middleware"
	"github.com/graphloom/graphloom/backend/pkg/store"
	pgxstore "github.com/graphloom/graphloom/backend/pkg/store/pgx"
)

func MergeEntitiesHandler(c echo.Context) error {
	type mergeEntitiesData struct {
		ID         string `param:"id" validate:"required"`
		KeepName   string `json:"keep_name" validate:"required"`
		DeleteName string `json:"delete_name" validate:"required"`
	}

	type mergeEntitiesResponse struct {
		Message string `json:"message"`
	}

	data := new(mergeEntitiesData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, mergeEntitiesResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, mergeEntitiesResponse{Message: "Invalid request params"})
	}

	if data.KeepName == data.DeleteName {
		return c.JSON(http.StatusBadRequest, mergeEntitiesResponse{Message: "Cannot merge an entity into itself"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	reg := registry.New(app.DBConn)

	if _, err := reg.GetWorkspace(ctx, data.ID, user.UserID); err != nil {
		if err == registry.ErrWorkspaceNotFound {
			return c.JSON(http.StatusNotFound, mergeEntitiesResponse{Message: "Workspace not found"})
		}
		return c.JSON(http.StatusInternalServerError, mergeEntitiesResponse{Message: "Internal server error"})
	}

	storage, err := pgxstore.NewGraphDBStorageWithConnection(ctx, app.DBConn, app.AiClient)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, mergeEntitiesResponse{Message: "Internal server error"})
	}

	err = storage.MergeEntities(ctx, data.ID, data.KeepName, data.DeleteName)
	if err != nil {
		if errors.Is(err, store.ErrEntityNotFound) {
			// The wrapped error names the missing entity.
			return c.JSON(http.StatusNotFound, mergeEntitiesResponse{Message: err.Error()})
		}
		return c.JSON(http.StatusServiceUnavailable, mergeEntitiesResponse{Message: "Graph store unavailable"})
	}

	return c.JSON(http.StatusOK, mergeEntitiesResponse{Message: "Entities merged successfully"})
}

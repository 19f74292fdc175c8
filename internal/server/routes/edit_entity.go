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

func EditEntityHandler(c echo.Context) error {
	type editEntityData struct {
		ID          string `param:"id" validate:"required"`
		OldName     string `json:"old_name" validate:"required"`
		NewName     string `json:"new_name" validate:"required"`
		Type        string `json:"type" validate:"required"`
		Description string `json:"description"`
	}

	type editEntityResponse struct {
		Message string `json:"message"`
	}

	data := new(editEntityData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editEntityResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, editEntityResponse{Message: "Invalid request params"})
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
			return c.JSON(http.StatusNotFound, editEntityResponse{Message: "Workspace not found"})
		}
		return c.JSON(http.StatusInternalServerError, editEntityResponse{Message: "Internal server error"})
	}

	storage, err := pgxstore.NewGraphDBStorageWithConnection(ctx, app.DBConn, app.AiClient)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, editEntityResponse{Message: "Internal server error"})
	}

	err = storage.RenameEntity(ctx, data.ID, data.OldName, data.NewName, data.Type, data.Description)
	if err != nil {
		if errors.Is(err, store.ErrEntityNotFound) {
			return c.JSON(http.StatusNotFound, editEntityResponse{Message: "Entity not found: " + data.OldName})
		}
		if errors.Is(err, store.ErrEntityExists) {
			return c.JSON(http.StatusConflict, editEntityResponse{Message: "Entity already exists: " + data.NewName})
		}
		return c.JSON(http.StatusServiceUnavailable, editEntityResponse{Message: "Graph store unavailable"})
	}

	return c.JSON(http.StatusOK, editEntityResponse{Message: "Entity updated successfully"})
}

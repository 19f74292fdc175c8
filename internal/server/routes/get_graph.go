package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphloom/graphloom/backend/internal/registry"
	"github.com/graphloom/graphloom/backend/internal/server/middleware"
	"github.com/graphloom/graphloom/backend/pkg/common"
	pgxstore "github.com/graphloom/graphloom/backend/pkg/store/pgx"
)

func GetGraphHandler(c echo.Context) error {
	type getGraphData struct {
		ID string `param:"id" validate:"required"`
	}

	type getGraphResponse struct {
		Message string                  `json:"message"`
		Graph   *common.GraphProjection `json:"graph,omitempty"`
	}

	data := new(getGraphData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, getGraphResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, getGraphResponse{Message: "Invalid request params"})
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
			return c.JSON(http.StatusNotFound, getGraphResponse{Message: "Workspace not found"})
		}
		return c.JSON(http.StatusInternalServerError, getGraphResponse{Message: "Internal server error"})
	}

	storage, err := pgxstore.NewGraphDBStorageWithConnection(ctx, app.DBConn, app.AiClient)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, getGraphResponse{Message: "Internal server error"})
	}

	projection, err := storage.ProjectGraph(ctx, data.ID)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, getGraphResponse{Message: "Graph store unavailable"})
	}

	return c.JSON(http.StatusOK, getGraphResponse{
		Message: "Graph fetched successfully",
		Graph:   projection,
	})
}

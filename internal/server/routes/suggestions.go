package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphloom/graphloom/backend/internal/registry"
	"github.com/graphloom/graphloom/backend/internal/server/middleware"
	"github.com/graphloom/graphloom/backend/pkg/common"
	pgxstore "github.com/graphloom/graphloom/backend/pkg/store/pgx"
)

func GetMergeSuggestionsHandler(c echo.Context) error {
	type getSuggestionsData struct {
		ID    string `param:"id" validate:"required"`
		Limit int    `query:"limit"`
	}

	type getSuggestionsResponse struct {
		Message     string                  `json:"message"`
		Suggestions []common.MergeCandidate `json:"suggestions"`
	}

	data := new(getSuggestionsData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, getSuggestionsResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, getSuggestionsResponse{Message: "Invalid request params"})
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
			return c.JSON(http.StatusNotFound, getSuggestionsResponse{Message: "Workspace not found"})
		}
		return c.JSON(http.StatusInternalServerError, getSuggestionsResponse{Message: "Internal server error"})
	}

	storage, err := pgxstore.NewGraphDBStorageWithConnection(ctx, app.DBConn, app.AiClient)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, getSuggestionsResponse{Message: "Internal server error"})
	}

	suggestions, err := storage.FindMergeCandidates(ctx, data.ID, data.Limit)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, getSuggestionsResponse{Message: "Graph store unavailable"})
	}
	if suggestions == nil {
		suggestions = []common.MergeCandidate{}
	}

	return c.JSON(http.StatusOK, getSuggestionsResponse{
		Message:     "Merge suggestions fetched successfully",
		Suggestions: suggestions,
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/friendo-social/backend/internal/cache"
	"github.com/friendo-social/backend/internal/engine"
	"github.com/friendo-social/backend/internal/middleware"
	"github.com/friendo-social/backend/internal/models"
	"github.com/friendo-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ReactionHandler handles HTTP requests related to reactions
type ReactionHandler struct {
	reactionEngine *engine.ReactionEngine
	feedCache      *cache.Cache
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactionEngine *engine.ReactionEngine, feedCache *cache.Cache) *ReactionHandler {
	return &ReactionHandler{
		reactionEngine: reactionEngine,
		feedCache:      feedCache,
	}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.GET("/getReaction", h.GetReaction)
	g.PATCH("/sendReaction", h.SendReaction)
	g.DELETE("/undoReaction", h.UndoReaction)
}

// GetReaction reports the caller's reaction on a post
func (h *ReactionHandler) GetReaction(c echo.Context) error {
	callerID := middleware.CallerID(c)

	postID := c.QueryParam("postId")
	if postID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing postId query parameter")
	}

	kind, err := h.reactionEngine.GetReaction(c.Request().Context(), callerID, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"type": kind})
}

// SendReaction records the caller's reaction on a post
func (h *ReactionHandler) SendReaction(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.SendReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.reactionEngine.SendReaction(c.Request().Context(), callerID, req.PostID, req.Type)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrInvalidReaction):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrAlreadyReacted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, repositories.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.feedCache.Invalidate(c.Request().Context(), cache.FeedKey)

	return c.NoContent(http.StatusOK)
}

// UndoReaction removes the caller's reaction from a post
func (h *ReactionHandler) UndoReaction(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.UndoReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.reactionEngine.UndoReaction(c.Request().Context(), callerID, req.PostID)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrNoReaction):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.feedCache.Invalidate(c.Request().Context(), cache.FeedKey)

	return c.NoContent(http.StatusOK)
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/friendo-social/backend/internal/cache"
	"github.com/friendo-social/backend/internal/middleware"
	"github.com/friendo-social/backend/internal/models"
	"github.com/friendo-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	postRepository repositories.PostRepository
	feedCache      *cache.Cache
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(postRepo repositories.PostRepository, feedCache *cache.Cache) *CommentHandler {
	return &CommentHandler{
		postRepository: postRepo,
		feedCache:      feedCache,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.PUT("/newComment", h.NewComment)
	g.DELETE("/deleteComment", h.DeleteComment)
}

// NewComment appends a comment by the caller to a post
func (h *CommentHandler) NewComment(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    callerID,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}
	if err := h.postRepository.AddComment(c.Request().Context(), req.PostID, comment); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.feedCache.Invalidate(c.Request().Context(), cache.FeedKey)

	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment; only its author may do so
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.DeleteCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	commentID, err := primitive.ObjectIDFromHex(req.CommentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID format")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), req.PostID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var comment *models.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			comment = &post.Comments[i]
			break
		}
	}
	if comment == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	if comment.UserID != callerID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	if err := h.postRepository.RemoveComment(c.Request().Context(), req.PostID, commentID); err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.feedCache.Invalidate(c.Request().Context(), cache.FeedKey)

	return c.NoContent(http.StatusOK)
}

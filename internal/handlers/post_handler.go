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
)

// feedCacheTTL bounds how stale the public feed may get
const feedCacheTTL = 30 * time.Second

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	feedCache      *cache.Cache
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, feedCache *cache.Cache) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		feedCache:      feedCache,
	}
}

// RegisterUserRoutes registers the session-gated post routes
func (h *PostHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/createPost", h.CreatePost)
	g.DELETE("/deletePost", h.DeletePost)
}

// RegisterPublicRoutes registers the public post routes
func (h *PostHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/getPosts", h.GetPosts)
}

// CreatePost creates a new post authored by the caller
func (h *PostHandler) CreatePost(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		UserID: callerID,
		Text:   req.Text,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.feedCache.Invalidate(c.Request().Context(), cache.FeedKey)

	return c.JSON(http.StatusCreated, post)
}

// DeletePost deletes a post; only its author may do so
func (h *PostHandler) DeletePost(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.DeletePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), req.PostID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != callerID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), req.PostID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.feedCache.Invalidate(c.Request().Context(), cache.FeedKey)

	return c.NoContent(http.StatusOK)
}

// GetPosts retrieves all posts, newest first, through the feed cache
func (h *PostHandler) GetPosts(c echo.Context) error {
	ctx := c.Request().Context()

	posts := []models.Post{}
	err := h.feedCache.Aside(ctx, cache.FeedKey, &posts, feedCacheTTL, func() error {
		fetched, err := h.postRepository.GetAllPosts(ctx)
		if err != nil {
			return err
		}
		posts = fetched
		return nil
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, posts)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/friendo-social/backend/internal/engine"
	"github.com/friendo-social/backend/internal/middleware"
	"github.com/friendo-social/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles HTTP requests related to friend relationships
type FriendshipHandler struct {
	friendshipEngine *engine.FriendshipEngine
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendshipEngine *engine.FriendshipEngine) *FriendshipHandler {
	return &FriendshipHandler{friendshipEngine: friendshipEngine}
}

// RegisterFriendshipRoutes registers the session-gated friendship routes.
// The list route is public and registered separately by the router.
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friend/request", h.SendFriendRequest)
	g.DELETE("/friend/request", h.WithdrawFriendRequest)
	g.PUT("/friend/accept", h.AcceptFriendRequest)
	g.DELETE("/friend/remove", h.RemoveFriend)
}

// ListFriends returns a user's relationship record grouped into
// sentRequests, pending and accepted
func (h *FriendshipHandler) ListFriends(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	list, err := h.friendshipEngine.ListRelationships(c.Request().Context(), uint(userID))
	if err != nil {
		if errors.Is(err, engine.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, list)
}

// SendFriendRequest sends a friend request from the caller
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.CreateFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.friendshipEngine.SendFriendRequest(c.Request().Context(), callerID, req.UserID)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrSelfRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, engine.ErrRelationshipExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"status": "requested"})
}

// WithdrawFriendRequest cancels a request the caller sent, or declines one
// the caller received
func (h *FriendshipHandler) WithdrawFriendRequest(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.WithdrawFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.friendshipEngine.WithdrawFriendRequest(c.Request().Context(), callerID, req.TargetUserID)
	if err != nil {
		if errors.Is(err, engine.ErrRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Friend request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusOK)
}

// AcceptFriendRequest accepts a pending request. A request whose sender
// side has meanwhile vanished yields a soft "requestNoLongerValid" outcome
// instead of an error.
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.AcceptFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.friendshipEngine.AcceptFriendRequest(c.Request().Context(), callerID, req.SenderUserID)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrRequestNoLongerValid):
		return c.JSON(http.StatusOK, echo.Map{"status": "requestNoLongerValid"})
	case errors.Is(err, engine.ErrRequestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Friend request not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "accepted"})
}

// RemoveFriend dissolves an accepted friendship from either side
func (h *FriendshipHandler) RemoveFriend(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.RemoveFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.friendshipEngine.RemoveFriend(c.Request().Context(), callerID, req.FriendUserID)
	if err != nil {
		if errors.Is(err, engine.ErrNotFriends) {
			return echo.NewHTTPError(http.StatusNotFound, "Friendship not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusOK)
}

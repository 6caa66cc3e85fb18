package handlers

import (
	"errors"
	"net/http"

	"github.com/friendo-social/backend/internal/middleware"
	"github.com/friendo-social/backend/internal/models"
	"github.com/friendo-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountHandler handles changes to the authenticated user's credentials
type AccountHandler struct {
	userRepository repositories.UserRepository
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(userRepo repositories.UserRepository) *AccountHandler {
	return &AccountHandler{userRepository: userRepo}
}

// RegisterAccountRoutes registers account-related routes
func (h *AccountHandler) RegisterAccountRoutes(g *echo.Group) {
	g.POST("/changePassword", h.ChangePassword)
	g.POST("/changeEmail", h.ChangeEmail)
}

// ChangePassword replaces the caller's password after verifying the
// current one
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(callerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.VerifyPass)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "The given password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPass), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user.PasswordHash = string(hashedPassword)
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusOK)
}

// ChangeEmail replaces the caller's email after verifying the password
func (h *AccountHandler) ChangeEmail(c echo.Context) error {
	callerID := middleware.CallerID(c)

	var req models.ChangeEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(callerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.VerifyPass)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "The given password is incorrect")
	}

	if existing, err := h.userRepository.GetUserByEmail(req.NewEmail); err == nil && existing.ID != user.ID {
		return echo.NewHTTPError(http.StatusConflict, "Email address already taken")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user.Email = req.NewEmail
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusOK)
}

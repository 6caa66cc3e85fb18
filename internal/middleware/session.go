package middleware

import (
	"net/http"

	"github.com/friendo-social/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// SessionCookieName is the HTTP-only cookie carrying the session token
const SessionCookieName = "token"

// UserIDKey is the echo context key the middleware stores the caller under
const UserIDKey = "userID"

// SessionAuth verifies the signed session cookie and stores the caller's
// user ID in the request context. Missing or invalid tokens get a 401.
func SessionAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access denied")
			}

			claims, err := ParseSessionToken(cookie.Value, jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access denied")
			}

			c.Set(UserIDKey, claims.UserID)
			return next(c)
		}
	}
}

// ParseSessionToken validates a session token and returns its claims
func ParseSessionToken(tokenString, jwtSecret string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// CallerID returns the authenticated user ID set by SessionAuth
func CallerID(c echo.Context) uint {
	id, _ := c.Get(UserIDKey).(uint)
	return id
}

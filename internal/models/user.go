package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// User is an account stored in PostgreSQL. The password hash never leaves
// the server.
type User struct {
	gorm.Model   `json:"-"`
	ID           uint   `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	Username     string `json:"username" gorm:"uniqueIndex"`
	PasswordHash string `json:"-"`
}

// RegisterRequest defines the request body for account registration
type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Username       string `json:"username" validate:"required,min=4,max=32"`
	Password       string `json:"password" validate:"required,min=6,max=72"`
	PasswordVerify string `json:"passwordVerify" validate:"required,eqfield=Password"`
}

// LoginRequest defines the request body for logging in. EmailOrUsername is
// treated as an email address when it parses as one, otherwise as a username.
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// ChangePasswordRequest defines the request body for changing the password
type ChangePasswordRequest struct {
	VerifyPass    string `json:"verifyPass" validate:"required"`
	NewPass       string `json:"newPass" validate:"required,min=6,max=72"`
	NewPassVerify string `json:"newPassVerify" validate:"required,eqfield=NewPass"`
}

// ChangeEmailRequest defines the request body for changing the account email
type ChangeEmailRequest struct {
	VerifyPass string `json:"verifyPass" validate:"required"`
	NewEmail   string `json:"newEmail" validate:"required,email"`
}

// SessionClaims are the custom claims carried by the session cookie token
type SessionClaims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

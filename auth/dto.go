package auth

import (
	"github.com/user/emojicringe-go/models"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"notblank,min=3,max=30,username" example:"alice"`
	Email    string `json:"email" validate:"notblank,emailshape,max=254" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=6,max=128" example:"secret1"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"notblank,emailshape,max=254" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=6,max=128" example:"secret1"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string       `json:"message" example:"Login successful"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Session is a freshly issued token together with its user.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ProfileResponse is returned by GET /api/auth/me.
type ProfileResponse struct {
	User *models.User `json:"user"`
}

package auth

import "github.com/fkhayef/tripsplit/internal/user"

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token     string             `json:"token"`
	ExpiresAt string             `json:"expires_at"`
	User      *user.UserResponse `json:"user"`
}

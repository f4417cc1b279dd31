package dto

import (
	"time"

	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/service"
)

// RegisterRequest payload for new accounts. Email format and password strength are
// judged by the identity provider so its reason codes reach the client.
type RegisterRequest struct {
	DisplayName     string `json:"displayName" validate:"required,max=80"`
	Email           string `json:"email" validate:"required,max=254"`
	Password        string `json:"password" validate:"required,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,max=128"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User      domain.Identity `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// NewAuthResponse converts a service result.
func NewAuthResponse(res service.AuthResult) AuthResponse {
	return AuthResponse{User: res.Identity, Token: res.Token, ExpiresAt: res.ExpiresAt}
}

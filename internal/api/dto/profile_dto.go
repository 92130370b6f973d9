package dto

import (
	"time"

	"github.com/civicdesk/issue-service/internal/domain"
)

// RegisterRequest payload for citizen sign-up.
type RegisterRequest struct {
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse wraps a successful authentication.
type AuthResponse struct {
	Profile   ProfileResponse `json:"profile"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// ProfileResponse is the public shape of a profile.
type ProfileResponse struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	FullName   string          `json:"full_name"`
	Phone      *string         `json:"phone,omitempty"`
	Role       domain.UserRole `json:"role"`
	Department *string         `json:"department,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CreateOfficerRequest payload for admin account provisioning.
type CreateOfficerRequest struct {
	FullName   string          `json:"full_name"`
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Phone      *string         `json:"phone,omitempty"`
	Role       domain.UserRole `json:"role"`
	Department *string         `json:"department,omitempty"`
}

// PromotionRequestPayload files a role change.
type PromotionRequestPayload struct {
	UserID  string          `json:"user_id"`
	ToRole  domain.UserRole `json:"to_role"`
	Message *string         `json:"message,omitempty"`
}

// ReviewPromotionRequest accepts or rejects a pending promotion.
type ReviewPromotionRequest struct {
	Accept bool `json:"accept"`
}

// PromotionResponse is the public shape of a promotion request.
type PromotionResponse struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	RequestedBy string                 `json:"requested_by"`
	FromRole    domain.UserRole        `json:"from_role"`
	ToRole      domain.UserRole        `json:"to_role"`
	Status      domain.PromotionStatus `json:"status"`
	Message     *string                `json:"message,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

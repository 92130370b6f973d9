package domain

import "time"

// PromotionStatus enumerates review outcomes for a promotion request.
type PromotionStatus string

const (
	PromotionPending  PromotionStatus = "pending"
	PromotionAccepted PromotionStatus = "accepted"
	PromotionRejected PromotionStatus = "rejected"
)

// PromotionRequest asks to move a profile between roles. Promotions into
// the admin role re-check the admin seat cap at review time.
type PromotionRequest struct {
	ID          string
	UserID      string
	RequestedBy string
	FromRole    UserRole
	ToRole      UserRole
	Status      PromotionStatus
	Message     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

package dto

import (
	"time"

	"github.com/civicdesk/issue-service/internal/domain"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    domain.IssueCategory `json:"category"`
	Priority    domain.IssuePriority `json:"priority"`
	Latitude    float64              `json:"latitude"`
	Longitude   float64              `json:"longitude"`
	Address     *string              `json:"address,omitempty"`
	Images      []string             `json:"images,omitempty"`
}

// IssueSummary response.
type IssueSummary struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Category        domain.IssueCategory `json:"category"`
	Status          domain.IssueStatus   `json:"status"`
	Priority        domain.IssuePriority `json:"priority"`
	ReporterID      string               `json:"reporter_id"`
	AssignedL1ID    *string              `json:"assigned_l1_id,omitempty"`
	AssignedL2ID    *string              `json:"assigned_l2_id,omitempty"`
	SLADeadline     *time.Time           `json:"sla_deadline,omitempty"`
	TimeRemaining   string               `json:"time_remaining,omitempty"`
	EscalationCount int                  `json:"escalation_count"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// IssueDetailResponse provides full issue info.
type IssueDetailResponse struct {
	IssueSummary
	Description string             `json:"description"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	Address     *string            `json:"address,omitempty"`
	Images      []string           `json:"images,omitempty"`
	AssignedL1A *time.Time         `json:"assigned_l1_at,omitempty"`
	AssignedL2A *time.Time         `json:"assigned_l2_at,omitempty"`
	ResolvedAt  *time.Time         `json:"resolved_at,omitempty"`
	ClosedAt    *time.Time         `json:"closed_at,omitempty"`
	Comments    []CommentResponse  `json:"comments"`
	Activity    []ActivityResponse `json:"activity"`
}

// CommentResponse represents a thread message.
type CommentResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Comment    string    `json:"comment"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActivityResponse represents an audit trail entry.
type ActivityResponse struct {
	ID        string                `json:"id"`
	UserID    *string               `json:"user_id,omitempty"`
	Action    domain.ActivityAction `json:"action"`
	Details   map[string]any        `json:"details,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Comment    string `json:"comment"`
	IsInternal bool   `json:"is_internal"`
}

// AssignL2Request payload.
type AssignL2Request struct {
	OfficerID string `json:"officer_id"`
}

// ResolveRequest payload.
type ResolveRequest struct {
	Note string `json:"note"`
}

// OverrideStatusRequest payload.
type OverrideStatusRequest struct {
	Status domain.IssueStatus `json:"status"`
}

package events

import (
	"time"

	"github.com/civicdesk/issue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated       EventType = "issue_created"
	EventIssueAssigned      EventType = "issue_assigned"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventIssueEscalated     EventType = "issue_escalated"
	EventSLANotification    EventType = "sla_notification"
)

// Actor encapsulates actor metadata for an event. A nil UserID means the
// event was produced by an automated component.
type Actor struct {
	Role   domain.UserRole `json:"role,omitempty"`
	UserID *string         `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Category    domain.IssueCategory `json:"category"`
	Priority    domain.IssuePriority `json:"priority"`
	Title       string               `json:"title"`
	SLADeadline *time.Time           `json:"sla_deadline,omitempty"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	Tier      string `json:"tier"`
	OfficerID string `json:"officer_id"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
	Override  bool               `json:"override,omitempty"`
}

// IssueEscalatedPayload payload.
type IssueEscalatedPayload struct {
	EscalationCount int        `json:"escalation_count"`
	SLADeadline     *time.Time `json:"sla_deadline,omitempty"`
	OverdueByHours  int        `json:"overdue_by_hours"`
}

// SLANotificationPayload payload.
type SLANotificationPayload struct {
	HoursRemaining int        `json:"hours_remaining"`
	SLADeadline    *time.Time `json:"sla_deadline,omitempty"`
}

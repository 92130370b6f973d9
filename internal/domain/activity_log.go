package domain

import "time"

// ActivityAction tags an audit trail entry.
type ActivityAction string

const (
	ActionAutoAssignedL1 ActivityAction = "auto_assigned_l1"
	ActionAutoEscalated  ActivityAction = "auto_escalated"
	ActionAssignedL2     ActivityAction = "assigned_l2"
	ActionStatusChanged  ActivityAction = "status_changed"
	ActionStatusOverride ActivityAction = "status_override"
	ActionResolved       ActivityAction = "resolved"
	ActionClosed         ActivityAction = "closed"
)

// ActivityLog is an append-only audit record. Entries are created once by
// services on every automated mutation and never updated or deleted.
type ActivityLog struct {
	ID        string
	IssueID   string
	UserID    *string
	Action    ActivityAction
	Details   map[string]any
	CreatedAt time.Time
}

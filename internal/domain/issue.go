package domain

import "time"

// IssueStatus enumerates lifecycle states for civic issues.
type IssueStatus string

const (
	IssueStatusSubmitted  IssueStatus = "submitted"
	IssueStatusAssignedL1 IssueStatus = "assigned_l1"
	IssueStatusAssignedL2 IssueStatus = "assigned_l2"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
	IssueStatusEscalated  IssueStatus = "escalated"
)

// TerminalStatuses are excluded from every sweep predicate.
var TerminalStatuses = []IssueStatus{IssueStatusResolved, IssueStatusClosed}

// IsTerminal reports whether no automatic transition applies anymore.
func (s IssueStatus) IsTerminal() bool {
	return s == IssueStatusResolved || s == IssueStatusClosed
}

// IssuePriority enumerates SLA urgency.
type IssuePriority string

const (
	IssuePriorityLow      IssuePriority = "low"
	IssuePriorityMedium   IssuePriority = "medium"
	IssuePriorityHigh     IssuePriority = "high"
	IssuePriorityCritical IssuePriority = "critical"
)

// Priorities lists all priorities from most to least urgent.
var Priorities = []IssuePriority{IssuePriorityCritical, IssuePriorityHigh, IssuePriorityMedium, IssuePriorityLow}

// IssueCategory classifies the reported problem.
type IssueCategory string

const (
	CategoryPothole     IssueCategory = "pothole"
	CategoryStreetlight IssueCategory = "streetlight"
	CategoryGarbage     IssueCategory = "garbage"
	CategoryWaterSupply IssueCategory = "water_supply"
	CategorySewage      IssueCategory = "sewage"
	CategoryTraffic     IssueCategory = "traffic"
	CategoryPark        IssueCategory = "park"
	CategoryOther       IssueCategory = "other"
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c IssueCategory) bool {
	switch c {
	case CategoryPothole, CategoryStreetlight, CategoryGarbage, CategoryWaterSupply,
		CategorySewage, CategoryTraffic, CategoryPark, CategoryOther:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p IssuePriority) bool {
	switch p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh, IssuePriorityCritical:
		return true
	}
	return false
}

// Issue is the aggregate for reported civic problems.
type Issue struct {
	ID              string
	Title           string
	Description     string
	Category        IssueCategory
	Status          IssueStatus
	Priority        IssuePriority
	Latitude        float64
	Longitude       float64
	Address         *string
	Images          []string
	ReporterID      string
	AssignedL1ID    *string
	AssignedL2ID    *string
	AssignedL1At    *time.Time
	AssignedL2At    *time.Time
	SLADeadline     *time.Time
	EscalationCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
}

package service

import (
	"context"
	"time"

	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/repository"
	"github.com/civicdesk/issue-service/internal/sla"
	apperrors "github.com/civicdesk/issue-service/pkg/util/errorutil"
)

// SLAMetrics is the read-only monitoring snapshot.
type SLAMetrics struct {
	TotalIssues    int             `json:"totalIssues"`
	OverdueIssues  int             `json:"overdueIssues"`
	CriticalIssues int             `json:"criticalIssues"`
	OverdueList    []OverdueIssue  `json:"overdueList"`
	CriticalList   []CriticalIssue `json:"criticalList"`
}

// OverdueIssue is a metrics row for an issue past its deadline.
type OverdueIssue struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Priority     domain.IssuePriority `json:"priority"`
	SLADeadline  *time.Time           `json:"sla_deadline"`
	HoursOverdue int                  `json:"hoursOverdue"`
}

// CriticalIssue is a metrics row for a critical issue inside its last day.
type CriticalIssue struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	SLADeadline    *time.Time `json:"sla_deadline"`
	HoursRemaining int        `json:"hoursRemaining"`
}

// SLAService computes SLA monitoring metrics without mutating anything.
type SLAService struct {
	issues repository.IssueRepository

	Now func() time.Time
}

// NewSLAService creates the service.
func NewSLAService(issues repository.IssueRepository) *SLAService {
	return &SLAService{issues: issues, Now: time.Now}
}

// Metrics summarizes all active issues: how many are past their deadline,
// and which critical-priority ones are inside their final 24 hours.
func (s *SLAService) Metrics(ctx context.Context) (*SLAMetrics, error) {
	now := s.Now()

	active, err := s.issues.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	metrics := &SLAMetrics{
		TotalIssues:  len(active),
		OverdueList:  []OverdueIssue{},
		CriticalList: []CriticalIssue{},
	}
	for i := range active {
		issue := &active[i]
		if issue.SLADeadline == nil {
			continue
		}
		deadline := *issue.SLADeadline
		if deadline.Before(now) {
			metrics.OverdueList = append(metrics.OverdueList, OverdueIssue{
				ID:           issue.ID,
				Title:        issue.Title,
				Priority:     issue.Priority,
				SLADeadline:  issue.SLADeadline,
				HoursOverdue: sla.HoursOverdue(deadline, now),
			})
			continue
		}
		if issue.Priority == domain.IssuePriorityCritical && deadline.Before(now.Add(24*time.Hour)) {
			metrics.CriticalList = append(metrics.CriticalList, CriticalIssue{
				ID:             issue.ID,
				Title:          issue.Title,
				SLADeadline:    issue.SLADeadline,
				HoursRemaining: sla.HoursRemaining(deadline, now),
			})
		}
	}
	metrics.OverdueIssues = len(metrics.OverdueList)
	metrics.CriticalIssues = len(metrics.CriticalList)
	return metrics, nil
}

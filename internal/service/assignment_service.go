package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/events"
	"github.com/civicdesk/issue-service/internal/repository"
	apperrors "github.com/civicdesk/issue-service/pkg/util/errorutil"
)

// AssignmentService routes newly submitted issues to the least-loaded
// first-tier officer.
type AssignmentService struct {
	issues     repository.IssueRepository
	profiles   repository.ProfileRepository
	activity   repository.ActivityLogRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger

	// Now is the clock; tests override it.
	Now func() time.Time
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	IssueRepo    repository.IssueRepository
	ProfileRepo  repository.ProfileRepository
	ActivityRepo repository.ActivityLogRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		issues:     deps.IssueRepo,
		profiles:   deps.ProfileRepo,
		activity:   deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		Now:        time.Now,
	}
}

// AutoAssignL1 picks the L1 officer with the fewest open assignments and
// hands the issue to them. The officer pool is iterated in registration
// order (created_at ascending), which makes ties deterministic: the
// earliest-registered officer wins. Open means the officer is still the
// first-tier assignee of an issue in assigned_l1, assigned_l2 or
// in_progress.
//
// The count-then-choose-then-write sequence is not serialized; two
// concurrent submissions can both pick the same officer. That is accepted
// best-effort fairness, not an invariant.
func (s *AssignmentService) AutoAssignL1(ctx context.Context, issueID string) (*domain.Issue, error) {
	officers, err := s.profiles.ListByRole(ctx, domain.RoleL1Officer)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(officers) == 0 {
		return nil, apperrors.NewConflict("no L1 officers available", map[string]any{"issue_id": issueID})
	}

	selected := s.selectLeastLoaded(ctx, officers)

	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	// Re-check right before writing: a concurrent submission or manual
	// admin edit may have assigned it already.
	if issue.Status != domain.IssueStatusSubmitted || issue.AssignedL1ID != nil {
		return nil, apperrors.NewConflict("issue no longer awaiting assignment", map[string]any{"issue_id": issueID})
	}

	now := s.Now()
	issue.AssignedL1ID = &selected.ID
	issue.AssignedL1At = &now
	issue.Status = domain.IssueStatusAssignedL1
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.activity.Create(ctx, &domain.ActivityLog{
		IssueID: issue.ID,
		UserID:  &selected.ID,
		Action:  domain.ActionAutoAssignedL1,
		Details: map[string]any{"officer_id": selected.ID},
	}); err != nil {
		s.logger.Warn("auto-assign activity entry failed", zap.String("issue_id", issue.ID), zap.Error(err))
	}

	s.publish(ctx, events.Event{
		Type:    events.EventIssueAssigned,
		IssueID: issue.ID,
		Actor:   events.Actor{Role: domain.RoleL1Officer, UserID: &selected.ID},
		Payload: events.IssueAssignedPayload{Tier: "l1", OfficerID: selected.ID},
	})
	return issue, nil
}

// selectLeastLoaded returns the officer with the strictly minimal open
// count, first in pool order on ties. When the load query fails the first
// officer in pool order is used as a fallback.
func (s *AssignmentService) selectLeastLoaded(ctx context.Context, officers []domain.Profile) *domain.Profile {
	ids := make([]string, len(officers))
	for i := range officers {
		ids[i] = officers[i].ID
	}

	counts, err := s.issues.CountOpenByAssignee(ctx, ids)
	if err != nil {
		s.logger.Warn("open assignment count failed, falling back to first officer", zap.Error(err))
		return &officers[0]
	}

	selected := &officers[0]
	minLoad := counts[selected.ID]
	for i := 1; i < len(officers); i++ {
		if load := counts[officers[i].ID]; load < minLoad {
			minLoad = load
			selected = &officers[i]
		}
	}
	return selected
}

func (s *AssignmentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/events"
	"github.com/civicdesk/issue-service/internal/repository"
	"github.com/civicdesk/issue-service/internal/sla"
	apperrors "github.com/civicdesk/issue-service/pkg/util/errorutil"
)

// IssueService coordinates issue intake and the officer-driven workflow.
type IssueService struct {
	issues     repository.IssueRepository
	comments   repository.CommentRepository
	activity   repository.ActivityLogRepository
	policy     *sla.Policy
	assigner   *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger

	Now func() time.Time
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo    repository.IssueRepository
	CommentRepo  repository.CommentRepository
	ActivityRepo repository.ActivityLogRepository
	Policy       *sla.Policy
	Assigner     *AssignmentService
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// IssueCreateInput describes a citizen's report.
type IssueCreateInput struct {
	Title       string
	Description string
	Category    domain.IssueCategory
	Priority    domain.IssuePriority
	Latitude    float64
	Longitude   float64
	Address     *string
	Images      []string
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := deps.Policy
	if policy == nil {
		policy = sla.DefaultPolicy()
	}
	return &IssueService{
		issues:     deps.IssueRepo,
		comments:   deps.CommentRepo,
		activity:   deps.ActivityRepo,
		policy:     policy,
		assigner:   deps.Assigner,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		Now:        time.Now,
	}
}

// CreateIssue records a citizen report, stamps the SLA deadline from the
// priority window, and hands the issue to the assignment balancer. A
// failed auto-assignment leaves the issue submitted; it never fails the
// creation itself.
func (s *IssueService) CreateIssue(ctx context.Context, reporterID string, input IssueCreateInput) (*domain.Issue, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if !domain.ValidCategory(input.Category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.IssuePriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	now := s.Now()
	deadline := s.policy.Deadline(priority, now)
	issue := &domain.Issue{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Status:      domain.IssueStatusSubmitted,
		Priority:    priority,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Address:     input.Address,
		Images:      input.Images,
		ReporterID:  reporterID,
		SLADeadline: &deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		Actor:   events.Actor{Role: domain.RoleCitizen, UserID: &issue.ReporterID},
		Payload: events.IssueCreatedPayload{
			Category:    issue.Category,
			Priority:    issue.Priority,
			Title:       issue.Title,
			SLADeadline: issue.SLADeadline,
		},
	})

	if s.assigner != nil {
		if assigned, err := s.assigner.AutoAssignL1(ctx, issue.ID); err != nil {
			s.logger.Warn("auto-assignment skipped", zap.String("issue_id", issue.ID), zap.Error(err))
		} else {
			issue = assigned
		}
	}
	return issue, nil
}

// ListIssuesForReporter returns a citizen's own issues.
func (s *IssueService) ListIssuesForReporter(ctx context.Context, reporterID string, limit, offset int) ([]domain.Issue, error) {
	issues, err := s.issues.ListWithFilter(ctx, repository.IssueFilter{
		ReporterID: &reporterID,
		Limit:      limit,
		Offset:     offset,
	})
	return issues, apperrors.MapError(err)
}

// ListIssues returns issues matching the filter for officer and admin views.
func (s *IssueService) ListIssues(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	issues, err := s.issues.ListWithFilter(ctx, filter)
	return issues, apperrors.MapError(err)
}

// GetIssue fetches an issue with its comment thread and audit trail.
// Citizens only see their own issues, without internal comments.
func (s *IssueService) GetIssue(ctx context.Context, actor *domain.Profile, issueID string) (*domain.Issue, []domain.IssueComment, []domain.ActivityLog, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	includeInternal := actor.Role != domain.RoleCitizen
	if actor.Role == domain.RoleCitizen && issue.ReporterID != actor.ID {
		return nil, nil, nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.comments.ListByIssue(ctx, issue.ID, includeInternal)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	activity, err := s.activity.ListByIssue(ctx, issue.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	return issue, comments, activity, nil
}

// AssignL2 routes an issue from the triaging L1 officer to a field L2
// officer.
func (s *IssueService) AssignL2(ctx context.Context, actor *domain.Profile, issueID, officerID string) (*domain.Issue, error) {
	if actor == nil || (actor.Role != domain.RoleL1Officer && actor.Role != domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("L1 officer required")
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !domain.ValidTransition(issue.Status, domain.IssueStatusAssignedL2) {
		return nil, apperrors.NewConflict("issue not ready for L2 assignment", map[string]any{"status": issue.Status})
	}

	now := s.Now()
	oldStatus := issue.Status
	issue.AssignedL2ID = &officerID
	if issue.AssignedL2At == nil {
		issue.AssignedL2At = &now
	}
	issue.Status = domain.IssueStatusAssignedL2
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recordActivity(ctx, issue.ID, &actor.ID, domain.ActionAssignedL2, map[string]any{
		"officer_id": officerID,
		"old_status": oldStatus,
	})
	s.publish(ctx, events.Event{
		Type:    events.EventIssueAssigned,
		IssueID: issue.ID,
		Actor:   events.Actor{Role: actor.Role, UserID: &actor.ID},
		Payload: events.IssueAssignedPayload{Tier: "l2", OfficerID: officerID},
	})
	return issue, nil
}

// StartWork moves an issue into in_progress; valid from assigned_l2 and
// from escalated.
func (s *IssueService) StartWork(ctx context.Context, actor *domain.Profile, issueID string) (*domain.Issue, error) {
	if actor == nil || (actor.Role != domain.RoleL2Officer && actor.Role != domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("L2 officer required")
	}
	return s.transition(ctx, actor, issueID, domain.IssueStatusInProgress, nil)
}

// Resolve completes an issue. The resolution note is mandatory and is
// appended as a public comment on success.
func (s *IssueService) Resolve(ctx context.Context, actor *domain.Profile, issueID, note string) (*domain.Issue, error) {
	if actor == nil || (actor.Role != domain.RoleL2Officer && actor.Role != domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("L2 officer required")
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperrors.NewValidationError("resolution note required", nil)
	}

	issue, err := s.transition(ctx, actor, issueID, domain.IssueStatusResolved, nil)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Create(ctx, &domain.IssueComment{
		IssueID: issue.ID,
		UserID:  actor.ID,
		Comment: "Issue Resolved:\n\n" + note,
	}); err != nil {
		s.logger.Warn("resolution comment failed", zap.String("issue_id", issue.ID), zap.Error(err))
	}
	return issue, nil
}

// Close archives an issue; any officer or admin may close, from any
// non-terminal state or from resolved.
func (s *IssueService) Close(ctx context.Context, actor *domain.Profile, issueID string) (*domain.Issue, error) {
	if actor == nil || (!actor.Role.IsOfficer() && actor.Role != domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("officer or admin required")
	}
	return s.transition(ctx, actor, issueID, domain.IssueStatusClosed, nil)
}

// OverrideStatus lets an admin set any status directly, bypassing the
// transition graph. The bypass itself is what gets audited.
func (s *IssueService) OverrideStatus(ctx context.Context, actor *domain.Profile, issueID string, status domain.IssueStatus) (*domain.Issue, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	oldStatus := issue.Status
	s.applyStatus(issue, status)
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recordActivity(ctx, issue.ID, &actor.ID, domain.ActionStatusOverride, map[string]any{
		"old_status":         oldStatus,
		"new_status":         status,
		"bypassed_validator": !domain.ValidTransition(oldStatus, status),
	})
	s.publish(ctx, events.Event{
		Type:    events.EventIssueStatusChanged,
		IssueID: issue.ID,
		Actor:   events.Actor{Role: actor.Role, UserID: &actor.ID},
		Payload: events.IssueStatusChangedPayload{OldStatus: oldStatus, NewStatus: status, Override: true},
	})
	return issue, nil
}

// AddComment appends a message to an issue thread. Citizens can only
// comment publicly on their own issues.
func (s *IssueService) AddComment(ctx context.Context, actor *domain.Profile, issueID, text string, internal bool) (*domain.IssueComment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("comment required", nil)
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleCitizen {
		if issue.ReporterID != actor.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
		internal = false
	}

	comment := &domain.IssueComment{
		IssueID:    issue.ID,
		UserID:     actor.ID,
		Comment:    strings.TrimSpace(text),
		IsInternal: internal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// transition applies a validated status change with its side effects.
func (s *IssueService) transition(ctx context.Context, actor *domain.Profile, issueID string, to domain.IssueStatus, details map[string]any) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !domain.ValidTransition(issue.Status, to) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": issue.Status,
			"to":   to,
		})
	}

	oldStatus := issue.Status
	s.applyStatus(issue, to)
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	action := domain.ActionStatusChanged
	switch to {
	case domain.IssueStatusResolved:
		action = domain.ActionResolved
	case domain.IssueStatusClosed:
		action = domain.ActionClosed
	}
	if details == nil {
		details = map[string]any{}
	}
	details["old_status"] = oldStatus
	details["new_status"] = to
	s.recordActivity(ctx, issue.ID, &actor.ID, action, details)
	s.publish(ctx, events.Event{
		Type:    events.EventIssueStatusChanged,
		IssueID: issue.ID,
		Actor:   events.Actor{Role: actor.Role, UserID: &actor.ID},
		Payload: events.IssueStatusChangedPayload{OldStatus: oldStatus, NewStatus: to},
	})
	return issue, nil
}

// applyStatus sets the status and maintains the set-once terminal
// timestamps.
func (s *IssueService) applyStatus(issue *domain.Issue, to domain.IssueStatus) {
	now := s.Now()
	issue.Status = to
	if to == domain.IssueStatusResolved && issue.ResolvedAt == nil {
		issue.ResolvedAt = &now
	}
	if to == domain.IssueStatusClosed && issue.ClosedAt == nil {
		issue.ClosedAt = &now
	}
}

func (s *IssueService) recordActivity(ctx context.Context, issueID string, userID *string, action domain.ActivityAction, details map[string]any) {
	if err := s.activity.Create(ctx, &domain.ActivityLog{
		IssueID: issueID,
		UserID:  userID,
		Action:  action,
		Details: details,
	}); err != nil {
		s.logger.Warn("activity entry failed", zap.String("issue_id", issueID), zap.Error(err))
	}
}

func (s *IssueService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

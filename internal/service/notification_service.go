package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/events"
	"github.com/civicdesk/issue-service/internal/persistence"
	"github.com/civicdesk/issue-service/internal/repository"
	"github.com/civicdesk/issue-service/internal/sla"
	apperrors "github.com/civicdesk/issue-service/pkg/util/errorutil"
)

// NotificationService reminds on issues whose SLA deadline is approaching
// but not yet past.
type NotificationService struct {
	issues     repository.IssueRepository
	comments   repository.CommentRepository
	marker     *persistence.SweepMarker
	dispatcher events.Dispatcher
	logger     *zap.Logger
	window     time.Duration

	Now func() time.Time
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	IssueRepo   repository.IssueRepository
	CommentRepo repository.CommentRepository
	Marker      *persistence.SweepMarker
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	// Window is how far ahead of the deadline reminders fire; the
	// reference uses two hours.
	Window time.Duration
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	window := deps.Window
	if window <= 0 {
		window = 2 * time.Hour
	}
	return &NotificationService{
		issues:     deps.IssueRepo,
		comments:   deps.CommentRepo,
		marker:     deps.Marker,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		window:     window,
		Now:        time.Now,
	}
}

// RunSweep scans active issues with now < sla_deadline < now+window and
// appends an internal reminder comment to each, authored as the reporter.
// Unlike escalation this sweep writes no activity entry and mutates no
// issue fields. Already-overdue issues are the escalation sweep's job and
// are excluded here.
func (s *NotificationService) RunSweep(ctx context.Context) (*SweepResult, error) {
	now := s.Now()

	due, err := s.issues.ListDueWithin(ctx, now, s.window)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(due) == 0 {
		return &SweepResult{Message: "No urgent notifications to send", IssueIDs: []string{}}, nil
	}

	var notified []string
	failed := 0
	for i := range due {
		issue := &due[i]
		if !s.marker.TryMark(ctx, "notify", issue.ID) {
			continue
		}
		if err := s.notifyOne(ctx, issue, now); err != nil {
			failed++
			s.logger.Warn("notification failed", zap.String("issue_id", issue.ID), zap.Error(err))
			continue
		}
		notified = append(notified, issue.ID)
	}

	if len(notified) == 0 && failed == len(due) {
		return nil, apperrors.NewInternalError(fmt.Errorf("all %d notifications failed", failed))
	}
	if notified == nil {
		notified = []string{}
	}
	return &SweepResult{
		Message:  fmt.Sprintf("Sent %d notification(s)", len(notified)),
		Count:    len(notified),
		IssueIDs: notified,
	}, nil
}

func (s *NotificationService) notifyOne(ctx context.Context, scanned *domain.Issue, now time.Time) error {
	issue, err := s.issues.GetByID(ctx, scanned.ID)
	if err != nil {
		return err
	}
	// Re-check the window right before writing; the issue may have been
	// resolved, or drifted past the deadline, between scan and write.
	if issue.Status.IsTerminal() || issue.SLADeadline == nil ||
		!issue.SLADeadline.After(now) || !issue.SLADeadline.Before(now.Add(s.window)) {
		return fmt.Errorf("issue %s left the notification window", issue.ID)
	}

	remaining := sla.HoursRemaining(*issue.SLADeadline, now)
	if err := s.comments.Create(ctx, &domain.IssueComment{
		IssueID:    issue.ID,
		UserID:     issue.ReporterID,
		Comment:    fmt.Sprintf("System Alert: SLA deadline approaching in %d hour(s). Please prioritize this issue.", remaining),
		IsInternal: true,
	}); err != nil {
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:    events.EventSLANotification,
			IssueID: issue.ID,
			Payload: events.SLANotificationPayload{
				HoursRemaining: remaining,
				SLADeadline:    issue.SLADeadline,
			},
		})
	}
	return nil
}

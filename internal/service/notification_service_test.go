package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/events"
	"github.com/civicdesk/issue-service/internal/service"
)

type notificationEnv struct {
	svc        *service.NotificationService
	issues     *fakeIssueRepo
	comments   *fakeCommentRepo
	dispatcher *captureDispatcher
	ctx        context.Context
	now        time.Time
}

func newNotificationEnv(t *testing.T, window time.Duration) notificationEnv {
	t.Helper()
	issues := newFakeIssueRepo()
	comments := newFakeCommentRepo()
	dispatcher := newCaptureDispatcher()
	svc := service.NewNotificationService(service.NotificationDependencies{
		IssueRepo:   issues,
		CommentRepo: comments,
		Dispatcher:  dispatcher,
		Window:      window,
	})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }
	return notificationEnv{svc: svc, issues: issues, comments: comments, dispatcher: dispatcher, ctx: context.Background(), now: now}
}

func TestNotificationSweepRemindsInsideWindow(t *testing.T) {
	env := newNotificationEnv(t, 2*time.Hour)
	env.issues.put(overdueIssue("due-soon", env.now.Add(90*time.Minute), domain.IssueStatusInProgress))
	env.issues.put(overdueIssue("due-later", env.now.Add(3*time.Hour), domain.IssueStatusInProgress))
	env.issues.put(overdueIssue("past-due", env.now.Add(-time.Hour), domain.IssueStatusInProgress))

	result, err := env.svc.RunSweep(env.ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Count != 1 || result.IssueIDs[0] != "due-soon" {
		t.Fatalf("expected only due-soon, got %+v", result)
	}
	if result.Message != "Sent 1 notification(s)" {
		t.Fatalf("unexpected message %q", result.Message)
	}

	comments := env.comments.forIssue("due-soon")
	if len(comments) != 1 {
		t.Fatalf("expected 1 reminder comment, got %d", len(comments))
	}
	want := "System Alert: SLA deadline approaching in 1 hour(s). Please prioritize this issue."
	if comments[0].Comment != want {
		t.Fatalf("comment mismatch:\n got %q\nwant %q", comments[0].Comment, want)
	}
	if !comments[0].IsInternal || comments[0].UserID != "citizen-1" {
		t.Fatalf("reminder must be internal and reporter-authored")
	}

	// Reminders never touch the issue row.
	issue := env.issues.get("due-soon")
	if issue.Status != domain.IssueStatusInProgress || issue.EscalationCount != 0 {
		t.Fatalf("notification sweep must not mutate the issue, got %+v", issue)
	}
	if len(env.comments.forIssue("past-due")) != 0 {
		t.Fatalf("overdue issues belong to the escalation sweep")
	}

	if len(env.dispatcher.byType(events.EventSLANotification)) != 1 {
		t.Fatalf("expected one sla_notification event")
	}
}

func TestNotificationSweepEmptyWindow(t *testing.T) {
	env := newNotificationEnv(t, 2*time.Hour)
	env.issues.put(overdueIssue("due-later", env.now.Add(6*time.Hour), domain.IssueStatusAssignedL2))

	result, err := env.svc.RunSweep(env.ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Count != 0 || result.Message != "No urgent notifications to send" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestNotificationSweepSkipsTerminalIssues(t *testing.T) {
	env := newNotificationEnv(t, 2*time.Hour)
	env.issues.put(overdueIssue("resolved-1", env.now.Add(time.Hour), domain.IssueStatusResolved))

	result, err := env.svc.RunSweep(env.ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Count != 0 {
		t.Fatalf("resolved issues must not be reminded, got %+v", result)
	}
}

func TestNotificationSweepHonorsConfiguredWindow(t *testing.T) {
	env := newNotificationEnv(t, 6*time.Hour)
	env.issues.put(overdueIssue("due-later", env.now.Add(3*time.Hour), domain.IssueStatusAssignedL2))

	result, err := env.svc.RunSweep(env.ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("wider window must include the 3h issue, got %+v", result)
	}
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/events"
	"github.com/civicdesk/issue-service/internal/service"
)

func testClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
}

type assignmentEnv struct {
	svc        *service.AssignmentService
	issues     *fakeIssueRepo
	profiles   *fakeProfileRepo
	activity   *fakeActivityRepo
	dispatcher *captureDispatcher
	ctx        context.Context
}

func newAssignmentEnv(t *testing.T) assignmentEnv {
	t.Helper()
	issues := newFakeIssueRepo()
	profiles := newFakeProfileRepo()
	activity := newFakeActivityRepo()
	dispatcher := newCaptureDispatcher()
	svc := service.NewAssignmentService(service.AssignmentDependencies{
		IssueRepo:    issues,
		ProfileRepo:  profiles,
		ActivityRepo: activity,
		Dispatcher:   dispatcher,
	})
	svc.Now = testClock()
	return assignmentEnv{svc: svc, issues: issues, profiles: profiles, activity: activity, dispatcher: dispatcher, ctx: context.Background()}
}

func addOfficer(t *testing.T, profiles *fakeProfileRepo, id string, role domain.UserRole) {
	t.Helper()
	if err := profiles.Create(context.Background(), &domain.Profile{
		ID:       id,
		Email:    id + "@city.gov",
		FullName: id,
		Role:     role,
	}); err != nil {
		t.Fatalf("create officer: %v", err)
	}
}

func submittedIssue(id, reporter string) *domain.Issue {
	deadline := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	return &domain.Issue{
		ID:          id,
		Title:       "Leaking hydrant",
		Description: "Water everywhere",
		Category:    domain.CategoryWaterSupply,
		Status:      domain.IssueStatusSubmitted,
		Priority:    domain.IssuePriorityHigh,
		ReporterID:  reporter,
		SLADeadline: &deadline,
	}
}

func assignedIssue(id, officer string, status domain.IssueStatus) *domain.Issue {
	issue := submittedIssue(id, "citizen-1")
	issue.Status = status
	issue.AssignedL1ID = &officer
	return issue
}

func TestAutoAssignPicksLeastLoadedOfficer(t *testing.T) {
	env := newAssignmentEnv(t)
	addOfficer(t, env.profiles, "officer-a", domain.RoleL1Officer)
	addOfficer(t, env.profiles, "officer-b", domain.RoleL1Officer)
	addOfficer(t, env.profiles, "officer-c", domain.RoleL1Officer)

	// a carries two open issues, c one, b none.
	env.issues.put(assignedIssue("open-1", "officer-a", domain.IssueStatusAssignedL1))
	env.issues.put(assignedIssue("open-2", "officer-a", domain.IssueStatusInProgress))
	env.issues.put(assignedIssue("open-3", "officer-c", domain.IssueStatusAssignedL2))
	env.issues.put(submittedIssue("issue-new", "citizen-1"))

	issue, err := env.svc.AutoAssignL1(env.ctx, "issue-new")
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if issue.AssignedL1ID == nil || *issue.AssignedL1ID != "officer-b" {
		t.Fatalf("expected officer-b, got %v", issue.AssignedL1ID)
	}
	if issue.Status != domain.IssueStatusAssignedL1 {
		t.Fatalf("expected assigned_l1, got %s", issue.Status)
	}
	if issue.AssignedL1At == nil || !issue.AssignedL1At.Equal(testClock()()) {
		t.Fatalf("expected assignment timestamp from clock, got %v", issue.AssignedL1At)
	}

	entries := env.activity.byAction(domain.ActionAutoAssignedL1)
	if len(entries) != 1 {
		t.Fatalf("expected one auto_assigned_l1 entry, got %d", len(entries))
	}
	if entries[0].Details["officer_id"] != "officer-b" {
		t.Fatalf("activity details missing officer id: %v", entries[0].Details)
	}

	published := env.dispatcher.byType(events.EventIssueAssigned)
	if len(published) != 1 {
		t.Fatalf("expected one issue_assigned event, got %d", len(published))
	}
}

func TestAutoAssignResolvedIssuesDoNotCount(t *testing.T) {
	env := newAssignmentEnv(t)
	addOfficer(t, env.profiles, "officer-a", domain.RoleL1Officer)
	addOfficer(t, env.profiles, "officer-b", domain.RoleL1Officer)

	// a's only issue is resolved, so both officers are tied at zero and
	// pool order decides.
	resolved := assignedIssue("done-1", "officer-a", domain.IssueStatusResolved)
	env.issues.put(resolved)
	env.issues.put(submittedIssue("issue-new", "citizen-1"))

	issue, err := env.svc.AutoAssignL1(env.ctx, "issue-new")
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if *issue.AssignedL1ID != "officer-a" {
		t.Fatalf("expected tie to go to first officer, got %s", *issue.AssignedL1ID)
	}
}

func TestAutoAssignTieBreakIsDeterministic(t *testing.T) {
	env := newAssignmentEnv(t)
	addOfficer(t, env.profiles, "officer-a", domain.RoleL1Officer)
	addOfficer(t, env.profiles, "officer-b", domain.RoleL1Officer)

	for i := 0; i < 3; i++ {
		fresh := submittedIssue("", "citizen-1")
		if err := env.issues.Create(env.ctx, fresh); err != nil {
			t.Fatalf("seed issue: %v", err)
		}
		issue, err := env.svc.AutoAssignL1(env.ctx, fresh.ID)
		if err != nil {
			t.Fatalf("auto assign %d: %v", i, err)
		}
		// With alternating loads the pick must always be the currently
		// least-loaded officer, first-in-order on ties.
		want := "officer-a"
		if i == 1 {
			want = "officer-b"
		}
		if *issue.AssignedL1ID != want {
			t.Fatalf("round %d: expected %s, got %s", i, want, *issue.AssignedL1ID)
		}
	}
}

func TestAutoAssignNoOfficers(t *testing.T) {
	env := newAssignmentEnv(t)
	env.issues.put(submittedIssue("issue-new", "citizen-1"))

	if _, err := env.svc.AutoAssignL1(env.ctx, "issue-new"); err == nil {
		t.Fatalf("expected error with empty officer pool")
	}
	stored := env.issues.get("issue-new")
	if stored.Status != domain.IssueStatusSubmitted {
		t.Fatalf("issue must stay submitted, got %s", stored.Status)
	}
	if len(env.activity.byAction(domain.ActionAutoAssignedL1)) != 0 {
		t.Fatalf("no activity expected on failed assignment")
	}
}

func TestAutoAssignCountFailureFallsBackToFirstOfficer(t *testing.T) {
	env := newAssignmentEnv(t)
	addOfficer(t, env.profiles, "officer-a", domain.RoleL1Officer)
	addOfficer(t, env.profiles, "officer-b", domain.RoleL1Officer)
	env.issues.put(assignedIssue("open-1", "officer-a", domain.IssueStatusAssignedL1))
	env.issues.put(submittedIssue("issue-new", "citizen-1"))
	env.issues.countErr = errors.New("load query down")

	issue, err := env.svc.AutoAssignL1(env.ctx, "issue-new")
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if *issue.AssignedL1ID != "officer-a" {
		t.Fatalf("expected fallback to first officer, got %s", *issue.AssignedL1ID)
	}
}

func TestAutoAssignSkipsAlreadyAssignedIssue(t *testing.T) {
	env := newAssignmentEnv(t)
	addOfficer(t, env.profiles, "officer-a", domain.RoleL1Officer)
	env.issues.put(assignedIssue("issue-1", "officer-b", domain.IssueStatusAssignedL1))

	if _, err := env.svc.AutoAssignL1(env.ctx, "issue-1"); err == nil {
		t.Fatalf("expected conflict for already assigned issue")
	}
	stored := env.issues.get("issue-1")
	if *stored.AssignedL1ID != "officer-b" {
		t.Fatalf("existing assignment must be untouched, got %s", *stored.AssignedL1ID)
	}
}

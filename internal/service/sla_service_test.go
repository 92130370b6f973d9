package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/service"
)

func TestSLAMetrics(t *testing.T) {
	issues := newFakeIssueRepo()
	svc := service.NewSLAService(issues)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	overdue := overdueIssue("overdue-1", now.Add(-5*time.Hour), domain.IssueStatusAssignedL1)
	issues.put(overdue)

	critical := overdueIssue("critical-1", now.Add(10*time.Hour), domain.IssueStatusInProgress)
	critical.Priority = domain.IssuePriorityCritical
	issues.put(critical)

	// Critical priority but more than a day out: counted only in totals.
	criticalFar := overdueIssue("critical-2", now.Add(40*time.Hour), domain.IssueStatusAssignedL1)
	criticalFar.Priority = domain.IssuePriorityCritical
	issues.put(criticalFar)

	// High priority inside 24h is not a critical row.
	highSoon := overdueIssue("high-1", now.Add(3*time.Hour), domain.IssueStatusAssignedL2)
	issues.put(highSoon)

	// Terminal issues are invisible to metrics.
	done := overdueIssue("done-1", now.Add(-10*time.Hour), domain.IssueStatusResolved)
	issues.put(done)

	metrics, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if metrics.TotalIssues != 4 {
		t.Fatalf("expected 4 active issues, got %d", metrics.TotalIssues)
	}
	if metrics.OverdueIssues != 1 || len(metrics.OverdueList) != 1 {
		t.Fatalf("expected 1 overdue, got %+v", metrics)
	}
	if row := metrics.OverdueList[0]; row.ID != "overdue-1" || row.HoursOverdue != 5 {
		t.Fatalf("unexpected overdue row %+v", row)
	}
	if metrics.CriticalIssues != 1 || len(metrics.CriticalList) != 1 {
		t.Fatalf("expected 1 critical, got %+v", metrics)
	}
	if row := metrics.CriticalList[0]; row.ID != "critical-1" || row.HoursRemaining != 10 {
		t.Fatalf("unexpected critical row %+v", row)
	}
}

func TestSLAMetricsEmptyStore(t *testing.T) {
	svc := service.NewSLAService(newFakeIssueRepo())

	metrics, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if metrics.TotalIssues != 0 || metrics.OverdueIssues != 0 || metrics.CriticalIssues != 0 {
		t.Fatalf("expected zeroed metrics, got %+v", metrics)
	}
	if metrics.OverdueList == nil || metrics.CriticalList == nil {
		t.Fatalf("lists serialize as empty arrays, not null")
	}
}

func TestSLAMetricsOverdueCriticalCountsAsOverdueOnly(t *testing.T) {
	issues := newFakeIssueRepo()
	svc := service.NewSLAService(issues)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	late := overdueIssue("late-critical", now.Add(-time.Hour), domain.IssueStatusEscalated)
	late.Priority = domain.IssuePriorityCritical
	issues.put(late)

	metrics, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if metrics.OverdueIssues != 1 || metrics.CriticalIssues != 0 {
		t.Fatalf("a breached critical issue is overdue, not approaching: %+v", metrics)
	}
}

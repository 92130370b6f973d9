package domain_test

import (
	"testing"

	"github.com/civicdesk/issue-service/internal/domain"
)

func TestValidTransitions(t *testing.T) {
	allowed := []struct{ from, to domain.IssueStatus }{
		{domain.IssueStatusSubmitted, domain.IssueStatusAssignedL1},
		{domain.IssueStatusAssignedL1, domain.IssueStatusAssignedL2},
		{domain.IssueStatusAssignedL2, domain.IssueStatusInProgress},
		{domain.IssueStatusInProgress, domain.IssueStatusResolved},
		{domain.IssueStatusResolved, domain.IssueStatusClosed},
		{domain.IssueStatusEscalated, domain.IssueStatusInProgress},
		// Repeated escalation of an already escalated issue.
		{domain.IssueStatusEscalated, domain.IssueStatusEscalated},
	}
	for _, tc := range allowed {
		if !domain.ValidTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s must be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to domain.IssueStatus }{
		{domain.IssueStatusSubmitted, domain.IssueStatusResolved},
		{domain.IssueStatusSubmitted, domain.IssueStatusInProgress},
		{domain.IssueStatusAssignedL1, domain.IssueStatusResolved},
		{domain.IssueStatusResolved, domain.IssueStatusInProgress},
		{domain.IssueStatusClosed, domain.IssueStatusInProgress},
		{domain.IssueStatusClosed, domain.IssueStatusClosed},
	}
	for _, tc := range denied {
		if domain.ValidTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s must be rejected", tc.from, tc.to)
		}
	}
}

func TestEveryActiveStateCanEscalateAndClose(t *testing.T) {
	active := []domain.IssueStatus{
		domain.IssueStatusSubmitted,
		domain.IssueStatusAssignedL1,
		domain.IssueStatusAssignedL2,
		domain.IssueStatusInProgress,
		domain.IssueStatusEscalated,
	}
	for _, status := range active {
		if !domain.ValidTransition(status, domain.IssueStatusEscalated) {
			t.Errorf("%s must be escalatable", status)
		}
		if !domain.ValidTransition(status, domain.IssueStatusClosed) {
			t.Errorf("%s must be closable", status)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !domain.IssueStatusResolved.IsTerminal() || !domain.IssueStatusClosed.IsTerminal() {
		t.Fatalf("resolved and closed are terminal")
	}
	for _, status := range []domain.IssueStatus{
		domain.IssueStatusSubmitted,
		domain.IssueStatusAssignedL1,
		domain.IssueStatusAssignedL2,
		domain.IssueStatusInProgress,
		domain.IssueStatusEscalated,
	} {
		if status.IsTerminal() {
			t.Errorf("%s is not terminal", status)
		}
	}
}

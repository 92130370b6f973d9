package domain

// allowedTransitions is the status graph officers and automated components
// follow. Admin edits may bypass it through an explicit override that is
// logged as a status_override activity entry.
var allowedTransitions = map[IssueStatus][]IssueStatus{
	IssueStatusSubmitted:  {IssueStatusAssignedL1, IssueStatusEscalated, IssueStatusClosed},
	IssueStatusAssignedL1: {IssueStatusAssignedL2, IssueStatusEscalated, IssueStatusClosed},
	IssueStatusAssignedL2: {IssueStatusInProgress, IssueStatusEscalated, IssueStatusClosed},
	IssueStatusInProgress: {IssueStatusResolved, IssueStatusEscalated, IssueStatusClosed},
	IssueStatusEscalated:  {IssueStatusInProgress, IssueStatusEscalated, IssueStatusClosed},
	IssueStatusResolved:   {IssueStatusClosed},
	IssueStatusClosed:     {},
}

// ValidTransition reports whether moving from one status to another is
// permitted by the workflow graph.
func ValidTransition(from, to IssueStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

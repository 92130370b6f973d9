package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/events"
	"github.com/civicdesk/issue-service/internal/repository"
)

// In-memory repository doubles. They mimic the Postgres implementations
// closely enough for service behavior: ErrNoRows on missing ids, ordered
// listings, and the same sweep predicates.

type fakeIssueRepo struct {
	mu     sync.Mutex
	seq    int
	issues map[string]*domain.Issue

	// countErr makes CountOpenByAssignee fail, exercising the balancer
	// fallback path.
	countErr error
	// updateErr makes Update fail for the listed ids.
	updateErr map[string]error
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{issues: map[string]*domain.Issue{}, updateErr: map[string]error{}}
}

func (r *fakeIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	issue.ID = fmt.Sprintf("issue-%d", r.seq)
	clone := *issue
	r.issues[issue.ID] = &clone
	return nil
}

func (r *fakeIssueRepo) Update(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[issue.ID]; err != nil {
		return err
	}
	if _, ok := r.issues[issue.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *issue
	r.issues[issue.ID] = &clone
	return nil
}

func (r *fakeIssueRepo) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *issue
	return &clone, nil
}

func (r *fakeIssueRepo) ListWithFilter(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Issue
	for _, issue := range r.issues {
		if filter.ReporterID != nil && issue.ReporterID != *filter.ReporterID {
			continue
		}
		if filter.AssignedL1ID != nil && (issue.AssignedL1ID == nil || *issue.AssignedL1ID != *filter.AssignedL1ID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, issue.Status) {
			continue
		}
		out = append(out, *issue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeIssueRepo) ListActive(_ context.Context) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Issue
	for _, issue := range r.issues {
		if issue.Status.IsTerminal() {
			continue
		}
		out = append(out, *issue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeIssueRepo) ListOverdue(_ context.Context, now time.Time) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Issue
	for _, issue := range r.issues {
		if issue.Status.IsTerminal() || issue.SLADeadline == nil {
			continue
		}
		if issue.SLADeadline.Before(now) {
			out = append(out, *issue)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SLADeadline.Before(*out[j].SLADeadline) })
	return out, nil
}

func (r *fakeIssueRepo) ListDueWithin(_ context.Context, now time.Time, window time.Duration) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Issue
	limit := now.Add(window)
	for _, issue := range r.issues {
		if issue.Status.IsTerminal() || issue.SLADeadline == nil {
			continue
		}
		if issue.SLADeadline.After(now) && issue.SLADeadline.Before(limit) {
			out = append(out, *issue)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SLADeadline.Before(*out[j].SLADeadline) })
	return out, nil
}

func (r *fakeIssueRepo) CountOpenByAssignee(_ context.Context, officerIDs []string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return nil, r.countErr
	}
	wanted := map[string]bool{}
	for _, id := range officerIDs {
		wanted[id] = true
	}
	counts := map[string]int{}
	for _, issue := range r.issues {
		if issue.AssignedL1ID == nil || !wanted[*issue.AssignedL1ID] {
			continue
		}
		switch issue.Status {
		case domain.IssueStatusAssignedL1, domain.IssueStatusAssignedL2, domain.IssueStatusInProgress:
			counts[*issue.AssignedL1ID]++
		}
	}
	return counts, nil
}

// put stores an issue directly, bypassing Create's id assignment.
func (r *fakeIssueRepo) put(issue *domain.Issue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *issue
	r.issues[issue.ID] = &clone
}

func (r *fakeIssueRepo) get(id string) domain.Issue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.issues[id]
}

func containsStatus(statuses []domain.IssueStatus, s domain.IssueStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	seq      int
	profiles []*domain.Profile

	listErr error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{}
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if profile.ID == "" {
		profile.ID = fmt.Sprintf("profile-%d", r.seq)
	}
	clone := *profile
	r.profiles = append(r.profiles, &clone)
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.profiles {
		if existing.ID == profile.ID {
			clone := *profile
			r.profiles[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, profile := range r.profiles {
		if profile.ID == id {
			clone := *profile
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, profile := range r.profiles {
		if profile.Email == email {
			clone := *profile
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) ListByRole(_ context.Context, role domain.UserRole) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Profile
	for _, profile := range r.profiles {
		if profile.Role == role {
			out = append(out, *profile)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) CountByRole(_ context.Context, role domain.UserRole) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, profile := range r.profiles {
		if profile.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *fakeProfileRepo) List(_ context.Context, filter repository.ProfileFilter) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Profile
	for _, profile := range r.profiles {
		if filter.Role != nil && profile.Role != *filter.Role {
			continue
		}
		out = append(out, *profile)
	}
	return out, nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	seq     int
	entries []domain.ActivityLog
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (r *fakeActivityRepo) Create(_ context.Context, entry *domain.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = fmt.Sprintf("activity-%d", r.seq)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeActivityRepo) ListByIssue(_ context.Context, issueID string) ([]domain.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ActivityLog
	for _, entry := range r.entries {
		if entry.IssueID == issueID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) byAction(action domain.ActivityAction) []domain.ActivityLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ActivityLog
	for _, entry := range r.entries {
		if entry.Action == action {
			out = append(out, entry)
		}
	}
	return out
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	seq      int
	comments []domain.IssueComment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.IssueComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	comment.ID = fmt.Sprintf("comment-%d", r.seq)
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByIssue(_ context.Context, issueID string, includeInternal bool) ([]domain.IssueComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.IssueComment
	for _, comment := range r.comments {
		if comment.IssueID != issueID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		out = append(out, comment)
	}
	return out, nil
}

func (r *fakeCommentRepo) forIssue(issueID string) []domain.IssueComment {
	out, _ := r.ListByIssue(context.Background(), issueID, true)
	return out
}

type fakePromotionRepo struct {
	mu   sync.Mutex
	seq  int
	reqs map[string]*domain.PromotionRequest
}

func newFakePromotionRepo() *fakePromotionRepo {
	return &fakePromotionRepo{reqs: map[string]*domain.PromotionRequest{}}
}

func (r *fakePromotionRepo) Create(_ context.Context, req *domain.PromotionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	req.ID = fmt.Sprintf("promotion-%d", r.seq)
	clone := *req
	r.reqs[req.ID] = &clone
	return nil
}

func (r *fakePromotionRepo) Update(_ context.Context, req *domain.PromotionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reqs[req.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *req
	r.reqs[req.ID] = &clone
	return nil
}

func (r *fakePromotionRepo) GetByID(_ context.Context, id string) (*domain.PromotionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.reqs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (r *fakePromotionRepo) ListPending(_ context.Context) ([]domain.PromotionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PromotionRequest
	for _, req := range r.reqs {
		if req.Status == domain.PromotionPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

// captureDispatcher records published events in order.
type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func newCaptureDispatcher() *captureDispatcher {
	return &captureDispatcher{}
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

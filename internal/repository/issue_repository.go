package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/issue-service/internal/domain"
)

// IssueFilter captures listing parameters.
type IssueFilter struct {
	ReporterID   *string
	AssignedL1ID *string
	AssignedL2ID *string
	Statuses     []domain.IssueStatus
	Priorities   []domain.IssuePriority
	Categories   []domain.IssueCategory
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// IssueRepository encapsulates issue persistence. The store owns canonical
// issue state; services re-read before mutating rather than caching rows.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	// ListActive returns issues whose status is not resolved or closed.
	ListActive(ctx context.Context) ([]domain.Issue, error)
	// ListOverdue returns active issues past their SLA deadline, earliest
	// deadline first.
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Issue, error)
	// ListDueWithin returns active issues whose deadline falls strictly
	// between now and now+window.
	ListDueWithin(ctx context.Context, now time.Time, window time.Duration) ([]domain.Issue, error)
	// CountOpenByAssignee counts issues per first-tier assignee whose
	// status still occupies that officer (assigned_l1, assigned_l2,
	// in_progress). Officers without open issues are absent from the map.
	CountOpenByAssignee(ctx context.Context, officerIDs []string) (map[string]int, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates the repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

const issueColumns = `id, title, description, category, status, priority, latitude, longitude, address,
       images, reporter_id, assigned_l1_id, assigned_l2_id, assigned_l1_at, assigned_l2_at,
       sla_deadline, escalation_count, created_at, updated_at, resolved_at, closed_at`

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (title, description, category, status, priority, latitude, longitude, address,
                            images, reporter_id, sla_deadline, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		issue.Category,
		issue.Status,
		issue.Priority,
		issue.Latitude,
		issue.Longitude,
		issue.Address,
		issue.Images,
		issue.ReporterID,
		issue.SLADeadline,
		issue.CreatedAt,
	).Scan(&issue.ID)
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET status=$1, priority=$2, assigned_l1_id=$3, assigned_l2_id=$4,
            assigned_l1_at=$5, assigned_l2_at=$6, escalation_count=$7,
            resolved_at=$8, closed_at=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		issue.Status,
		issue.Priority,
		issue.AssignedL1ID,
		issue.AssignedL2ID,
		issue.AssignedL1At,
		issue.AssignedL2At,
		issue.EscalationCount,
		issue.ResolvedAt,
		issue.ClosedAt,
		issue.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id=$1`, issueColumns)
	var issue domain.Issue
	if err := r.pool.QueryRow(ctx, query, id).Scan(issueFields(&issue)...); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if filter.AssignedL1ID != nil {
		args = append(args, *filter.AssignedL1ID)
		clauses = append(clauses, fmt.Sprintf("assigned_l1_id=$%d", len(args)))
	}
	if filter.AssignedL2ID != nil {
		args = append(args, *filter.AssignedL2ID)
		clauses = append(clauses, fmt.Sprintf("assigned_l2_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, cat := range filter.Categories {
			args = append(args, cat)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		issueColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) ListActive(ctx context.Context) ([]domain.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE status NOT IN ('resolved','closed')`, issueColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Issue, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM issues
        WHERE status NOT IN ('resolved','closed') AND sla_deadline < $1
        ORDER BY sla_deadline ASC`, issueColumns)
	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) ListDueWithin(ctx context.Context, now time.Time, window time.Duration) ([]domain.Issue, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM issues
        WHERE status NOT IN ('resolved','closed') AND sla_deadline > $1 AND sla_deadline < $2
        ORDER BY sla_deadline ASC`, issueColumns)
	rows, err := r.pool.Query(ctx, query, now, now.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) CountOpenByAssignee(ctx context.Context, officerIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(officerIDs))
	if len(officerIDs) == 0 {
		return counts, nil
	}
	const query = `
        SELECT assigned_l1_id, COUNT(*)
        FROM issues
        WHERE assigned_l1_id = ANY($1) AND status IN ('assigned_l1','assigned_l2','in_progress')
        GROUP BY assigned_l1_id`
	rows, err := r.pool.Query(ctx, query, officerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

func issueFields(issue *domain.Issue) []any {
	return []any{
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Category,
		&issue.Status,
		&issue.Priority,
		&issue.Latitude,
		&issue.Longitude,
		&issue.Address,
		&issue.Images,
		&issue.ReporterID,
		&issue.AssignedL1ID,
		&issue.AssignedL2ID,
		&issue.AssignedL1At,
		&issue.AssignedL2At,
		&issue.SLADeadline,
		&issue.EscalationCount,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&issue.ResolvedAt,
		&issue.ClosedAt,
	}
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(issueFields(&issue)...); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}

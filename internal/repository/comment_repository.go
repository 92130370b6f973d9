package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/issue-service/internal/domain"
)

// CommentRepository stores issue comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.IssueComment) error
	// ListByIssue returns comments oldest first. Internal comments are
	// filtered out unless includeInternal is set.
	ListByIssue(ctx context.Context, issueID string, includeInternal bool) ([]domain.IssueComment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds the repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.IssueComment) error {
	const query = `
        INSERT INTO issue_comments (issue_id, user_id, comment, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.IssueID,
		comment.UserID,
		comment.Comment,
		comment.IsInternal,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByIssue(ctx context.Context, issueID string, includeInternal bool) ([]domain.IssueComment, error) {
	query := `
        SELECT id, issue_id, user_id, comment, is_internal, created_at
        FROM issue_comments WHERE issue_id=$1`
	if !includeInternal {
		query += ` AND is_internal=FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IssueComment
	for rows.Next() {
		var comment domain.IssueComment
		if err := rows.Scan(
			&comment.ID,
			&comment.IssueID,
			&comment.UserID,
			&comment.Comment,
			&comment.IsInternal,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

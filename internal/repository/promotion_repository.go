package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/issue-service/internal/domain"
)

// PromotionRepository stores role promotion requests.
type PromotionRepository interface {
	Create(ctx context.Context, req *domain.PromotionRequest) error
	Update(ctx context.Context, req *domain.PromotionRequest) error
	GetByID(ctx context.Context, id string) (*domain.PromotionRequest, error)
	ListPending(ctx context.Context) ([]domain.PromotionRequest, error)
}

type promotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository builds the repository.
func NewPromotionRepository(pool *pgxpool.Pool) PromotionRepository {
	return &promotionRepository{pool: pool}
}

const promotionColumns = `id, user_id, requested_by, from_role, to_role, status, message, created_at, updated_at`

func (r *promotionRepository) Create(ctx context.Context, req *domain.PromotionRequest) error {
	const query = `
        INSERT INTO promotion_requests (user_id, requested_by, from_role, to_role, status, message)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		req.UserID,
		req.RequestedBy,
		req.FromRole,
		req.ToRole,
		req.Status,
		req.Message,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *promotionRepository) Update(ctx context.Context, req *domain.PromotionRequest) error {
	const query = `
        UPDATE promotion_requests SET status=$1, message=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, req.Status, req.Message, req.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *promotionRepository) GetByID(ctx context.Context, id string) (*domain.PromotionRequest, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotion_requests WHERE id=$1`
	var req domain.PromotionRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.UserID,
		&req.RequestedBy,
		&req.FromRole,
		&req.ToRole,
		&req.Status,
		&req.Message,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *promotionRepository) ListPending(ctx context.Context) ([]domain.PromotionRequest, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotion_requests WHERE status='pending' ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PromotionRequest
	for rows.Next() {
		var req domain.PromotionRequest
		if err := rows.Scan(
			&req.ID,
			&req.UserID,
			&req.RequestedBy,
			&req.FromRole,
			&req.ToRole,
			&req.Status,
			&req.Message,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

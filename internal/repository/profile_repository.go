package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/issue-service/internal/domain"
)

// ProfileFilter defines listing parameters for profiles.
type ProfileFilter struct {
	Role   *domain.UserRole
	Limit  int
	Offset int
}

// ProfileRepository handles persistence for all account profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	Update(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	// ListByRole returns profiles in created_at ascending order. The
	// assignment balancer depends on this order for its tie-break.
	ListByRole(ctx context.Context, role domain.UserRole) ([]domain.Profile, error)
	CountByRole(ctx context.Context, role domain.UserRole) (int, error)
	List(ctx context.Context, filter ProfileFilter) ([]domain.Profile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates the repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id, email, full_name, phone, password_hash, role, department, created_at, updated_at`

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (email, full_name, phone, password_hash, role, department)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		profile.Email,
		profile.FullName,
		profile.Phone,
		profile.PasswordHash,
		profile.Role,
		profile.Department,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	const query = `
        UPDATE profiles SET email=$1, full_name=$2, phone=$3, password_hash=$4, role=$5,
            department=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		profile.Email,
		profile.FullName,
		profile.Phone,
		profile.PasswordHash,
		profile.Role,
		profile.Department,
		profile.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id=$1`, profileColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE LOWER(email)=LOWER($1)`, profileColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *profileRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.pool.QueryRow(ctx, query, arg).Scan(profileFields(&profile)...); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE role=$1 ORDER BY created_at ASC`, profileColumns)
	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (r *profileRepository) CountByRole(ctx context.Context, role domain.UserRole) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE role=$1`, role).Scan(&count)
	return count, err
}

func (r *profileRepository) List(ctx context.Context, filter ProfileFilter) ([]domain.Profile, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE %s ORDER BY created_at ASC LIMIT %d OFFSET %d`,
		profileColumns, strings.Join(clauses, " AND "), limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func profileFields(profile *domain.Profile) []any {
	return []any{
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.Phone,
		&profile.PasswordHash,
		&profile.Role,
		&profile.Department,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	}
}

func scanProfiles(rows pgx.Rows) ([]domain.Profile, error) {
	var result []domain.Profile
	for rows.Next() {
		var profile domain.Profile
		if err := rows.Scan(profileFields(&profile)...); err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}

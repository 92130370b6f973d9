package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/issue-service/internal/auth"
	"github.com/civicdesk/issue-service/internal/config"
	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/repository"
	apperrors "github.com/civicdesk/issue-service/pkg/util/errorutil"
)

// DirectoryService manages profiles, officer creation and role promotions.
type DirectoryService struct {
	profiles      repository.ProfileRepository
	promotions    repository.PromotionRepository
	bcryptCost    int
	maxAdminSeats int
}

// DirectoryDependencies bundles repositories.
type DirectoryDependencies struct {
	ProfileRepo   repository.ProfileRepository
	PromotionRepo repository.PromotionRepository
}

// OfficerCreateInput describes an admin-created account.
type OfficerCreateInput struct {
	Email      string
	FullName   string
	Phone      *string
	Password   string
	Role       domain.UserRole
	Department *string
}

// NewDirectoryService constructs the service.
func NewDirectoryService(cfg config.Config, deps DirectoryDependencies) *DirectoryService {
	maxSeats := cfg.Auth.MaxAdminSeats
	if maxSeats <= 0 {
		maxSeats = domain.DefaultMaxAdminSeats
	}
	return &DirectoryService{
		profiles:      deps.ProfileRepo,
		promotions:    deps.PromotionRepo,
		bcryptCost:    cfg.Auth.BcryptCost,
		maxAdminSeats: maxSeats,
	}
}

// CreateOfficer lets an admin provision officer and admin accounts. Admin
// seats are globally capped; the check happens here, at creation time.
func (s *DirectoryService) CreateOfficer(ctx context.Context, actor *domain.Profile, input OfficerCreateInput) (*domain.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !input.Role.IsOfficer() && input.Role != domain.RoleAdmin {
		return nil, apperrors.NewValidationError("role must be an officer tier or admin", map[string]any{"role": input.Role})
	}
	if input.Role == domain.RoleAdmin {
		if err := s.checkAdminCapacity(ctx); err != nil {
			return nil, err
		}
	}
	if _, err := s.profiles.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	profile := &domain.Profile{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         input.Role,
		Department:   input.Department,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// ListUsers returns profiles for the admin user table.
func (s *DirectoryService) ListUsers(ctx context.Context, actor *domain.Profile, filter repository.ProfileFilter) ([]domain.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	profiles, err := s.profiles.List(ctx, filter)
	return profiles, apperrors.MapError(err)
}

// RequestPromotion files a role change for review.
func (s *DirectoryService) RequestPromotion(ctx context.Context, actor *domain.Profile, userID string, toRole domain.UserRole, message *string) (*domain.PromotionRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !domain.ValidRole(toRole) {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": toRole})
	}
	target, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if target.Role == toRole {
		return nil, apperrors.NewConflict("profile already holds role", map[string]any{"role": toRole})
	}

	req := &domain.PromotionRequest{
		UserID:      target.ID,
		RequestedBy: actor.ID,
		FromRole:    target.Role,
		ToRole:      toRole,
		Status:      domain.PromotionPending,
		Message:     message,
	}
	if err := s.promotions.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}
	return req, nil
}

// ReviewPromotion accepts or rejects a pending request. Acceptance into
// the admin role re-checks the seat cap, which may have filled since the
// request was filed.
func (s *DirectoryService) ReviewPromotion(ctx context.Context, actor *domain.Profile, requestID string, accept bool) (*domain.PromotionRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	req, err := s.promotions.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if req.Status != domain.PromotionPending {
		return nil, apperrors.NewConflict("promotion already reviewed", map[string]any{"status": req.Status})
	}

	if !accept {
		req.Status = domain.PromotionRejected
		if err := s.promotions.Update(ctx, req); err != nil {
			return nil, apperrors.MapError(err)
		}
		return req, nil
	}

	if req.ToRole == domain.RoleAdmin {
		if err := s.checkAdminCapacity(ctx); err != nil {
			return nil, err
		}
	}
	target, err := s.profiles.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	target.Role = req.ToRole
	if err := s.profiles.Update(ctx, target); err != nil {
		return nil, apperrors.MapError(err)
	}

	req.Status = domain.PromotionAccepted
	if err := s.promotions.Update(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}
	return req, nil
}

// ListPendingPromotions returns requests awaiting review.
func (s *DirectoryService) ListPendingPromotions(ctx context.Context, actor *domain.Profile) ([]domain.PromotionRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	reqs, err := s.promotions.ListPending(ctx)
	return reqs, apperrors.MapError(err)
}

func (s *DirectoryService) checkAdminCapacity(ctx context.Context) error {
	count, err := s.profiles.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count >= s.maxAdminSeats {
		return apperrors.NewConflict("admin seats exhausted", map[string]any{
			"max_admin_seats": s.maxAdminSeats,
		})
	}
	return nil
}

func requireAdmin(actor *domain.Profile) error {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/issue-service/internal/api/dto"
	"github.com/civicdesk/issue-service/internal/auth"
	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/repository"
	"github.com/civicdesk/issue-service/internal/service"
	apperrors "github.com/civicdesk/issue-service/pkg/util/errorutil"
)

// AdminHandler exposes account administration and status overrides.
type AdminHandler struct {
	directory *service.DirectoryService
	issues    *service.IssueService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(directory *service.DirectoryService, issues *service.IssueService) *AdminHandler {
	return &AdminHandler{directory: directory, issues: issues}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := repository.ProfileFilter{
		Limit:  parseInt(c.Query("page_size"), 50),
		Offset: (parseInt(c.Query("page"), 1) - 1) * parseInt(c.Query("page_size"), 50),
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.UserRole(roleStr)
		if !domain.ValidRole(role) {
			return apperrors.NewValidationError("unknown role", nil)
		}
		filter.Role = &role
	}
	profiles, err := h.directory.ListUsers(c.Context(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateOfficer POST /admin/users.
func (h *AdminHandler) CreateOfficer(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateOfficerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		return apperrors.NewValidationError("full_name, email, password required", nil)
	}
	profile, err := h.directory.CreateOfficer(c.Context(), principal, service.OfficerCreateInput{
		Email:      req.Email,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": profileResponse(profile)})
}

// RequestPromotion POST /admin/promotions.
func (h *AdminHandler) RequestPromotion(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PromotionRequestPayload
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	promotion, err := h.directory.RequestPromotion(c.Context(), principal, req.UserID, req.ToRole, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": promotionResponse(promotion)})
}

// ListPendingPromotions GET /admin/promotions.
func (h *AdminHandler) ListPendingPromotions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	promotions, err := h.directory.ListPendingPromotions(c.Context(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.PromotionResponse, 0, len(promotions))
	for i := range promotions {
		items = append(items, promotionResponse(&promotions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ReviewPromotion POST /admin/promotions/:id/review.
func (h *AdminHandler) ReviewPromotion(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReviewPromotionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	promotion, err := h.directory.ReviewPromotion(c.Context(), principal, c.Params("id"), req.Accept)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": promotionResponse(promotion)})
}

// OverrideStatus POST /admin/issues/:id/status. Bypasses the transition
// validator and leaves a status_override audit entry.
func (h *AdminHandler) OverrideStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.OverrideStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	issue, err := h.issues.OverrideStatus(c.Context(), principal, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummary(issue, h.issues.Now())})
}

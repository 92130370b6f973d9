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

// IssuesHandler manages issue reporting and workflow endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs the handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// CreateIssue POST /issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.CreateIssue(c.Context(), principal.ID, service.IssueCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		Images:      req.Images,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueSummary(issue, h.service.Now())})
}

// ListIssues GET /issues. Citizens see their own reports; officers and
// admins see the full filtered set.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	limit := parseInt(c.Query("page_size"), 20)
	page := parseInt(c.Query("page"), 1)
	offset := (page - 1) * limit

	var issues []domain.Issue
	var err error
	if principal.Role == domain.RoleCitizen {
		issues, err = h.service.ListIssuesForReporter(c.Context(), principal.ID, limit, offset)
	} else {
		issues, err = h.service.ListIssues(c.Context(), parseIssueFilter(c, principal, limit, offset))
	}
	if err != nil {
		return err
	}

	now := h.service.Now()
	items := make([]dto.IssueSummary, 0, len(issues))
	for i := range issues {
		items = append(items, issueSummary(&issues[i], now))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetIssue GET /issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	issue, comments, activity, err := h.service.GetIssue(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueDetail(issue, comments, activity, h.service.Now())})
}

// AddComment POST /issues/:id/comments.
func (h *IssuesHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.Context(), principal, c.Params("id"), req.Comment, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// AssignL2 POST /issues/:id/assign-l2.
func (h *IssuesHandler) AssignL2(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignL2Request
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.OfficerID) == "" {
		return apperrors.NewValidationError("officer_id required", nil)
	}
	issue, err := h.service.AssignL2(c.Context(), principal, c.Params("id"), req.OfficerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummary(issue, h.service.Now())})
}

// StartWork POST /issues/:id/start.
func (h *IssuesHandler) StartWork(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	issue, err := h.service.StartWork(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummary(issue, h.service.Now())})
}

// Resolve POST /issues/:id/resolve. The resolution note is mandatory and
// rejected here before any store mutation.
func (h *IssuesHandler) Resolve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Note) == "" {
		return apperrors.NewValidationError("resolution note required", nil)
	}
	issue, err := h.service.Resolve(c.Context(), principal, c.Params("id"), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummary(issue, h.service.Now())})
}

// Close POST /issues/:id/close.
func (h *IssuesHandler) Close(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	issue, err := h.service.Close(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummary(issue, h.service.Now())})
}

func parseIssueFilter(c *fiber.Ctx, principal *domain.Profile, limit, offset int) repository.IssueFilter {
	filter := repository.IssueFilter{Limit: limit, Offset: offset}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.IssueStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.IssuePriority(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.IssueCategory(strings.TrimSpace(part)))
		}
	}
	// Officers default to their own queue unless asking for everything.
	if c.Query("all") == "" {
		switch principal.Role {
		case domain.RoleL1Officer:
			filter.AssignedL1ID = &principal.ID
		case domain.RoleL2Officer:
			filter.AssignedL2ID = &principal.ID
		}
	}
	return filter
}


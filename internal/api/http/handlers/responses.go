package handlers

import (
	"strconv"
	"time"

	"github.com/civicdesk/issue-service/internal/api/dto"
	"github.com/civicdesk/issue-service/internal/domain"
	"github.com/civicdesk/issue-service/internal/sla"
)

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func issueSummary(issue *domain.Issue, now time.Time) dto.IssueSummary {
	summary := dto.IssueSummary{
		ID:              issue.ID,
		Title:           issue.Title,
		Category:        issue.Category,
		Status:          issue.Status,
		Priority:        issue.Priority,
		ReporterID:      issue.ReporterID,
		AssignedL1ID:    issue.AssignedL1ID,
		AssignedL2ID:    issue.AssignedL2ID,
		SLADeadline:     issue.SLADeadline,
		EscalationCount: issue.EscalationCount,
		CreatedAt:       issue.CreatedAt,
		UpdatedAt:       issue.UpdatedAt,
	}
	if issue.SLADeadline != nil && !issue.Status.IsTerminal() {
		summary.TimeRemaining = sla.TimeRemaining(*issue.SLADeadline, now).Text
	}
	return summary
}

func issueDetail(issue *domain.Issue, comments []domain.IssueComment, activity []domain.ActivityLog, now time.Time) dto.IssueDetailResponse {
	detail := dto.IssueDetailResponse{
		IssueSummary: issueSummary(issue, now),
		Description:  issue.Description,
		Latitude:     issue.Latitude,
		Longitude:    issue.Longitude,
		Address:      issue.Address,
		Images:       issue.Images,
		AssignedL1A:  issue.AssignedL1At,
		AssignedL2A:  issue.AssignedL2At,
		ResolvedAt:   issue.ResolvedAt,
		ClosedAt:     issue.ClosedAt,
		Comments:     make([]dto.CommentResponse, 0, len(comments)),
		Activity:     make([]dto.ActivityResponse, 0, len(activity)),
	}
	for i := range comments {
		detail.Comments = append(detail.Comments, commentResponse(&comments[i]))
	}
	for i := range activity {
		detail.Activity = append(detail.Activity, activityResponse(&activity[i]))
	}
	return detail
}

func commentResponse(c *domain.IssueComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		Comment:    c.Comment,
		IsInternal: c.IsInternal,
		CreatedAt:  c.CreatedAt,
	}
}

func activityResponse(a *domain.ActivityLog) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		Action:    a.Action,
		Details:   a.Details,
		CreatedAt: a.CreatedAt,
	}
}

func profileResponse(p *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:         p.ID,
		Email:      p.Email,
		FullName:   p.FullName,
		Phone:      p.Phone,
		Role:       p.Role,
		Department: p.Department,
		CreatedAt:  p.CreatedAt,
	}
}

func promotionResponse(p *domain.PromotionRequest) dto.PromotionResponse {
	return dto.PromotionResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		RequestedBy: p.RequestedBy,
		FromRole:    p.FromRole,
		ToRole:      p.ToRole,
		Status:      p.Status,
		Message:     p.Message,
		CreatedAt:   p.CreatedAt,
	}
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/issue-service/internal/service"
)

// SLAHandler exposes sweep triggers and deadline metrics. The sweep
// endpoints mirror what the periodic worker runs so operators can force a
// pass at any time.
type SLAHandler struct {
	escalation   *service.EscalationService
	notification *service.NotificationService
	sla          *service.SLAService
}

// NewSLAHandler constructs the handler.
func NewSLAHandler(escalation *service.EscalationService, notification *service.NotificationService, slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{escalation: escalation, notification: notification, sla: slaService}
}

// Escalate POST /sla/escalate runs the overdue sweep once.
func (h *SLAHandler) Escalate(c *fiber.Ctx) error {
	result, err := h.escalation.RunSweep(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// Notify POST /sla/notify runs the approaching-deadline sweep once.
func (h *SLAHandler) Notify(c *fiber.Ctx) error {
	result, err := h.notification.RunSweep(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// Metrics GET /sla/metrics reports deadline standing across active issues.
func (h *SLAHandler) Metrics(c *fiber.Ctx) error {
	metrics, err := h.sla.Metrics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/issue-service/internal/api/http/handlers"
	"github.com/civicdesk/issue-service/internal/auth"
	"github.com/civicdesk/issue-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Issues         *handlers.IssuesHandler
	Admin          *handlers.AdminHandler
	SLA            *handlers.SLAHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	issues := app.Group("/issues", cfg.AuthMiddleware.Handle, auth.RequireRole())
	issues.Post("", cfg.Issues.CreateIssue)
	issues.Get("", cfg.Issues.ListIssues)
	issues.Get("/:id", cfg.Issues.GetIssue)
	issues.Post("/:id/comments", cfg.Issues.AddComment)

	// Workflow actions are officer-only; per-action role checks (L1 vs
	// L2) live in the service layer where the issue is loaded anyway.
	actions := issues.Group("", auth.RequireOfficer())
	actions.Post("/:id/assign-l2", cfg.Issues.AssignL2)
	actions.Post("/:id/start", cfg.Issues.StartWork)
	actions.Post("/:id/resolve", cfg.Issues.Resolve)
	actions.Post("/:id/close", cfg.Issues.Close)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users", cfg.Admin.CreateOfficer)
	admin.Get("/promotions", cfg.Admin.ListPendingPromotions)
	admin.Post("/promotions", cfg.Admin.RequestPromotion)
	admin.Post("/promotions/:id/review", cfg.Admin.ReviewPromotion)
	admin.Post("/issues/:id/status", cfg.Admin.OverrideStatus)

	sla := app.Group("/sla", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleL1Officer, domain.RoleL2Officer, domain.RoleAdmin))
	sla.Get("/metrics", cfg.SLA.Metrics)
	sla.Post("/escalate", cfg.SLA.Escalate)
	sla.Post("/notify", cfg.SLA.Notify)
}

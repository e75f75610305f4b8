package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/api/rpc"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Tickets         *handlers.TicketsHandler
	Audit           *handlers.AuditHandler
	Users           *handlers.UsersHandler
	ActorMiddleware *auth.ActorMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	support := app.Group("/api/support", rpc.Middleware())
	support.Post("/login", cfg.Users.Login)

	acting := support.Group("", cfg.ActorMiddleware.Handle)
	acting.Post("/ticket", cfg.Tickets.CreateTicket)
	acting.Post("/tickets", cfg.Tickets.ListTickets)
	acting.Get("/tickets", cfg.Tickets.ListTickets)
	acting.Get("/ticket/:id", cfg.Tickets.GetTicket)
	acting.Post("/ticket/:id", cfg.Tickets.GetTicket)
	acting.Post("/ticket/:id/update", cfg.Tickets.UpdateTicket)
	acting.Post("/ticket/:id/change_state", cfg.Tickets.ChangeState)
	acting.Post("/ticket/:id/action/:action", cfg.Tickets.RunAction)
	acting.Get("/ticket/:id/audit", cfg.Audit.TicketAudit)
	acting.Post("/ticket/:id/audit", cfg.Audit.TicketAudit)
	acting.Get("/audit", cfg.Audit.ListAudit)
	acting.Post("/audit", cfg.Audit.ListAudit)
	acting.Post("/assignees", cfg.Users.Assignees)
	acting.Get("/assignees", cfg.Users.Assignees)
	acting.Post("/analyze", cfg.Tickets.Analyze)
}

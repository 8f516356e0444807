package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/http/handlers"
	"github.com/spec-kit/queue-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Staff          *handlers.StaffHandler
	Workdays       *handlers.WorkdaysHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Customer endpoints stay open; workday
// and staff administration require a staff bearer token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/staff/login", cfg.Staff.Login)

	api := app.Group("/api")
	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets/:code", cfg.Tickets.GetTicket)
	api.Post("/tickets/:code/cancel", cfg.Tickets.CancelTicket)
	api.Get("/public/board", cfg.Dashboard.PublicBoard)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/workdays/open", cfg.Workdays.Open)
	protected.Post("/workdays/close", cfg.Workdays.Close)
	protected.Get("/workdays/current", cfg.Workdays.Current)
	protected.Get("/workdays/history", cfg.Workdays.History)

	protected.Post("/staff", cfg.Staff.CreateStaff)
	protected.Get("/staff", cfg.Staff.ListStaff)
	protected.Post("/staff/me/finish", cfg.Staff.FinishCurrent)
	protected.Post("/staff/me/no-show", cfg.Staff.NoShowCurrent)
	protected.Get("/staff/:id", cfg.Staff.GetStaff)
	protected.Patch("/staff/:id", cfg.Staff.UpdateStaff)
	protected.Patch("/staff/:id/status", cfg.Staff.SetStatus)

	protected.Get("/dashboard/metrics", cfg.Dashboard.Metrics)
}

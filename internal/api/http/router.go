package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voice-support-agent/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tools   *handlers.ToolsHandler
	Tickets *handlers.TicketsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/tools", cfg.Tools.List)
	app.Post("/tools/:name", cfg.Tools.Invoke)

	app.Get("/tickets/:id/comments", cfg.Tickets.Comments)
	app.Patch("/tickets/:id/status", cfg.Tickets.UpdateStatus)
}

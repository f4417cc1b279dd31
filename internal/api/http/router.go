package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/clinic-booking/internal/api/http/handlers"
	"github.com/spec-kit/clinic-booking/internal/auth"
	"github.com/spec-kit/clinic-booking/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Catalog        *handlers.CatalogHandler
	Appointments   *handlers.AppointmentsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	// AuthRateLimit guards the credential endpoints; nil disables it.
	AuthRateLimit fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1")
	requireSession := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	credentials := []fiber.Handler{}
	if cfg.AuthRateLimit != nil {
		credentials = append(credentials, cfg.AuthRateLimit)
	}
	authGroup.Post("/register", append(credentials, cfg.Auth.Register)...)
	authGroup.Post("/login", append(credentials, cfg.Auth.Login)...)
	authGroup.Post("/logout", requireSession, cfg.Auth.Logout)
	authGroup.Get("/me", requireSession, cfg.Auth.Me)

	catalog := api.Group("/catalog")
	catalog.Get("/treatments", cfg.Catalog.Treatments)
	catalog.Get("/dentists", cfg.Catalog.Dentists)
	catalog.Post("/seed", requireSession, cfg.Catalog.Seed)

	appointments := api.Group("/appointments")
	appointments.Get("/options", cfg.Appointments.Options)
	appointments.Get("", requireSession, cfg.Appointments.Dashboard)
	appointments.Post("", requireSession, cfg.Appointments.Create)
	appointments.Put("/:id", requireSession, cfg.Appointments.Reschedule)
	appointments.Post("/:id/cancel", requireSession, cfg.Appointments.Cancel)
}

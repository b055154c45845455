package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-info-api/internal/api/http/handlers"
	"github.com/spec-kit/queue-info-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	APIPrefix      string
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Items          *handlers.ItemsHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group(cfg.APIPrefix)

	authGroup := api.Group("/auth")
	authGroup.Post("/access-token", cfg.Auth.AccessToken)
	authGroup.Post("/refresh-token", cfg.Auth.RefreshToken)
	authGroup.Post("/test-token", cfg.AuthMiddleware.Handle, cfg.Auth.TestToken)
	authGroup.Post("/password-recovery/:email", cfg.Auth.RecoverPassword)
	authGroup.Post("/reset-password/", cfg.Auth.ResetPassword)

	users := api.Group("/users")
	users.Post("/", cfg.Users.Register)
	users.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	items := api.Group("/items", cfg.AuthMiddleware.Handle)
	items.Get("/", cfg.Items.List)
	items.Post("/", cfg.Items.Create)
	items.Get("/:id", cfg.Items.Get)
	items.Put("/:id", cfg.Items.Update)
	items.Delete("/:id", cfg.Items.Delete)

	metrics := api.Group("/metrics", cfg.AuthMiddleware.Handle)
	metrics.Post("/", cfg.Metrics.Record)
	metrics.Get("/", cfg.Metrics.List)
	metrics.Get("/:id", cfg.Metrics.Get)
}

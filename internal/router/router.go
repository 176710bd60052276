package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-trust-api/internal/config"
	"github.com/noah-isme/gema-trust-api/internal/handler"
	"github.com/noah-isme/gema-trust-api/internal/middleware"
	"github.com/noah-isme/gema-trust-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	BadgeHandler      *handler.BadgeHandler
	TrustHandler      *handler.TrustHandler
	ModerationHandler *handler.ModerationHandler
	AppealHandler     *handler.AppealHandler
	TrailHandler      *handler.TrailHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	requireUser := middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{RequireUser: true})

	// Per-user views
	api.Use("/users", jwtMiddleware, requireUser)
	if deps.BadgeHandler != nil {
		deps.BadgeHandler.Register(api)

		internal := api.Group("/internal", jwtMiddleware, middleware.RequireRole(middleware.AuthRoleService, middleware.AuthRoleAdmin))
		deps.BadgeHandler.RegisterInternal(internal)
	}
	if deps.TrustHandler != nil {
		deps.TrustHandler.Register(api)
	}

	// Self-service appeals
	if deps.AppealHandler != nil {
		appeals := api.Group("/appeals", jwtMiddleware, requireUser)
		deps.AppealHandler.Register(appeals, middleware.RateLimit("appeals", cfg.AppealRateLimit, appealWindow(cfg)))
	}

	// Moderation
	moderation := api.Group("/moderation", jwtMiddleware, middleware.RequireRole(middleware.AuthRoleModerator, middleware.AuthRoleAdmin))
	if deps.ModerationHandler != nil {
		deps.ModerationHandler.Register(moderation)
	}
	if deps.AppealHandler != nil {
		deps.AppealHandler.RegisterModeration(moderation)
	}
	if deps.TrailHandler != nil {
		deps.TrailHandler.Register(moderation.Group("/trail"))
	}
}

func appealWindow(cfg config.Config) time.Duration {
	if cfg.AppealRateWindow <= 0 {
		return time.Hour
	}
	return cfg.AppealRateWindow
}

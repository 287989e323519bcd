package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skillport/skillport-api/internal/config"
	"github.com/skillport/skillport-api/internal/handler"
	"github.com/skillport/skillport-api/internal/middleware"
	"github.com/skillport/skillport-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler   *handler.SubmissionHandler
	AssignmentHandler   *handler.AssignmentHandler
	ExtensionHandler    *handler.ExtensionHandler
	StatsHandler        *handler.StatsHandler
	ContestHandler      *handler.ContestHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.ExtensionHandler != nil {
		// Extension sync batches can be chatty; cap them per user.
		extension := api.Group("/extension", jwtMiddleware, middleware.RateLimit("extension-sync", 30, time.Minute))
		deps.ExtensionHandler.Register(extension)
	}

	if deps.StatsHandler != nil {
		stats := api.Group("/stats", jwtMiddleware)
		deps.StatsHandler.Register(stats)
	}

	if deps.ContestHandler != nil {
		contests := api.Group("/contests", jwtMiddleware)
		deps.ContestHandler.Register(contests)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}

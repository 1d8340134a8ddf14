package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sai-review-api/internal/config"
	"github.com/noah-isme/sai-review-api/internal/handler"
	"github.com/noah-isme/sai-review-api/internal/middleware"
	"github.com/noah-isme/sai-review-api/internal/observability"
)

const reviewRateWindow = time.Minute

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	UserHandler       *handler.UserHandler
	SubmissionHandler *handler.SubmissionHandler
	ReviewHandler     *handler.ReviewHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health, metrics and seeding
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	v2 := app.Group("/api/v2", jwtMiddleware, middleware.RequireAuth(middleware.AuthOptions{Role: middleware.AuthRoleAny}))

	if deps.UserHandler != nil {
		deps.UserHandler.Register(v2.Group("/users"))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterGrading(v2.Group("/grading"))
		deps.SubmissionHandler.Register(v2.Group("/submissions"))
	}

	// Reviewer workflow, statistics and search
	if deps.ReviewHandler != nil {
		review := v2.Group("/review",
			middleware.RequireRole(middleware.AuthRoleReviewer, middleware.AuthRoleAdmin),
			middleware.RateLimit("review", cfg.ReviewRateLimit, reviewRateWindow),
		)
		deps.ReviewHandler.Register(review)
	}
}

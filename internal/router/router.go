package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hireflow-go-api/internal/config"
	"github.com/noah-isme/hireflow-go-api/internal/handler"
	"github.com/noah-isme/hireflow-go-api/internal/middleware"
	"github.com/noah-isme/hireflow-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	InterviewAdminHandler    *handler.InterviewAdminHandler
	CandidateFlowHandler     *handler.CandidateFlowHandler
	BoardHandler             *handler.BoardHandler
	CandidateActivityHandler *handler.CandidateActivityHandler
	SweepHandler             *handler.SweepHandler
	JWTMiddleware            fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public candidate flow. Token-gated inside the handlers; rate limited
	// per caller to blunt token guessing.
	if deps.CandidateFlowHandler != nil {
		public := api.Group("/interviews", middleware.RateLimit("candidate_flow", 30, time.Minute))
		deps.CandidateFlowHandler.Register(public)
	}

	// Staff surface.
	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole("admin", "recruiter"))
	if deps.InterviewAdminHandler != nil {
		deps.InterviewAdminHandler.Register(admin.Group("/interviews"))
	}
	if deps.BoardHandler != nil {
		deps.BoardHandler.Register(admin.Group("/jobs"))
	}
	if deps.CandidateActivityHandler != nil {
		deps.CandidateActivityHandler.Register(admin.Group("/candidates"))
	}

	// Internal operations endpoints, shared-secret gated in the handler.
	if deps.SweepHandler != nil {
		deps.SweepHandler.Register(app.Group("/api/internal"))
	}
}

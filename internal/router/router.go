package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/clubvote/clubvote-go/internal/handler"
	"github.com/clubvote/clubvote-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Election *handler.ElectionHandler
	Vote     *handler.VoteHandler
	Results  *handler.ResultsHandler
	Health   *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Health and metrics (before API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")

	// Voter surface
	voteLimiter := middleware.NewVoteRateLimiter()
	statusLimiter := middleware.NewStatusRateLimiter()
	resultsLimiter := middleware.NewResultsRateLimiter()

	api.Post("/votes", h.Vote.Cast, voteLimiter.Handler())
	api.Get("/elections/status", h.Election.Status, statusLimiter.Handler())
	api.Get("/results", h.Results.Get, resultsLimiter.Handler())

	// Admin surface
	adminLimiter := middleware.NewAdminRateLimiter()
	admin := api.Group("/admin", adminLimiter.Handler())

	admin.Post("/candidates", h.Election.AddCandidate)
	admin.Delete("/candidates/:candidateId", h.Election.RemoveCandidate)
	admin.Put("/elections/duration", h.Election.SetDuration)
	admin.Post("/elections/start", h.Election.Start)
	admin.Post("/elections/end", h.Election.End)
	admin.Put("/elections/results-visible", h.Election.SetResultsVisible)
	admin.Get("/overview", h.Election.Overview)
}

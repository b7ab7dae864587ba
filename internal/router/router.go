package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/mathieu-neron/channel-insight/internal/handler"
	"github.com/mathieu-neron/channel-insight/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Insight *handler.InsightHandler
	Health  *handler.HealthHandler
}

// Options configures the middleware stack.
type Options struct {
	CORSOrigins          string
	InsightRatePerMinute int
}

// Setup configures the middleware stack and all routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, opts Options) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(opts.CORSOrigins))

	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api", middleware.NewInsightRateLimiter(opts.InsightRatePerMinute).Handler())

	api.Get("/channel-details", h.Insight.ChannelDetails)
	api.Get("/channels/:channelId/insight", h.Insight.ByChannelID)
}

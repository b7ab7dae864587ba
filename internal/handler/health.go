package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	pool    *pgxpool.Pool
	rdb     *redis.Client
	startAt time.Time
}

// NewHealthHandler builds probes. pool and rdb may each be nil when the
// dependency is not configured; a nil dependency reports "disabled".
func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		rdb:     rdb,
		startAt: time.Now(),
	}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready. A configured dependency that fails its
// ping marks the service degraded.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	checks := fiber.Map{
		"database": checkPing(ctx, h.pool != nil, func(ctx context.Context) error { return h.pool.Ping(ctx) }),
		"redis":    checkPing(ctx, h.rdb != nil, func(ctx context.Context) error { return h.rdb.Ping(ctx).Err() }),
	}

	overallStatus := "healthy"
	for _, check := range checks {
		if check.(fiber.Map)["status"] == "down" {
			overallStatus = "degraded"
		}
	}

	status := fiber.StatusOK
	if overallStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status":         overallStatus,
		"checks":         checks,
		"uptime_seconds": int(time.Since(h.startAt).Seconds()),
	})
}

func checkPing(ctx context.Context, enabled bool, ping func(context.Context) error) fiber.Map {
	if !enabled {
		return fiber.Map{"status": "disabled"}
	}

	start := time.Now()
	err := ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}

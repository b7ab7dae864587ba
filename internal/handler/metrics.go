package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds the HTTP-level Prometheus collectors.
var Metrics = struct {
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	PageCacheEntries prometheus.GaugeFunc
	DBPoolActive     prometheus.GaugeFunc
	DBPoolIdle       prometheus.GaugeFunc
}{}

// InitMetrics registers the HTTP collectors plus any package collectors
// passed in. pool may be nil. Call once at startup.
func InitMetrics(pool *pgxpool.Pool, cacheLen func() int, extra ...prometheus.Collector) {
	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "channel_insight_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "channel_insight_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	collectors := []prometheus.Collector{Metrics.RequestDuration, Metrics.RequestsInFlight}

	if cacheLen != nil {
		Metrics.PageCacheEntries = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "channel_insight_page_cache_entries",
				Help: "Pages held in the in-memory page cache.",
			},
			func() float64 { return float64(cacheLen()) },
		)
		collectors = append(collectors, Metrics.PageCacheEntries)
	}

	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "channel_insight_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 { return float64(pool.Stat().AcquiredConns()) },
		)
		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "channel_insight_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 { return float64(pool.Stat().IdleConns()) },
		)
		collectors = append(collectors, Metrics.DBPoolActive, Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(append(collectors, extra...)...)
}

// MetricsMiddleware records request duration and in-flight count. It is a
// no-op until InitMetrics has run.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if Metrics.RequestDuration == nil || c.Path() == "/metrics" {
			return c.Next()
		}

		// Fiber returns slices backed by the fasthttp buffer; copy before Next.
		endpoint := sanitizeEndpoint(string([]byte(c.Path())))
		method := string([]byte(c.Method()))

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		status := strconv.Itoa(c.Response().StatusCode())
		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(time.Since(start).Seconds())
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/channels/") && strings.HasSuffix(path, "/insight"):
		return "/api/channels/:channelId/insight"
	case strings.HasPrefix(path, "/api/channels/"):
		return "/api/channels/:channelId"
	case strings.HasPrefix(path, "/api/"), strings.HasPrefix(path, "/health/"):
		return path
	default:
		return "other"
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mathieu-neron/channel-insight/internal/config"
	"github.com/mathieu-neron/channel-insight/internal/db"
	"github.com/mathieu-neron/channel-insight/internal/fetch"
	"github.com/mathieu-neron/channel-insight/internal/handler"
	"github.com/mathieu-neron/channel-insight/internal/middleware"
	"github.com/mathieu-neron/channel-insight/internal/router"
	"github.com/mathieu-neron/channel-insight/internal/service"
	"github.com/mathieu-neron/channel-insight/internal/youtube"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "channel-insight-api")
	log := middleware.Logger
	if !cfg.EnvFileLoaded {
		log.Debug().Msg("config: no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The API has no database dependency; a pool is only opened for readiness
	// and pool metrics when one is configured.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		p, err := db.NewPool(ctx, cfg.DatabaseURL, middleware.Component("db"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		pool = p
		defer pool.Close()
	}

	rdb := service.ConnectRedis(cfg.RedisURL, middleware.Component("redis"))

	gateway := fetch.NewHTTPGateway(fetch.Options{
		Timeout:       cfg.FetchTimeout,
		RatePerSecond: cfg.FetchRatePerSecond,
		MaxRetries:    cfg.FetchMaxRetries,
	}, middleware.Component("fetch"))
	pages := service.NewPageCache(gateway, cfg.FetchCacheSize, cfg.FetchCacheTTL, rdb, middleware.Component("page_cache"))
	defer pages.Close()

	meta, err := youtube.New(ctx, cfg.YouTubeAPIKey, middleware.Component("youtube"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create YouTube client")
	}

	insight := service.NewInsightService(meta, pages, service.NewPool(cfg.WorkerPoolSize), service.InsightOptions{
		UploadsMaxResults: cfg.UploadsMaxResults,
		Timeout:           cfg.AnalyzeTimeout,
	}, middleware.Component("insight"))

	collectors := append(fetch.Collectors(), service.Collectors()...)
	handler.InitMetrics(pool, pages.Len, collectors...)

	app := fiber.New(fiber.Config{
		AppName:      "Channel Insight API",
		ServerHeader: "channel-insight",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AnalyzeTimeout + 10*time.Second,
	})

	router.Setup(app, &router.Handlers{
		Insight: handler.NewInsightHandler(insight, middleware.Component("http")),
		Health:  handler.NewHealthHandler(pool, pages.Client()),
	}, router.Options{
		CORSOrigins:          cfg.CORSOrigins,
		InsightRatePerMinute: cfg.InsightRatePerMinute,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("channel insight API starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

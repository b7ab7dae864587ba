// Command warehouse analyzes a batch of pending candidate channels and
// appends the reports to the warehouse tables.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mathieu-neron/channel-insight/internal/config"
	"github.com/mathieu-neron/channel-insight/internal/db"
	"github.com/mathieu-neron/channel-insight/internal/fetch"
	"github.com/mathieu-neron/channel-insight/internal/middleware"
	"github.com/mathieu-neron/channel-insight/internal/repository"
	"github.com/mathieu-neron/channel-insight/internal/service"
	"github.com/mathieu-neron/channel-insight/internal/youtube"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "create warehouse tables and exit")
	seed := flag.String("seed", "", "CSV of channel_id,subscriber_count,country to upsert as candidates before the run")
	interval := flag.Duration("interval", 0, "repeat the batch on this interval (0 runs once)")
	flag.Parse()

	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "channel-insight-warehouse")
	log := middleware.Logger
	if !cfg.EnvFileLoaded {
		log.Debug().Msg("config: no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wh, err := openWarehouse(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.WarehouseDriver).Msg("failed to open warehouse")
	}
	defer wh.Close()

	if err := wh.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate warehouse")
	}
	if *seed != "" {
		if err := seedCandidates(ctx, wh, *seed); err != nil {
			log.Fatal().Err(err).Str("file", *seed).Msg("failed to seed candidates")
		}
		log.Info().Str("file", *seed).Msg("candidates seeded")
	}
	if *migrateOnly {
		log.Info().Msg("warehouse migrated")
		return
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

	batch := service.NewBatchService(insight, wh, wh, middleware.Component("batch"))
	filter := repository.CandidateFilter{
		MinSubscribers: cfg.BatchMinSubscribers,
		CountryLike:    cfg.BatchCountry,
		Offset:         cfg.BatchOffset,
		Limit:          cfg.BatchLimit,
	}

	if *interval > 0 {
		service.NewBatchWorker(batch, filter, *interval, middleware.Component("batch")).Start(ctx)
		return
	}

	summary, err := batch.Run(ctx, filter)
	if err != nil {
		log.Fatal().Err(err).Str("run_id", summary.RunID.String()).Msg("batch failed")
	}
}

func seedCandidates(ctx context.Context, wh repository.Warehouse, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cs, err := repository.ReadCandidatesCSV(f)
	if err != nil {
		return err
	}
	return wh.UpsertCandidates(ctx, cs)
}

func openWarehouse(ctx context.Context, cfg *config.Config) (repository.Warehouse, error) {
	if cfg.WarehouseDriver == "sqlite" {
		dsn := cfg.WarehouseDSN
		if dsn == "" {
			dsn = "channel-insight.db"
		}
		return repository.OpenSQLiteSink(dsn)
	}

	dsn := cfg.WarehouseDSN
	if dsn == "" {
		dsn = cfg.DatabaseURL
	}
	pool, err := db.NewPool(ctx, dsn, middleware.Component("db"))
	if err != nil {
		return nil, err
	}
	return repository.NewPostgresSink(pool), nil
}

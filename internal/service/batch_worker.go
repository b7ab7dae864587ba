package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mathieu-neron/channel-insight/internal/repository"
)

// BatchWorker runs the warehouse batch on a fixed interval.
type BatchWorker struct {
	batch    *BatchService
	filter   repository.CandidateFilter
	interval time.Duration
	log      zerolog.Logger
}

func NewBatchWorker(batch *BatchService, filter repository.CandidateFilter, interval time.Duration, log zerolog.Logger) *BatchWorker {
	return &BatchWorker{batch: batch, filter: filter, interval: interval, log: log}
}

// Start runs one batch immediately, then every interval until ctx is done.
func (w *BatchWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("batch-worker: starting")

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			w.log.Info().Msg("batch-worker: stopping (context cancelled)")
			return
		}
	}
}

func (w *BatchWorker) tick(ctx context.Context) {
	start := time.Now()
	summary, err := w.batch.Run(ctx, w.filter)
	if err != nil {
		w.log.Error().Err(err).Str("run_id", summary.RunID.String()).Msg("batch-worker: run failed")
		return
	}
	w.log.Info().
		Str("run_id", summary.RunID.String()).
		Int("analyzed", summary.Analyzed).
		Dur("elapsed", time.Since(start)).
		Msg("batch-worker: run complete")
}

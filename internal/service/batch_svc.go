package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mathieu-neron/channel-insight/internal/model"
	"github.com/mathieu-neron/channel-insight/internal/repository"
)

// ChannelAnalyzer is the slice of InsightService the batch job needs.
type ChannelAnalyzer interface {
	Analyze(ctx context.Context, input string) (*model.Report, error)
}

// BatchSummary describes one warehouse run.
type BatchSummary struct {
	RunID       uuid.UUID
	Candidates  int
	Analyzed    int
	Failed      int
	ChannelRows int
	YearRows    int
}

// BatchService analyzes pending candidate channels and appends the reports to
// the warehouse.
type BatchService struct {
	analyzer   ChannelAnalyzer
	candidates repository.CandidateRepo
	sink       repository.ReportSink
	log        zerolog.Logger
}

func NewBatchService(analyzer ChannelAnalyzer, candidates repository.CandidateRepo, sink repository.ReportSink, log zerolog.Logger) *BatchService {
	return &BatchService{analyzer: analyzer, candidates: candidates, sink: sink, log: log}
}

// Run processes one batch. Channels are analyzed one at a time since each
// analysis already fans out on the shared pool. A failed channel is logged and
// skipped; the batch only fails on candidate listing or warehouse writes.
func (b *BatchService) Run(ctx context.Context, f repository.CandidateFilter) (BatchSummary, error) {
	summary := BatchSummary{RunID: uuid.New()}
	log := b.log.With().Str("run_id", summary.RunID.String()).Logger()

	ids, err := b.candidates.ListPending(ctx, f)
	if err != nil {
		return summary, err
	}
	summary.Candidates = len(ids)
	log.Info().Int("candidates", len(ids)).Msg("batch: starting")

	reports := make([]*model.Report, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Msg("batch: stopped early")
			break
		}
		report, err := b.analyzer.Analyze(ctx, id)
		if err != nil {
			summary.Failed++
			log.Warn().Err(err).Str("channel_id", id).Msg("batch: channel failed")
			continue
		}
		reports = append(reports, report)
	}
	summary.Analyzed = len(reports)

	// Writes use a context detached from cancellation so finished work is kept.
	writeCtx := context.WithoutCancel(ctx)
	if summary.ChannelRows, err = b.sink.AppendChannelData(writeCtx, summary.RunID, reports); err != nil {
		return summary, fmt.Errorf("append channel data: %w", err)
	}
	if summary.YearRows, err = b.sink.AppendCreationYears(writeCtx, summary.RunID, reports); err != nil {
		return summary, fmt.Errorf("append creation years: %w", err)
	}

	log.Info().
		Int("analyzed", summary.Analyzed).
		Int("failed", summary.Failed).
		Int("channel_rows", summary.ChannelRows).
		Int("year_rows", summary.YearRows).
		Msg("batch: finished")
	return summary, nil
}

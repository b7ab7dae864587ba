package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS channel_candidates (
	channel_id       VARCHAR(32) PRIMARY KEY,
	subscriber_count BIGINT NOT NULL DEFAULT 0,
	country          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS channel_data (
	run_id              UUID NOT NULL,
	channel_id          VARCHAR(32) NOT NULL,
	title               TEXT NOT NULL,
	country             TEXT NOT NULL DEFAULT '',
	published_at        TEXT NOT NULL DEFAULT '',
	subscriber_count    BIGINT NOT NULL,
	view_count          BIGINT NOT NULL,
	video_count         BIGINT NOT NULL,
	short_count         BIGINT NOT NULL,
	uploads_inspected   BIGINT NOT NULL,
	first_ad_count      BIGINT NOT NULL,
	first_five_ad_count BIGINT NOT NULL,
	overall_ad_count    BIGINT NOT NULL,
	views_to_sub_ratio  DOUBLE PRECISION,
	male_percentage     DOUBLE PRECISION,
	female_percentage   DOUBLE PRECISION,
	authors_sampled     BIGINT,
	videos              JSONB NOT NULL,
	video_links         JSONB NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_channel_data_channel ON channel_data (channel_id);

CREATE TABLE IF NOT EXISTS channel_audience_account_create_date (
	run_id       UUID NOT NULL,
	channel_id   VARCHAR(32) NOT NULL,
	year         VARCHAR(4) NOT NULL,
	author_count BIGINT NOT NULL
);`

// PostgresSink is the production warehouse on a pgx pool.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// Migrate creates the warehouse tables if they do not exist.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate warehouse: %w", err)
	}
	return nil
}

// AppendChannelData bulk-loads reports with COPY.
func (s *PostgresSink) AppendChannelData(ctx context.Context, runID uuid.UUID, reports []*model.Report) (int, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(reports))
	for _, r := range reports {
		if r == nil {
			continue
		}
		row, err := channelDataRow(runID, r, now)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"channel_data"}, channelDataColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy channel_data: %w", err)
	}
	return int(n), nil
}

// AppendCreationYears bulk-loads the per-year commenter histogram.
func (s *PostgresSink) AppendCreationYears(ctx context.Context, runID uuid.UUID, reports []*model.Report) (int, error) {
	rows := creationYearRows(runID, reports)
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"channel_audience_account_create_date"}, creationYearColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy channel_audience_account_create_date: %w", err)
	}
	return int(n), nil
}

// ListPending returns candidate channel ids not yet present in channel_data,
// largest first.
func (s *PostgresSink) ListPending(ctx context.Context, f CandidateFilter) ([]string, error) {
	query := `
		SELECT c.channel_id
		FROM channel_candidates c
		WHERE c.subscriber_count > $1
		  AND c.country LIKE $2
		  AND NOT EXISTS (SELECT 1 FROM channel_data d WHERE d.channel_id = c.channel_id)
		ORDER BY c.subscriber_count DESC, c.channel_id
		OFFSET $3 LIMIT $4`

	rows, err := s.pool.Query(ctx, query, f.MinSubscribers, f.CountryLike, f.Offset, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("list pending candidates: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan pending candidates: %w", err)
	}
	return ids, nil
}

// UpsertCandidates inserts or refreshes candidate channels in one batch.
func (s *PostgresSink) UpsertCandidates(ctx context.Context, cs []Candidate) error {
	query := `
		INSERT INTO channel_candidates (channel_id, subscriber_count, country)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id) DO UPDATE
		SET subscriber_count = EXCLUDED.subscriber_count, country = EXCLUDED.country`

	batch := &pgx.Batch{}
	for _, c := range cs {
		batch.Queue(query, c.ChannelID, c.SubscriberCount, c.Country)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert candidates: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

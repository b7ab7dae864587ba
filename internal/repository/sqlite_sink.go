package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS channel_candidates (
	channel_id       TEXT PRIMARY KEY,
	subscriber_count INTEGER NOT NULL DEFAULT 0,
	country          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS channel_data (
	run_id              TEXT NOT NULL,
	channel_id          TEXT NOT NULL,
	title               TEXT NOT NULL,
	country             TEXT NOT NULL DEFAULT '',
	published_at        TEXT NOT NULL DEFAULT '',
	subscriber_count    INTEGER NOT NULL,
	view_count          INTEGER NOT NULL,
	video_count         INTEGER NOT NULL,
	short_count         INTEGER NOT NULL,
	uploads_inspected   INTEGER NOT NULL,
	first_ad_count      INTEGER NOT NULL,
	first_five_ad_count INTEGER NOT NULL,
	overall_ad_count    INTEGER NOT NULL,
	views_to_sub_ratio  REAL,
	male_percentage     REAL,
	female_percentage   REAL,
	authors_sampled     INTEGER,
	videos              TEXT NOT NULL,
	video_links         TEXT NOT NULL,
	created_at          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_channel_data_channel ON channel_data (channel_id);

CREATE TABLE IF NOT EXISTS channel_audience_account_create_date (
	run_id       TEXT NOT NULL,
	channel_id   TEXT NOT NULL,
	year         TEXT NOT NULL,
	author_count INTEGER NOT NULL
);`

// SQLiteSink is a file-backed warehouse for local runs.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink opens (or creates) the database at dsn.
func OpenSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite warehouse: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate warehouse: %w", err)
	}
	return nil
}

func (s *SQLiteSink) AppendChannelData(ctx context.Context, runID uuid.UUID, reports []*model.Report) (int, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(reports))
	for _, r := range reports {
		if r == nil {
			continue
		}
		row, err := channelDataRow(runID.String(), r, now)
		if err != nil {
			return 0, err
		}
		row[len(row)-1] = now.Format(time.RFC3339Nano)
		rows = append(rows, row)
	}
	return s.insertAll(ctx, "channel_data", channelDataColumns, rows)
}

func (s *SQLiteSink) AppendCreationYears(ctx context.Context, runID uuid.UUID, reports []*model.Report) (int, error) {
	return s.insertAll(ctx, "channel_audience_account_create_date", creationYearColumns, creationYearRows(runID.String(), reports))
}

// insertAll writes rows in one transaction with a prepared statement.
func (s *SQLiteSink) insertAll(ctx context.Context, table string, columns []string, rows [][]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin %s insert: %w", table, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, insertStatement(table, columns))
	if err != nil {
		return 0, fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("insert %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s insert: %w", table, err)
	}
	return len(rows), nil
}

func insertStatement(table string, columns []string) string {
	q := "INSERT INTO " + table + " ("
	marks := ""
	for i, c := range columns {
		if i > 0 {
			q += ", "
			marks += ", "
		}
		q += c
		marks += "?"
	}
	return q + ") VALUES (" + marks + ")"
}

func (s *SQLiteSink) ListPending(ctx context.Context, f CandidateFilter) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.channel_id
		FROM channel_candidates c
		WHERE c.subscriber_count > ?
		  AND c.country LIKE ?
		  AND NOT EXISTS (SELECT 1 FROM channel_data d WHERE d.channel_id = c.channel_id)
		ORDER BY c.subscriber_count DESC, c.channel_id
		LIMIT ? OFFSET ?`,
		f.MinSubscribers, f.CountryLike, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list pending candidates: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending candidates: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteSink) UpsertCandidates(ctx context.Context, cs []Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert candidates: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, c := range cs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO channel_candidates (channel_id, subscriber_count, country)
			VALUES (?, ?, ?)
			ON CONFLICT (channel_id) DO UPDATE
			SET subscriber_count = excluded.subscriber_count, country = excluded.country`,
			c.ChannelID, c.SubscriberCount, c.Country); err != nil {
			return fmt.Errorf("upsert candidate %s: %w", c.ChannelID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

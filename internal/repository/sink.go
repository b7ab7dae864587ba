package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

// ReportSink appends finished reports to the warehouse. Both writes are
// append-only and tagged with the batch run id.
type ReportSink interface {
	// AppendChannelData writes one row per report, without the year
	// histogram and age brackets.
	AppendChannelData(ctx context.Context, runID uuid.UUID, reports []*model.Report) (int, error)
	// AppendCreationYears writes one row per report and account-creation year.
	AppendCreationYears(ctx context.Context, runID uuid.UUID, reports []*model.Report) (int, error)
}

// Candidate is a channel eligible for batch analysis.
type Candidate struct {
	ChannelID       string
	SubscriberCount int64
	Country         string
}

// CandidateFilter selects pending candidates.
type CandidateFilter struct {
	MinSubscribers int
	CountryLike    string
	Offset         int
	Limit          int
}

// CandidateRepo lists channels that have not been written to channel_data.
type CandidateRepo interface {
	ListPending(ctx context.Context, f CandidateFilter) ([]string, error)
	UpsertCandidates(ctx context.Context, cs []Candidate) error
}

// Warehouse is a migrated store that is both the candidate source and the
// report sink.
type Warehouse interface {
	ReportSink
	CandidateRepo
	Migrate(ctx context.Context) error
	Close() error
}

var channelDataColumns = []string{
	"run_id", "channel_id", "title", "country", "published_at",
	"subscriber_count", "view_count", "video_count",
	"short_count", "uploads_inspected",
	"first_ad_count", "first_five_ad_count", "overall_ad_count",
	"views_to_sub_ratio", "male_percentage", "female_percentage", "authors_sampled",
	"videos", "video_links", "created_at",
}

var creationYearColumns = []string{"run_id", "channel_id", "year", "author_count"}

// channelDataRow flattens a report in channelDataColumns order. Optional
// values are nil when absent.
func channelDataRow(runID any, r *model.Report, now time.Time) ([]any, error) {
	videos, err := json.Marshal(r.Videos)
	if err != nil {
		return nil, fmt.Errorf("marshal videos for %s: %w", r.ID, err)
	}
	links, err := json.Marshal(r.VideoLinks)
	if err != nil {
		return nil, fmt.Errorf("marshal links for %s: %w", r.ID, err)
	}

	var ratio, male, female, sampled any
	if r.ViewsToSubRatio != nil {
		ratio = *r.ViewsToSubRatio
	}
	if d := r.Demographics; d != nil {
		male, female, sampled = d.MalePercentage, d.FemalePercentage, int64(d.AuthorsSampled)
	}

	return []any{
		runID, r.ID, r.Title, r.Country, r.PublishedAt,
		r.SubscriberCount, r.ViewCount, r.VideoCount,
		int64(r.ShortCount), int64(r.UploadsInspected),
		int64(r.FirstAdCount), int64(r.FirstFiveAdCount), int64(r.OverallAdCount),
		ratio, male, female, sampled,
		string(videos), string(links), now,
	}, nil
}

// creationYearRows returns one row per report and year. Reports without
// demographics contribute nothing.
func creationYearRows(runID any, reports []*model.Report) [][]any {
	var rows [][]any
	for _, r := range reports {
		if r == nil || r.Demographics == nil {
			continue
		}
		for _, yc := range r.CreationYearDivision {
			rows = append(rows, []any{runID, r.ID, yc.Year, int64(yc.Count)})
		}
	}
	return rows
}

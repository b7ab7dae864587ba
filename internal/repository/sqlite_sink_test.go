package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

func newTestSink(t *testing.T) *SQLiteSink {
	t.Helper()
	s, err := OpenSQLiteSink(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleReports() []*model.Report {
	ratio := 0.4
	return []*model.Report{
		{
			ID:              "UCwith",
			Title:           "With Demographics",
			SubscriberCount: 20000,
			Videos:          []model.Video{{ID: "v1", ViewCount: 8000}},
			VideoLinks:      []string{model.WatchURL("v1")},
			ViewsToSubRatio: &ratio,
			Demographics: &model.Demographics{
				MalePercentage:   60,
				FemalePercentage: 40,
				AuthorsSampled:   5,
				CreationYearDivision: model.YearHistogram{
					{Year: "2015", Count: 2},
					{Year: "2020", Count: 3},
				},
			},
		},
		{ID: "UCwithout", Title: "No Demographics", DemographicsError: "no commenter could be classified by gender"},
		nil,
	}
}

func TestSQLiteSink_AppendAndListPending(t *testing.T) {
	ctx := context.Background()
	s := newTestSink(t)

	require.NoError(t, s.UpsertCandidates(ctx, []Candidate{
		{ChannelID: "UCwith", SubscriberCount: 20000, Country: "United States"},
		{ChannelID: "UCbig", SubscriberCount: 90000, Country: "United States"},
		{ChannelID: "UCsmall", SubscriberCount: 100, Country: "United States"},
		{ChannelID: "UCfr", SubscriberCount: 50000, Country: "France"},
	}))

	filter := CandidateFilter{MinSubscribers: 5000, CountryLike: "%United S%", Offset: 0, Limit: 10}
	pending, err := s.ListPending(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, []string{"UCbig", "UCwith"}, pending)

	runID := uuid.New()
	n, err := s.AppendChannelData(ctx, runID, sampleReports())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.AppendCreationYears(ctx, runID, sampleReports())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err = s.ListPending(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, []string{"UCbig"}, pending)

	var male any
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT male_percentage FROM channel_data WHERE channel_id = 'UCwithout'`).Scan(&male))
	assert.Nil(t, male)

	var total int
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT SUM(author_count) FROM channel_audience_account_create_date WHERE run_id = ?`, runID.String()).Scan(&total))
	assert.Equal(t, 5, total)
}

func TestSQLiteSink_OffsetAndLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestSink(t)

	require.NoError(t, s.UpsertCandidates(ctx, []Candidate{
		{ChannelID: "UC1", SubscriberCount: 9000, Country: "United States"},
		{ChannelID: "UC2", SubscriberCount: 8000, Country: "United States"},
		{ChannelID: "UC3", SubscriberCount: 7000, Country: "United States"},
	}))

	pending, err := s.ListPending(ctx, CandidateFilter{MinSubscribers: 5000, CountryLike: "%", Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"UC2"}, pending)
}

func TestSQLiteSink_EmptyAppends(t *testing.T) {
	s := newTestSink(t)

	n, err := s.AppendChannelData(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.AppendCreationYears(context.Background(), uuid.New(), []*model.Report{{ID: "UCx"}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertStatement(t *testing.T) {
	assert.Equal(t, "INSERT INTO t (a, b) VALUES (?, ?)", insertStatement("t", []string{"a", "b"}))
}

package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

func TestCountAds(t *testing.T) {
	got := CountAds([]bool{true, false, true, false, false, true})
	assert.Equal(t, AdCounts{First: 1, FirstFive: 2, Overall: 3}, got)

	assert.Equal(t, AdCounts{}, CountAds(nil))
	assert.Equal(t, AdCounts{FirstFive: 1, Overall: 1}, CountAds([]bool{false, true}))
}

func TestViewsToSubscriberRatio(t *testing.T) {
	// mean of 100 and 101 truncates to 100
	r, err := ViewsToSubscriberRatio([]int64{100, 101}, 400)
	require.NoError(t, err)
	assert.Equal(t, 0.25, r)

	_, err = ViewsToSubscriberRatio(nil, 400)
	assert.ErrorIs(t, err, ErrNoViews)

	_, err = ViewsToSubscriberRatio([]int64{10}, 0)
	assert.ErrorIs(t, err, ErrNoSubscribers)
}

func TestAssembleReport(t *testing.T) {
	ch := &model.Channel{ID: "UCx", Title: "Chan", SubscriberCount: 1000, VideoCount: 9}
	recent := videos("a", "b", "c")
	details := []model.Video{
		{ID: "c", Title: "C", ViewCount: 30},
		{ID: "a", Title: "A", ViewCount: 10},
	}

	r := AssembleReport(ReportInput{
		Channel:      ch,
		Uploads:      4,
		Shorts:       1,
		Recent:       recent,
		Details:      details,
		AdFlags:      []bool{true, false},
		Ratio:        Ok(0.02),
		Demographics: Fail[model.Demographics](ErrNoClassifiedAuthors),
	})

	assert.Equal(t, "UCx", r.ID)
	assert.Equal(t, 1, r.ShortCount)
	assert.Equal(t, 4, r.UploadsInspected)
	require.Len(t, r.Videos, 3)
	assert.Equal(t, "A", r.Videos[0].Title)
	assert.True(t, r.Videos[0].HasAd)
	assert.Equal(t, "b", r.Videos[1].ID)
	assert.False(t, r.Videos[2].HasAd)
	assert.Equal(t, []string{model.WatchURL("a"), model.WatchURL("b"), model.WatchURL("c")}, r.VideoLinks)
	assert.Equal(t, 1, r.FirstAdCount)
	require.NotNil(t, r.ViewsToSubRatio)
	assert.Equal(t, 0.02, *r.ViewsToSubRatio)
	assert.Nil(t, r.Demographics)
	assert.NotEmpty(t, r.DemographicsError)
}

func TestAssembleReport_LinksCapped(t *testing.T) {
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("v%d", i)
	}
	r := AssembleReport(ReportInput{
		Channel:      &model.Channel{ID: "UCx"},
		Recent:       videos(ids...),
		Ratio:        Fail[float64](ErrNoViews),
		Demographics: Fail[model.Demographics](ErrNoViews),
	})
	assert.Len(t, r.VideoLinks, MaxReportLinks)
	assert.Len(t, r.Videos, 20)
	assert.Nil(t, r.ViewsToSubRatio)
}

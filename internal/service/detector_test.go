package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

func TestIsShortPage_Threshold(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  bool
	}{
		{"no marker", 0, false},
		{"at threshold", ShortMarkerThreshold, false},
		{"just above threshold", ShortMarkerThreshold + 1, true},
		{"well above threshold", 500, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := strings.Repeat(ShortMarker+" ", tt.count)
			assert.Equal(t, tt.want, IsShortPage(page))
		})
	}
}

func TestDetector_IsShortFetchError(t *testing.T) {
	pages := newFakePages()
	pages.errs[ShortURL("v1")] = errFakeFetch

	_, err := NewDetector(pages).IsShort(context.Background(), "v1")
	assert.ErrorIs(t, err, errFakeFetch)
}

func TestDetector_HasAd(t *testing.T) {
	pages := newFakePages()
	pages.pages[model.WatchURL("ad")] = `<script>{"paidContentOverlayRenderer":{}}</script>`
	pages.pages[model.WatchURL("clean")] = `<script>{}</script>`
	d := NewDetector(pages)

	got, err := d.HasAd(context.Background(), "ad")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = d.HasAd(context.Background(), "clean")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestParseAuthorProfile(t *testing.T) {
	page := aboutPage("UCauthor", "Jane Doe", "Mar 4, 2016")

	p, err := ParseAuthorProfile("UCauthor", page)
	require.NoError(t, err)
	assert.Equal(t, "UCauthor", p.ChannelID)
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, "Mar 4, 2016", p.JoinedDate)
	assert.Empty(t, p.Gender)
}

func TestParseAuthorProfile_MissingMarkers(t *testing.T) {
	_, err := ParseAuthorProfile("UCauthor", `{"joinedDateText": {"content": "Joined Mar 4, 2016","x":1}}`)
	assert.ErrorIs(t, err, ErrExtraction)

	_, err = ParseAuthorProfile("UCauthor", `{"channelId":"UCauthor", "name": "Jane"}`)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestDetector_AuthorProfileUsesAboutPage(t *testing.T) {
	pages := newFakePages()
	pages.pages[AboutURL("UCa")] = aboutPage("UCa", "Tom", "Jan 1, 2020")

	p, err := NewDetector(pages).AuthorProfile(context.Background(), "UCa")
	require.NoError(t, err)
	assert.Equal(t, "Tom", p.Name)
	assert.Equal(t, 1, pages.count(AboutURL("UCa")))
}

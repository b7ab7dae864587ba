package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mathieu-neron/channel-insight/internal/lexicon"
	"github.com/mathieu-neron/channel-insight/internal/model"
)

// Page markers. These were calibrated by inspecting live page markup and are
// not derived from any documented format; they break when YouTube changes its
// HTML and should be re-checked rather than generalized.
const (
	// ShortMarker is counted on the /shorts/ variant of a video page.
	ShortMarker = "shorts"
	// ShortMarkerThreshold: a real Short renders the marker more than this many times.
	ShortMarkerThreshold = 201
	// AdMarker is present on watch pages carrying a paid-promotion overlay.
	AdMarker = "paidContentOverlayRenderer"

	nameDelimiter    = `", "name": "`
	joinedDateMarker = "joinedDateText"
	joinedDateEnd    = `","`
	joinedDateRunes  = 11
)

// PageSource returns page content by URL. PageCache implements it.
type PageSource interface {
	Get(ctx context.Context, url string) (string, error)
}

func ShortURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/shorts/%s", videoID)
}

func AboutURL(channelID string) string {
	return fmt.Sprintf("https://www.youtube.com/channel/%s/about", channelID)
}

// Detector classifies videos and extracts author profiles from fetched pages.
type Detector struct {
	pages PageSource
}

func NewDetector(pages PageSource) *Detector {
	return &Detector{pages: pages}
}

// IsShort reports whether the video is short-form. A page without the marker
// is simply not a Short; only fetch failures return an error.
func (d *Detector) IsShort(ctx context.Context, videoID string) (bool, error) {
	page, err := d.pages.Get(ctx, ShortURL(videoID))
	if err != nil {
		return false, err
	}
	return IsShortPage(page), nil
}

// IsShortPage applies the marker-count rule to page content.
func IsShortPage(page string) bool {
	return strings.Count(page, ShortMarker) > ShortMarkerThreshold
}

// HasAd reports whether the watch page carries a paid-promotion overlay.
func (d *Detector) HasAd(ctx context.Context, videoID string) (bool, error) {
	page, err := d.pages.Get(ctx, model.WatchURL(videoID))
	if err != nil {
		return false, err
	}
	return strings.Contains(page, AdMarker), nil
}

// AuthorProfile reads a commenter's display name and join date from their
// about page. Gender is left for the demographic stage.
func (d *Detector) AuthorProfile(ctx context.Context, channelID string) (model.AuthorProfile, error) {
	page, err := d.pages.Get(ctx, AboutURL(channelID))
	if err != nil {
		return model.AuthorProfile{}, err
	}
	return ParseAuthorProfile(channelID, page)
}

// ParseAuthorProfile extracts the profile fields from about-page content.
func ParseAuthorProfile(channelID, page string) (model.AuthorProfile, error) {
	name, ok := lexicon.Between(page, channelID+nameDelimiter, `"`)
	if !ok {
		return model.AuthorProfile{}, fmt.Errorf("%w: no display name for %s", ErrExtraction, channelID)
	}
	joined, ok := lexicon.Between(page, joinedDateMarker, joinedDateEnd)
	if !ok {
		return model.AuthorProfile{}, fmt.Errorf("%w: no join date for %s", ErrExtraction, channelID)
	}
	return model.AuthorProfile{
		ChannelID:  channelID,
		Name:       name,
		JoinedDate: lexicon.LastRunes(joined, joinedDateRunes),
	}, nil
}

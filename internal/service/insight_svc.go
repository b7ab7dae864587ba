package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/mathieu-neron/channel-insight/internal/lexicon"
	"github.com/mathieu-neron/channel-insight/internal/model"
)

// MetadataAPI is the structured YouTube metadata the pipeline reads.
type MetadataAPI interface {
	CommentSource
	ResolveChannel(ctx context.Context, channelID string) (*model.Channel, error)
	ListUploads(ctx context.Context, ch *model.Channel, maxResults int64) ([]model.Video, error)
	VideoDetails(ctx context.Context, ids []string) ([]model.Video, error)
}

var (
	channelIDRe      = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
	channelPathRe    = regexp.MustCompile(`/channel/(UC[A-Za-z0-9_-]{22})`)
	channelURLPrefix = `"https://www.youtube.com/channel/`
)

var youtubeHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
}

// InsightOptions tunes one InsightService.
type InsightOptions struct {
	UploadsMaxResults int64
	Timeout           time.Duration
}

// InsightService runs the channel-insight pipeline: resolve the channel, drop
// Shorts, inspect recent uploads for ads, sample comments for commenter
// demographics and assemble the report.
type InsightService struct {
	meta     MetadataAPI
	pages    PageSource
	detector *Detector
	resolver *AuthorResolver
	pool     *Pool
	opts     InsightOptions
	log      zerolog.Logger
}

// NewInsightService wires the pipeline. pages and pool are shared process-wide.
func NewInsightService(meta MetadataAPI, pages PageSource, pool *Pool, opts InsightOptions, log zerolog.Logger) *InsightService {
	if opts.UploadsMaxResults <= 0 {
		opts.UploadsMaxResults = 50
	}
	detector := NewDetector(pages)
	return &InsightService{
		meta:     meta,
		pages:    pages,
		detector: detector,
		resolver: NewAuthorResolver(meta, detector, pool, log),
		pool:     pool,
		opts:     opts,
		log:      log,
	}
}

// Analyze builds the report for a channel id or channel URL. Only failures to
// resolve the channel or list its videos abort; per-video and per-author
// failures are skipped and a failed demographic stage leaves the report
// without demographics.
func (s *InsightService) Analyze(ctx context.Context, input string) (*model.Report, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	report, err := s.analyze(ctx, input)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	analyzeDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return report, err
}

func (s *InsightService) analyze(ctx context.Context, input string) (*model.Report, error) {
	channelID, err := s.ResolveChannelID(ctx, input)
	if err != nil {
		return nil, err
	}
	log := s.log.With().Str("channel_id", channelID).Logger()

	ch, err := s.meta.ResolveChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("resolve channel %s: %w", channelID, err)
	}

	uploads, err := s.meta.ListUploads(ctx, ch, s.opts.UploadsMaxResults)
	if err != nil {
		return nil, fmt.Errorf("list uploads for %s: %w", channelID, err)
	}

	longForm, shorts := s.dropShorts(ctx, uploads, log)
	recent := LatestVideos(longForm, MaxRecentVideos)

	var details []model.Video
	if len(recent) > 0 {
		details, err = s.meta.VideoDetails(ctx, videoIDs(recent))
		if err != nil {
			return nil, fmt.Errorf("video details for %s: %w", channelID, err)
		}
	}

	adFlags := s.detectAds(ctx, recent, log)

	var ratio Result[float64]
	if r, err := ViewsToSubscriberRatio(viewCounts(details), ch.SubscriberCount); err != nil {
		ratio = Fail[float64](err)
	} else {
		ratio = Ok(r)
	}

	profiles := s.resolver.Resolve(ctx, SampleVideos(recent))
	demographics := AggregateDemographics(profiles, ratio)
	if !demographics.OK() {
		demographicFailures.Inc()
		log.Warn().Err(demographics.Err).Int("authors", len(profiles)).Msg("insight: demographics unavailable")
	}

	report := AssembleReport(ReportInput{
		Channel:      ch,
		Uploads:      len(uploads),
		Shorts:       shorts,
		Recent:       recent,
		Details:      details,
		AdFlags:      adFlags,
		Ratio:        ratio,
		Demographics: demographics,
	})

	log.Info().
		Int("uploads", len(uploads)).
		Int("shorts", shorts).
		Int("recent", len(recent)).
		Int("authors", len(profiles)).
		Bool("demographics", report.Demographics != nil).
		Msg("insight: report assembled")
	return report, nil
}

// dropShorts flags every upload and returns the non-short ones in order.
// An upload whose short page cannot be fetched is kept as long-form.
func (s *InsightService) dropShorts(ctx context.Context, uploads []model.Video, log zerolog.Logger) ([]model.Video, int) {
	flags := Map(ctx, s.pool, uploads, func(ctx context.Context, v model.Video) (bool, error) {
		return s.detector.IsShort(ctx, v.ID)
	})

	kept := make([]model.Video, 0, len(uploads))
	shorts := 0
	for i, f := range flags {
		v := uploads[i]
		if !f.OK() {
			log.Warn().Err(f.Err).Str("video_id", v.ID).Msg("insight: short check failed, treating as long-form")
		}
		v.IsShort = f.Value
		if v.IsShort {
			shorts++
			continue
		}
		kept = append(kept, v)
	}
	return kept, shorts
}

// detectAds returns ad flags positionally with videos. A fetch failure counts
// as no ad.
func (s *InsightService) detectAds(ctx context.Context, videos []model.Video, log zerolog.Logger) []bool {
	results := Map(ctx, s.pool, videos, func(ctx context.Context, v model.Video) (bool, error) {
		return s.detector.HasAd(ctx, v.ID)
	})
	flags := make([]bool, len(results))
	for i, r := range results {
		if !r.OK() {
			log.Warn().Err(r.Err).Str("video_id", videos[i].ID).Msg("insight: ad check failed")
			continue
		}
		flags[i] = r.Value
	}
	return flags
}

// ResolveChannelID accepts a channel id, a /channel/ URL, an @handle or any
// youtube.com channel URL. Handles and custom URLs are resolved by reading the
// channel page.
func (s *InsightService) ResolveChannelID(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidInput)
	}
	if channelIDRe.MatchString(input) {
		return input, nil
	}
	if m := channelPathRe.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}

	pageURL, err := channelPageURL(input)
	if err != nil {
		return "", err
	}

	page, err := s.pages.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch channel page: %w", err)
	}

	id, ok := ChannelIDFromPage(page)
	if !ok {
		return "", fmt.Errorf("%w: no channel id in %s", ErrChannelNotFound, pageURL)
	}
	return id, nil
}

// channelPageURL normalizes a handle or URL and rejects non-YouTube hosts.
func channelPageURL(input string) (string, error) {
	if strings.HasPrefix(input, "@") {
		return "https://www.youtube.com/" + url.PathEscape(input), nil
	}
	if !strings.Contains(input, "://") {
		input = "https://" + input
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !youtubeHosts[strings.ToLower(u.Hostname())] {
		return "", fmt.Errorf("%w: %q is not a YouTube channel URL", ErrInvalidInput, u.Hostname())
	}
	u.Scheme = "https"
	u.Host = "www.youtube.com"
	return u.String(), nil
}

// ChannelIDFromPage reads the channel id from a channel page's metadata,
// falling back to the first /channel/ link in the raw markup.
func ChannelIDFromPage(page string) (string, bool) {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(page)); err == nil {
		if id, ok := doc.Find(`meta[itemprop="identifier"]`).Attr("content"); ok && channelIDRe.MatchString(id) {
			return id, true
		}
		if id, ok := doc.Find(`meta[itemprop="channelId"]`).Attr("content"); ok && channelIDRe.MatchString(id) {
			return id, true
		}
		if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
			if m := channelPathRe.FindStringSubmatch(href); m != nil {
				return m[1], true
			}
		}
	}

	rest, ok := lexicon.Between(page, channelURLPrefix, `"`)
	if !ok || len(rest) < 24 {
		return "", false
	}
	id := rest[:24]
	return id, channelIDRe.MatchString(id)
}

func videoIDs(videos []model.Video) []string {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids
}

func viewCounts(videos []model.Video) []int64 {
	views := make([]int64, len(videos))
	for i, v := range videos {
		views[i] = v.ViewCount
	}
	return views
}

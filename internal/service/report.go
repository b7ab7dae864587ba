package service

import "github.com/mathieu-neron/channel-insight/internal/model"

// AdCounts are the ad-presence tallies over three windows of recent videos.
type AdCounts struct {
	First     int
	FirstFive int
	Overall   int
}

// CountAds counts true flags in the first video, the first five, and overall.
func CountAds(flags []bool) AdCounts {
	var c AdCounts
	for i, hasAd := range flags {
		if !hasAd {
			continue
		}
		if i < 1 {
			c.First++
		}
		if i < 5 {
			c.FirstFive++
		}
		c.Overall++
	}
	return c
}

// ViewsToSubscriberRatio is the truncated mean view count divided by the
// subscriber count.
func ViewsToSubscriberRatio(views []int64, subscribers int64) (float64, error) {
	if len(views) == 0 {
		return 0, ErrNoViews
	}
	if subscribers <= 0 {
		return 0, ErrNoSubscribers
	}
	var total int64
	for _, v := range views {
		total += v
	}
	mean := total / int64(len(views))
	return float64(mean) / float64(subscribers), nil
}

// ReportInput gathers everything the assembler merges.
type ReportInput struct {
	Channel      *model.Channel
	Uploads      int
	Shorts       int
	Recent       []model.Video // non-short, newest first
	Details      []model.Video // Data API details for Recent
	AdFlags      []bool        // positional with Recent
	Ratio        Result[float64]
	Demographics Result[model.Demographics]
}

// AssembleReport merges the pipeline outputs into one report.
func AssembleReport(in ReportInput) *model.Report {
	byID := make(map[string]model.Video, len(in.Details))
	for _, d := range in.Details {
		byID[d.ID] = d
	}

	videos := make([]model.Video, 0, len(in.Recent))
	links := make([]string, 0, min(len(in.Recent), MaxReportLinks))
	for i, v := range in.Recent {
		if d, ok := byID[v.ID]; ok {
			v = d
		}
		v.IsShort = false
		v.HasAd = i < len(in.AdFlags) && in.AdFlags[i]
		videos = append(videos, v)
		if i < MaxReportLinks {
			links = append(links, model.WatchURL(v.ID))
		}
	}

	ads := CountAds(in.AdFlags)
	r := &model.Report{
		ID:               in.Channel.ID,
		Title:            in.Channel.Title,
		Country:          in.Channel.Country,
		PublishedAt:      in.Channel.PublishedAt,
		SubscriberCount:  in.Channel.SubscriberCount,
		ViewCount:        in.Channel.ViewCount,
		VideoCount:       in.Channel.VideoCount,
		Videos:           videos,
		VideoLinks:       links,
		ShortCount:       in.Shorts,
		UploadsInspected: in.Uploads,
		FirstAdCount:     ads.First,
		FirstFiveAdCount: ads.FirstFive,
		OverallAdCount:   ads.Overall,
	}

	if in.Ratio.OK() {
		ratio := in.Ratio.Value
		r.ViewsToSubRatio = &ratio
	}

	if in.Demographics.OK() {
		d := in.Demographics.Value
		r.Demographics = &d
	} else if in.Demographics.Err != nil {
		r.DemographicsError = in.Demographics.Err.Error()
	}

	return r
}

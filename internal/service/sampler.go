package service

import "github.com/mathieu-neron/channel-insight/internal/model"

// MaxRecentVideos is how many non-short uploads are inspected.
const MaxRecentVideos = 5

// MaxReportLinks caps the video links in a report.
const MaxReportLinks = 15

// sampleTable picks which recent videos have their comments read, by list
// length. Empirical spread over the recent uploads; kept as-is for report
// compatibility. Indices past the end are dropped.
var sampleTable = []struct {
	minLen  int
	indices []int
}{
	{5, []int{1, 3, 5}},
	{3, []int{1, 3, 4}},
	{2, []int{1, 2, 3}},
	{1, []int{1, 2}},
}

// LatestVideos returns the first n videos. Upload playlists list newest first.
func LatestVideos(videos []model.Video, n int) []model.Video {
	if len(videos) <= n {
		return videos
	}
	return videos[:n]
}

// SampleIndices returns the positions to sample from a list of length n.
// Every returned index is < n.
func SampleIndices(n int) []int {
	candidates := []int{1}
	for _, row := range sampleTable {
		if n >= row.minLen {
			candidates = row.indices
			break
		}
	}
	out := make([]int, 0, len(candidates))
	for _, i := range candidates {
		if i < n {
			out = append(out, i)
		}
	}
	return out
}

// SampleVideos selects the comment-sampling subset of videos.
func SampleVideos(videos []model.Video) []model.Video {
	idx := SampleIndices(len(videos))
	out := make([]model.Video, 0, len(idx))
	for _, i := range idx {
		out = append(out, videos[i])
	}
	return out
}

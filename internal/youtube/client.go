// Package youtube adapts the YouTube Data API v3 to the metadata the insight
// pipeline reads: channel statistics, the uploads playlist, per-video
// statistics and top-level comment threads.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/mathieu-neron/channel-insight/internal/model"
	"github.com/mathieu-neron/channel-insight/internal/service"
)

const (
	maxIDsPerCall     = 50
	commentsPerThread = 100
	defaultMaxRetries = 3
	defaultMaxElapsed = 20 * time.Second
)

// Client wraps a Data API service. It implements service.MetadataAPI.
type Client struct {
	svc        *yt.Service
	maxRetries uint
	log        zerolog.Logger
}

// New creates a client authenticated with an API key. Extra options are
// passed through to the generated service (endpoint overrides in tests).
func New(ctx context.Context, apiKey string, log zerolog.Logger, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("youtube: API key is required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}
	return &Client{svc: svc, maxRetries: defaultMaxRetries, log: log}, nil
}

// ResolveChannel loads a channel's snippet, statistics and uploads playlist.
func (c *Client) ResolveChannel(ctx context.Context, channelID string) (*model.Channel, error) {
	res, err := call(ctx, c, "channels.list", func() (*yt.ChannelListResponse, error) {
		return c.svc.Channels.List([]string{"snippet", "statistics", "contentDetails"}).
			Id(channelID).Context(ctx).Do()
	})
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %s", service.ErrChannelNotFound, channelID)
	}
	if err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", service.ErrChannelNotFound, channelID)
	}
	return channelFromAPI(res.Items[0]), nil
}

// ListUploads returns up to maxResults uploads, newest first.
func (c *Client) ListUploads(ctx context.Context, ch *model.Channel, maxResults int64) ([]model.Video, error) {
	if ch.UploadsPlaylistID == "" {
		return nil, nil
	}
	res, err := call(ctx, c, "playlistItems.list", func() (*yt.PlaylistItemListResponse, error) {
		return c.svc.PlaylistItems.List([]string{"contentDetails", "snippet"}).
			PlaylistId(ch.UploadsPlaylistID).MaxResults(maxResults).Context(ctx).Do()
	})
	if isNotFound(err) {
		// Channels without public uploads have no playlist.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	videos := make([]model.Video, 0, len(res.Items))
	for _, item := range res.Items {
		if v, ok := uploadFromAPI(item); ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// VideoDetails loads statistics for ids in batches the API accepts.
func (c *Client) VideoDetails(ctx context.Context, ids []string) ([]model.Video, error) {
	videos := make([]model.Video, 0, len(ids))
	for start := 0; start < len(ids); start += maxIDsPerCall {
		batch := ids[start:min(start+maxIDsPerCall, len(ids))]
		res, err := call(ctx, c, "videos.list", func() (*yt.VideoListResponse, error) {
			return c.svc.Videos.List([]string{"snippet", "contentDetails", "statistics", "status"}).
				Id(batch...).Context(ctx).Do()
		})
		if err != nil {
			return nil, err
		}
		for _, item := range res.Items {
			videos = append(videos, videoFromAPI(item))
		}
	}
	return videos, nil
}

// CommentThread returns the most relevant top-level comments of a video.
// Videos with comments disabled return a 403 error.
func (c *Client) CommentThread(ctx context.Context, videoID string) ([]model.Comment, error) {
	res, err := call(ctx, c, "commentThreads.list", func() (*yt.CommentThreadListResponse, error) {
		return c.svc.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).Order("relevance").MaxResults(commentsPerThread).
			TextFormat("plainText").Context(ctx).Do()
	})
	if err != nil {
		return nil, err
	}
	comments := make([]model.Comment, 0, len(res.Items))
	for _, thread := range res.Items {
		if cm, ok := commentFromAPI(videoID, thread); ok {
			comments = append(comments, cm)
		}
	}
	return comments, nil
}

// call retries rate-limit and server failures. Other errors are returned at
// once.
func call[T any](ctx context.Context, c *Client, op string, fn func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			switch {
			case gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500:
				return v, fmt.Errorf("youtube %s: %w", op, err)
			}
		}
		if ctx.Err() != nil {
			return v, backoff.Permanent(ctx.Err())
		}
		return v, backoff.Permanent(fmt.Errorf("youtube %s: %w", op, err))
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxRetries+1),
		backoff.WithMaxElapsedTime(defaultMaxElapsed),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.log.Warn().Err(err).Str("op", op).Dur("retry_in", wait).Msg("youtube: retrying")
		}),
	)
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

func channelFromAPI(item *yt.Channel) *model.Channel {
	ch := &model.Channel{ID: item.Id}
	if s := item.Snippet; s != nil {
		ch.Title = s.Title
		ch.Description = s.Description
		ch.Country = s.Country
		ch.PublishedAt = s.PublishedAt
	}
	if st := item.Statistics; st != nil {
		if !st.HiddenSubscriberCount {
			ch.SubscriberCount = int64(st.SubscriberCount)
		}
		ch.ViewCount = int64(st.ViewCount)
		ch.VideoCount = int64(st.VideoCount)
	}
	if cd := item.ContentDetails; cd != nil && cd.RelatedPlaylists != nil {
		ch.UploadsPlaylistID = cd.RelatedPlaylists.Uploads
	}
	return ch
}

func uploadFromAPI(item *yt.PlaylistItem) (model.Video, bool) {
	if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
		return model.Video{}, false
	}
	v := model.Video{
		ID:          item.ContentDetails.VideoId,
		PublishedAt: item.ContentDetails.VideoPublishedAt,
	}
	if s := item.Snippet; s != nil {
		v.Title = s.Title
		if v.PublishedAt == "" {
			v.PublishedAt = s.PublishedAt
		}
	}
	return v, true
}

func videoFromAPI(item *yt.Video) model.Video {
	v := model.Video{ID: item.Id}
	if s := item.Snippet; s != nil {
		v.Title = s.Title
		v.Description = s.Description
		v.PublishedAt = s.PublishedAt
	}
	if cd := item.ContentDetails; cd != nil {
		v.Duration = cd.Duration
	}
	if st := item.Statistics; st != nil {
		v.ViewCount = int64(st.ViewCount)
		v.LikeCount = int64(st.LikeCount)
		v.CommentCount = int64(st.CommentCount)
	}
	if status := item.Status; status != nil {
		v.MadeForKids = status.MadeForKids
	}
	return v
}

func commentFromAPI(videoID string, thread *yt.CommentThread) (model.Comment, bool) {
	if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
		return model.Comment{}, false
	}
	s := thread.Snippet.TopLevelComment.Snippet
	if s.AuthorChannelId == nil || s.AuthorChannelId.Value == "" {
		return model.Comment{}, false
	}
	return model.Comment{
		ID:                thread.Id,
		VideoID:           videoID,
		AuthorChannelID:   s.AuthorChannelId.Value,
		AuthorDisplayName: s.AuthorDisplayName,
	}, true
}

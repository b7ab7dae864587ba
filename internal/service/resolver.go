package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

// CommentSource returns the top-level comments of a video.
type CommentSource interface {
	CommentThread(ctx context.Context, videoID string) ([]model.Comment, error)
}

// ProfileSource resolves a commenter's public profile.
type ProfileSource interface {
	AuthorProfile(ctx context.Context, channelID string) (model.AuthorProfile, error)
}

// AuthorResolver turns sampled videos into the profiles of their unique
// commenters.
type AuthorResolver struct {
	comments CommentSource
	profiles ProfileSource
	pool     *Pool
	log      zerolog.Logger
}

func NewAuthorResolver(comments CommentSource, profiles ProfileSource, pool *Pool, log zerolog.Logger) *AuthorResolver {
	return &AuthorResolver{comments: comments, profiles: profiles, pool: pool, log: log}
}

// Resolve fetches comment threads for videos, deduplicates commenters and
// resolves each unique commenter once. Videos whose comments cannot be read
// and authors whose profile cannot be extracted are logged and skipped.
func (r *AuthorResolver) Resolve(ctx context.Context, videos []model.Video) []model.AuthorProfile {
	threads := Map(ctx, r.pool, videos, func(ctx context.Context, v model.Video) ([]model.Comment, error) {
		return r.comments.CommentThread(ctx, v.ID)
	})

	var comments []model.Comment
	for i, t := range threads {
		if !t.OK() {
			r.log.Warn().Err(t.Err).Str("video_id", videos[i].ID).Msg("resolver: comment thread unavailable")
			continue
		}
		comments = append(comments, t.Value...)
	}

	authors := UniqueAuthors(comments)
	results := Map(ctx, r.pool, authors, r.profiles.AuthorProfile)
	for i, res := range results {
		if !res.OK() {
			r.log.Warn().Err(res.Err).Str("author_id", authors[i]).Msg("resolver: author profile unavailable")
		}
	}

	profiles := Present(results)
	r.log.Debug().
		Int("videos", len(videos)).
		Int("comments", len(comments)).
		Int("authors", len(authors)).
		Int("resolved", len(profiles)).
		Msg("resolver: authors resolved")
	return profiles
}

// UniqueAuthors returns the distinct non-empty author ids in first-seen order.
func UniqueAuthors(comments []model.Comment) []string {
	seen := make(map[string]struct{}, len(comments))
	var out []string
	for _, c := range comments {
		if c.AuthorChannelID == "" {
			continue
		}
		if _, ok := seen[c.AuthorChannelID]; ok {
			continue
		}
		seen[c.AuthorChannelID] = struct{}{}
		out = append(out, c.AuthorChannelID)
	}
	return out
}

package model

import "fmt"

// Video is one uploaded item. Uploads listed from a playlist carry only ID and
// PublishedAt until details are fetched.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	Duration     string `json:"duration,omitempty"`
	ViewCount    int64  `json:"viewCount"`
	LikeCount    int64  `json:"likeCount"`
	CommentCount int64  `json:"commentCount"`
	MadeForKids  bool   `json:"madeForKids"`
	IsShort      bool   `json:"isShort"`
	HasAd        bool   `json:"hasAd"`
}

// WatchURL returns the canonical watch-page link for a video id.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

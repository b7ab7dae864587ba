package service

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid channel input")
	ErrChannelNotFound     = errors.New("channel not found")
	ErrExtraction          = errors.New("expected marker not found in page")
	ErrNoClassifiedAuthors = errors.New("no commenter could be classified by gender")
	ErrNoViews             = errors.New("no video views to average")
	ErrNoSubscribers       = errors.New("channel has no public subscriber count")
)

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

var errFakeFetch = errors.New("fake fetch failed")

// fakePages serves canned pages by URL. Unknown URLs return an empty page.
type fakePages struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls map[string]int
}

func newFakePages() *fakePages {
	return &fakePages{
		pages: make(map[string]string),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakePages) Get(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	return f.pages[url], nil
}

func (f *fakePages) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// fakeGateway implements fetch.Gateway for PageCache tests.
type fakeGateway struct {
	calls   atomic.Int32
	release chan struct{}
	fail    atomic.Bool
}

func (g *fakeGateway) Fetch(ctx context.Context, url string) (string, error) {
	g.calls.Add(1)
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.fail.Load() {
		return "", errFakeFetch
	}
	return "page:" + url, nil
}

// fakeMeta implements MetadataAPI from in-memory fixtures.
type fakeMeta struct {
	channel    *model.Channel
	uploads    []model.Video
	views      int64
	threads    map[string][]model.Comment
	threadErrs map[string]error
	channelErr error
}

func (m *fakeMeta) ResolveChannel(_ context.Context, id string) (*model.Channel, error) {
	if m.channelErr != nil {
		return nil, m.channelErr
	}
	ch := *m.channel
	ch.ID = id
	return &ch, nil
}

func (m *fakeMeta) ListUploads(_ context.Context, _ *model.Channel, maxResults int64) ([]model.Video, error) {
	if int64(len(m.uploads)) > maxResults {
		return m.uploads[:maxResults], nil
	}
	return m.uploads, nil
}

func (m *fakeMeta) VideoDetails(_ context.Context, ids []string) ([]model.Video, error) {
	out := make([]model.Video, len(ids))
	for i, id := range ids {
		out[i] = model.Video{ID: id, Title: "details " + id, ViewCount: m.views}
	}
	return out, nil
}

func (m *fakeMeta) CommentThread(_ context.Context, videoID string) ([]model.Comment, error) {
	if err := m.threadErrs[videoID]; err != nil {
		return nil, err
	}
	return m.threads[videoID], nil
}

// aboutPage renders the parts of a channel about page the extractor reads.
func aboutPage(channelID, name, joined string) string {
	return fmt.Sprintf(`{"channelId":"%s", "name": "%s", "canonical":"x"} {"joinedDateText": {"content": "Joined %s","styleRuns":[]}}`,
		channelID, name, joined)
}

func videos(ids ...string) []model.Video {
	out := make([]model.Video, len(ids))
	for i, id := range ids {
		out[i] = model.Video{ID: id}
	}
	return out
}

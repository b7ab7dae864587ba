package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCache_HitSkipsGateway(t *testing.T) {
	gw := &fakeGateway{}
	cache := NewPageCache(gw, 10, time.Minute, nil, zerolog.Nop())

	for i := 0; i < 3; i++ {
		page, err := cache.Get(context.Background(), "https://example.test/a")
		require.NoError(t, err)
		assert.Equal(t, "page:https://example.test/a", page)
	}
	assert.Equal(t, int32(1), gw.calls.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestPageCache_ErrorsAreNotCached(t *testing.T) {
	gw := &fakeGateway{}
	gw.fail.Store(true)
	cache := NewPageCache(gw, 10, time.Minute, nil, zerolog.Nop())

	_, err := cache.Get(context.Background(), "u")
	require.ErrorIs(t, err, errFakeFetch)

	gw.fail.Store(false)
	page, err := cache.Get(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "page:u", page)
	assert.Equal(t, int32(2), gw.calls.Load())
}

func TestPageCache_ConcurrentMissesShareOneFetch(t *testing.T) {
	gw := &fakeGateway{release: make(chan struct{})}
	cache := NewPageCache(gw, 10, time.Minute, nil, zerolog.Nop())

	const callers = 8
	var wg sync.WaitGroup
	pages := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pages[i], errs[i] = cache.Get(context.Background(), "shared")
		}()
	}

	require.Eventually(t, func() bool { return gw.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gw.release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "page:shared", pages[i])
	}
	assert.Equal(t, int32(1), gw.calls.Load())
}

func TestPageCache_WaiterCancellationDoesNotFailOthers(t *testing.T) {
	gw := &fakeGateway{release: make(chan struct{})}
	cache := NewPageCache(gw, 10, time.Minute, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, "slow")
		done <- err
	}()
	require.Eventually(t, func() bool { return gw.calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(gw.release)
	page, err := cache.Get(context.Background(), "slow")
	require.NoError(t, err)
	assert.Equal(t, "page:slow", page)
	assert.Equal(t, int32(1), gw.calls.Load())
}

func TestPageCache_EntriesExpire(t *testing.T) {
	gw := &fakeGateway{}
	cache := NewPageCache(gw, 10, 30*time.Millisecond, nil, zerolog.Nop())

	_, err := cache.Get(context.Background(), "u")
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = cache.Get(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, int32(2), gw.calls.Load())
}

func TestPageCache_EvictsLeastRecentlyUsed(t *testing.T) {
	gw := &fakeGateway{}
	cache := NewPageCache(gw, 2, time.Minute, nil, zerolog.Nop())
	ctx := context.Background()

	for _, u := range []string{"a", "b", "c", "a"} {
		_, err := cache.Get(ctx, u)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(4), gw.calls.Load())
	assert.Equal(t, 2, cache.Len())
}

func TestPageCache_CloseWithoutRedis(t *testing.T) {
	cache := NewPageCache(&fakeGateway{}, 0, 0, nil, zerolog.Nop())
	assert.Nil(t, cache.Client())
	assert.NoError(t, cache.Close())
}

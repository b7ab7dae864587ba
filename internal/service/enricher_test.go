package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesInputOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	results := Map(context.Background(), NewPool(3), items, func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10, nil
	})

	require.Len(t, results, len(items))
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, items[i]*10, r.Value)
	}
}

func TestMap_FailureIsIsolated(t *testing.T) {
	boom := errors.New("boom")
	results := Map(context.Background(), NewPool(2), []string{"a", "bad", "c"}, func(_ context.Context, s string) (string, error) {
		if s == "bad" {
			return "", boom
		}
		return s + s, nil
	})

	assert.Equal(t, "aa", results[0].Value)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "cc", results[2].Value)
	assert.Equal(t, []string{"aa", "cc"}, Present(results))
}

func TestMap_PanicBecomesError(t *testing.T) {
	results := Map(context.Background(), NewPool(2), []int{1, 2}, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			panic("bad input")
		}
		return n, nil
	})

	assert.True(t, results[0].OK())
	assert.ErrorIs(t, results[1].Err, ErrItemPanic)
}

func TestMap_RespectsPoolSize(t *testing.T) {
	pool := NewPool(2)
	var running, peak atomic.Int32

	items := make([]int, 10)
	Map(context.Background(), pool, items, func(_ context.Context, _ int) (struct{}, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 2, pool.Size())
}

func TestMap_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := Map(ctx, NewPool(2), []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	assert.Equal(t, int32(0), calls.Load())
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestMap_Empty(t *testing.T) {
	results := Map(context.Background(), NewPool(1), []int(nil), func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	assert.Empty(t, results)
}

func TestNewPool_MinimumOne(t *testing.T) {
	assert.Equal(t, 1, NewPool(0).Size())
	assert.Equal(t, 1, NewPool(-3).Size())
}

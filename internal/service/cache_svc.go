package service

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mathieu-neron/channel-insight/internal/fetch"
	"github.com/mathieu-neron/channel-insight/pkg/hash"
)

// Page cache defaults: one hour, one hundred pages.
const (
	DefaultPageCacheTTL  = time.Hour
	DefaultPageCacheSize = 100
)

// PageCache memoizes fetched pages by URL in front of a fetch.Gateway.
// L1 is an in-process LRU with TTL; L2 is an optional Redis. Concurrent misses
// for the same URL share one gateway call. Gateway errors are returned as-is
// and never cached.
type PageCache struct {
	gateway fetch.Gateway
	l1      *expirable.LRU[string, string]
	rdb     *redis.Client
	ttl     time.Duration
	flights singleflight.Group
	log     zerolog.Logger
}

// NewPageCache builds a cache. rdb may be nil to run memory-only.
func NewPageCache(gateway fetch.Gateway, size int, ttl time.Duration, rdb *redis.Client, log zerolog.Logger) *PageCache {
	if size <= 0 {
		size = DefaultPageCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}
	return &PageCache{
		gateway: gateway,
		l1:      expirable.NewLRU[string, string](size, nil, ttl),
		rdb:     rdb,
		ttl:     ttl,
		log:     log,
	}
}

// ConnectRedis returns a Redis client for the page cache L2, or nil when the
// URL is empty, invalid or unreachable (the cache then runs memory-only).
func ConnectRedis(redisURL string, log zerolog.Logger) *redis.Client {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, page cache L2 disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, page cache L2 disabled")
		return nil
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, page cache L2 disabled")
		_ = rdb.Close()
		return nil
	}

	log.Info().Str("addr", opts.Addr).Msg("redis: connected, page cache L2 enabled")
	return rdb
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *PageCache) Client() *redis.Client {
	return c.rdb
}

// Len returns the number of pages held in memory.
func (c *PageCache) Len() int {
	return c.l1.Len()
}

// Get returns the page at url, fetching it through the gateway on a miss.
func (c *PageCache) Get(ctx context.Context, url string) (string, error) {
	if page, ok := c.l1.Get(url); ok {
		pageCacheHits.Inc()
		return page, nil
	}

	// The flight outlives any single waiter; each waiter honors its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(url, func() (any, error) {
		return c.load(flightCtx, url)
	})

	select {
	case res := <-ch:
		if res.Shared {
			pageCacheShared.Inc()
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *PageCache) load(ctx context.Context, url string) (string, error) {
	// A flight that finished just before this one started may have filled L1.
	if page, ok := c.l1.Get(url); ok {
		pageCacheHits.Inc()
		return page, nil
	}

	if c.rdb != nil {
		page, err := c.rdb.Get(ctx, hash.PageKey(url)).Result()
		switch {
		case err == nil:
			pageCacheHits.Inc()
			c.l1.Add(url, page)
			return page, nil
		case !errors.Is(err, redis.Nil):
			c.log.Debug().Err(err).Msg("page cache: redis get failed")
		}
	}

	pageCacheMisses.Inc()
	page, err := c.gateway.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	c.l1.Add(url, page)
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, hash.PageKey(url), page, c.ttl).Err(); err != nil {
			c.log.Debug().Err(err).Msg("page cache: redis set failed")
		}
	}
	return page, nil
}

// Close shuts down the Redis connection.
func (c *PageCache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

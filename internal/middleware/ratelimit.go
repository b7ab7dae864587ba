package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the limit for a route or group.
type RateLimitConfig struct {
	Max    int                      // requests allowed per Window, also the burst
	Window time.Duration            // refill period for Max tokens
	KeyFn  func(c fiber.Ctx) string // key to rate limit on
}

// maxTrackedKeys bounds the limiter table; idle keys also expire after a window.
const maxTrackedKeys = 10000

// RateLimiter keeps one token bucket per key.
type RateLimiter struct {
	config  RateLimitConfig
	every   rate.Limit
	buckets *expirable.LRU[string, *rate.Limiter]
}

// NewRateLimiter creates a rate limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	cfg.Max = max(cfg.Max, 1)
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &RateLimiter{
		config:  cfg,
		every:   rate.Every(cfg.Window / time.Duration(cfg.Max)),
		buckets: expirable.NewLRU[string, *rate.Limiter](maxTrackedKeys, nil, cfg.Window),
	}
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	if b, ok := rl.buckets.Get(key); ok {
		return b
	}
	b := rate.NewLimiter(rl.every, rl.config.Max)
	rl.buckets.Add(key, b)
	return b
}

// Allow reports whether a request with the given key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucket(key).Allow()
}

// Handler returns a Fiber middleware that enforces the rate limit.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		b := rl.bucket(rl.config.KeyFn(c))
		allowed := b.Allow()
		remaining := int(math.Max(0, math.Floor(b.Tokens())))

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			retryAfter := int(math.Ceil(rl.config.Window.Seconds() / float64(rl.config.Max)))
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fiber.Map{
					"code":       "RATE_LIMITED",
					"message":    "Too many requests. Try again in " + strconv.Itoa(retryAfter) + " seconds.",
					"retryAfter": retryAfter,
				},
			})
		}
		return c.Next()
	}
}

// KeyByIP returns the client IP as the rate limit key.
func KeyByIP(c fiber.Ctx) string {
	return "ip:" + c.IP()
}

// NewInsightRateLimiter limits report requests per IP. Each report fans out
// to dozens of page fetches, so the default is low.
func NewInsightRateLimiter(perMinute int) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    perMinute,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})
}

// Package fetch is the outbound page transport used by the insight pipeline.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps a single page read. Watch pages are ~1-2 MB.
const maxBodyBytes = 8 << 20

// Gateway fetches raw page content by URL.
type Gateway interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// Options configures an HTTPGateway.
type Options struct {
	Timeout       time.Duration
	RatePerSecond float64
	MaxRetries    int // retries after the first attempt
	UserAgent     string
}

// HTTPGateway fetches pages over HTTP with a shared rate limit and
// exponential-backoff retries on transient failures.
type HTTPGateway struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    Options
	log     zerolog.Logger
}

func NewHTTPGateway(opts Options, log zerolog.Logger) *HTTPGateway {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	opts.MaxRetries = max(opts.MaxRetries, 0)
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	}
	limit := rate.Inf
	burst := 1
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
		burst = max(int(opts.RatePerSecond), 1)
	}

	return &HTTPGateway{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter: rate.NewLimiter(limit, burst),
		opts:    opts,
		log:     log,
	}
}

// Fetch returns the body of url as a string.
func (g *HTTPGateway) Fetch(ctx context.Context, url string) (string, error) {
	operation := func() (string, error) {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", g.opts.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		// Skips the EU consent interstitial.
		req.Header.Set("Cookie", "CONSENT=YES+cb; SOCS=CAI")

		resp, err := g.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := &StatusError{URL: url, StatusCode: resp.StatusCode}
			if isRetryableStatus(resp.StatusCode) {
				return "", statusErr
			}
			return "", backoff.Permanent(statusErr)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return "", err
		}
		return string(body), nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(g.opts.MaxRetries)+1),
		backoff.WithMaxElapsedTime(2*g.opts.Timeout),
		backoff.WithNotify(func(err error, wait time.Duration) {
			g.log.Debug().Err(err).Str("url", url).Dur("wait", wait).Msg("fetch: retrying")
		}),
	)
	if err != nil {
		fetchesTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("fetch %s: %w", url, unwrapPermanent(err))
	}
	fetchesTotal.WithLabelValues("ok").Inc()
	return body, nil
}

func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	return err
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

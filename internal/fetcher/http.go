// Package fetcher downloads and parses data from the vendor's HTTP endpoints
// and local CSV/XLSX sources.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// retryStatuses is the set of transient status codes worth another attempt.
// Everything else propagates to the caller immediately.
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:    true, // 429
	http.StatusBadGateway:         true, // 502
	http.StatusServiceUnavailable: true, // 503
	http.StatusGatewayTimeout:     true, // 504
}

// StatusError is returned for non-2xx responses that are not retried. It
// carries the status code and a snippet of the body so callers can apply
// their own soft-failure policy.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.Code, e.URL)
}

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent       string
	Timeout         time.Duration // metadata and page calls
	DownloadTimeout time.Duration // binary downloads
	MaxRetries      int
	RateLimiters    map[string]*rate.Limiter
}

// Fetcher issues GET requests with a fixed identity header set and bounded
// retry on transient server and rate-limit errors.
type Fetcher struct {
	client   *http.Client
	download *http.Client
	opts     Options
	limiters map[string]*rate.Limiter
}

// New creates a Fetcher with the given options.
func New(opts Options) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.DownloadTimeout == 0 {
		opts.DownloadTimeout = 2 * time.Minute
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0"
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Fetcher{
		client:   &http.Client{Timeout: opts.Timeout, Transport: transport},
		download: &http.Client{Timeout: opts.DownloadTimeout, Transport: transport},
		opts:     opts,
		limiters: limiters,
	}
}

func (f *Fetcher) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rate.NewLimiter(20, 20)
	}
	if lim, ok := f.limiters[u.Host]; ok {
		return lim
	}
	return rate.NewLimiter(20, 20)
}

func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/json")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
}

// Get issues a GET with the retry policy and returns the response on any 2xx.
// Non-2xx statuses outside the transient set return a *StatusError without
// retrying. The caller owns the response body.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	return f.get(ctx, rawURL, f.client)
}

// GetStream behaves like Get but uses the longer download timeout.
func (f *Fetcher) GetStream(ctx context.Context, rawURL string) (*http.Response, error) {
	return f.get(ctx, rawURL, f.download)
}

func (f *Fetcher) get(ctx context.Context, rawURL string, client *http.Client) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	f.setHeaders(req)

	var lastErr error
	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		lim := f.limiterFor(rawURL)
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		cloned := req.Clone(ctx)
		resp, err := client.Do(cloned)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, eris.Wrap(err, "request cancelled")
			}
			zap.L().Warn("http request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		if retryStatuses[resp.StatusCode] {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, rawURL)
			zap.L().Warn("transient status, retrying",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode, URL: rawURL, Body: string(body)}
		}

		return resp, nil
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

// backoff sleeps 0.3s * 2^attempt with jitter, respecting cancellation.
func (f *Fetcher) backoff(ctx context.Context, attempt int) {
	base := 300 * time.Millisecond
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(d)/2 + 1))
	d += jitter

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// GetJSON fetches a URL and decodes the 2xx body as JSON into T.
func GetJSON[T any](ctx context.Context, f *Fetcher, rawURL string) (*T, error) {
	resp, err := f.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	return DecodeJSONObject[T](resp.Body)
}

// GetHTML fetches a URL and returns the 2xx body as a string.
func (f *Fetcher) GetHTML(ctx context.Context, rawURL string) (string, error) {
	resp, err := f.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "read body")
	}
	return string(body), nil
}

// Package fetch retrieves raw meeting artifacts (listing pages, agenda and
// minutes PDFs, images) over HTTP with retry, backoff, and content hashing.
// It performs no persistence; callers decide what to do with fetched bytes.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout is the default per-request HTTP timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; MeetingIngest/1.0)"

// DefaultMaxAttempts bounds retries for transient failures.
const DefaultMaxAttempts = 3

// Result holds the raw content fetched from a URL.
type Result struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Error represents a failure to fetch a URL. Retryable distinguishes
// transient failures (timeouts, 5xx) from permanent ones (4xx, bad URL).
type Error struct {
	URL       string
	Message   string
	Cause     error
	Retryable bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures fetch behavior.
type Options struct {
	Timeout     time.Duration
	UserAgent   string
	MaxAttempts int
	BackoffBase time.Duration
	// RateLimit caps requests per second against the source; zero disables limiting.
	RateLimit float64
}

// DefaultOptions returns sensible defaults for fetching from a government
// meeting portal: bounded retries and a polite request rate.
func DefaultOptions() *Options {
	return &Options{
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxAttempts: DefaultMaxAttempts,
		BackoffBase: 500 * time.Millisecond,
		RateLimit:   2,
	}
}

// Fetcher performs rate-limited HTTP fetches with retry and backoff.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    *Options
}

// NewFetcher creates a Fetcher with the given options.
func NewFetcher(opts *Options) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 500 * time.Millisecond
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return &Fetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: limiter,
		opts:    opts,
	}
}

// Get fetches a single URL, retrying transient failures with exponential
// backoff up to the configured attempt budget. Permanent failures (invalid
// URL, 4xx) return immediately.
func (f *Fetcher) Get(ctx context.Context, urlStr string) (*Result, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	var lastErr error
	for attempt := 0; attempt < f.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := f.opts.BackoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, &Error{URL: urlStr, Message: "canceled during backoff", Cause: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, &Error{URL: urlStr, Message: "canceled waiting for rate limit", Cause: err}
			}
		}

		result, err := f.once(ctx, urlStr)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var fe *Error
		if !errors.As(err, &fe) || !fe.Retryable {
			return result, err
		}
	}
	return nil, lastErr
}

// once performs a single HTTP GET without retrying.
func (f *Fetcher) once(ctx context.Context, urlStr string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		// Network-level failures are transient by default.
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err, Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err, Retryable: true}
	}

	result := &Result{
		URL:         urlStr,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	switch {
	case resp.StatusCode >= 500:
		return result, &Error{
			URL:       urlStr,
			Message:   fmt.Sprintf("HTTP status %d", resp.StatusCode),
			Retryable: true,
		}
	case resp.StatusCode != http.StatusOK:
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}

// Hash returns the hex-encoded SHA-256 digest of content, used for
// unchanged-content detection across ingestion runs.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

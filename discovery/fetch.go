// Package discovery fetches daily listing pages and article pages and pulls
// article links and company details out of them.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"
)

// ErrFetch matches every *FetchError.
var ErrFetch = errors.New("fetch failed")

// FetchError describes a page that could not be retrieved or parsed.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a FetchError against ErrFetch.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// Fetcher retrieves a single page and parses it as HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// FetchConfig holds settings for HTTPFetcher.
type FetchConfig struct {
	// Timeout per page, covering connect, headers and body
	Timeout   time.Duration
	UserAgent string
	// Bodies larger than this are truncated before parsing
	MaxBodySize int64
	// Consecutive failures before the breaker opens; 0 disables the breaker
	BreakerThreshold uint32
	// How long the breaker stays open before letting a request through
	BreakerTimeout time.Duration
}

// DefaultFetchConfig returns the default fetch settings.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Timeout:          10 * time.Second,
		UserAgent:        "cruncher/1.0 (company extraction from news articles)",
		MaxBodySize:      10 * 1024 * 1024,
		BreakerThreshold: 5,
		BreakerTimeout:   60 * time.Second,
	}
}

// HTTPFetcher fetches pages over HTTP. Each page is fetched once; failures
// are never retried. After BreakerThreshold consecutive site failures
// (transport errors and 5xx, not 4xx) the breaker opens and fetches fail
// immediately until BreakerTimeout passes.
type HTTPFetcher struct {
	client  *http.Client
	config  FetchConfig
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewHTTPFetcher creates a fetcher. A nil client gets a new one using
// config.Timeout, and a nil logger uses slog.Default().
func NewHTTPFetcher(client *http.Client, config FetchConfig, logger *slog.Logger) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &HTTPFetcher{
		client: client,
		config: config,
		logger: logger,
	}

	if config.BreakerThreshold > 0 {
		threshold := config.BreakerThreshold
		f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "page-fetch",
			MaxRequests: 1,
			Timeout:     config.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return !siteFailure(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		})
	}

	return f
}

// siteFailure reports whether err says the site itself is unhealthy: no
// response, a server error, or an unparseable body. A 4xx only means that one
// page is missing, and a cancelled context is the caller giving up; neither
// counts towards opening the breaker.
func siteFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) && fetchErr.StatusCode >= 400 && fetchErr.StatusCode < 500 {
		return false
	}

	return true
}

// Fetch retrieves url and parses the body. Every failure is returned as a
// *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if f.breaker == nil {
		return f.doFetch(ctx, url)
	}

	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, url)
	})
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			return nil, fetchErr
		}
		// gobreaker.ErrOpenState or ErrTooManyRequests
		return nil, &FetchError{URL: url, Err: err}
	}

	return result.(*goquery.Document), nil
}

// doFetch performs one request. The response body is always closed.
func (f *HTTPFetcher) doFetch(ctx context.Context, url string) (*goquery.Document, error) {
	if f.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if f.config.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", resp.Status),
		}
	}

	var body io.Reader = resp.Body
	if f.config.MaxBodySize > 0 {
		body = io.LimitReader(resp.Body, f.config.MaxBodySize)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}
	doc.Url = resp.Request.URL

	return doc, nil
}

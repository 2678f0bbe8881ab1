// Package fetcher retrieves remote documents over HTTP.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.DocumentFetcher = (*Fetcher)(nil)

// Defaults applied when Config fields are zero.
const (
	DefaultTimeout  = 15 * time.Second
	DefaultMaxBytes = 32 << 20
)

const userAgent = "wordcheck/1.0"

// ErrTooLarge is returned when the response body exceeds the size limit.
var ErrTooLarge = errors.New("remote document too large")

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Config controls remote fetches.
type Config struct {
	// Timeout bounds the whole request, body included.
	Timeout time.Duration

	// RatePerSecond throttles requests. Zero uses DefaultRatePerSecond;
	// negative disables throttling.
	RatePerSecond float64

	// MaxBytes caps the response body.
	MaxBytes int64
}

// Fetcher performs throttled HTTP GETs.
type Fetcher struct {
	client   *http.Client
	limiter  *RateLimiter
	maxBytes int64
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	return NewWithClient(cfg, &http.Client{})
}

// NewWithClient creates a fetcher using client. The client's timeout is
// overwritten by cfg.Timeout.
func NewWithClient(cfg Config, client *http.Client) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RatePerSecond == 0 {
		cfg.RatePerSecond = DefaultRatePerSecond
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	client.Timeout = cfg.Timeout

	return &Fetcher{
		client:   client,
		limiter:  NewRateLimiter(cfg.RatePerSecond, DefaultBurst),
		maxBytes: cfg.MaxBytes,
	}
}

// Fetch GETs rawURL. Only http and https are accepted.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.Document, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: URL must be absolute http or https: %q", domain.ErrInvalidInput, rawURL)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	logger.Debug("fetching %s", u)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		f.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: u.String()}
	}

	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, resp.ContentLength, f.maxBytes)
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	if int64(len(content)) > f.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, f.maxBytes)
	}

	return &domain.Document{
		ID:        uuid.NewString(),
		Name:      nameFromResponse(resp),
		URI:       u.String(),
		MIMEType:  resp.Header.Get("Content-Type"),
		Content:   content,
		CreatedAt: time.Now(),
	}, nil
}

// nameFromResponse prefers a Content-Disposition filename over the last
// element of the final URL path.
func nameFromResponse(resp *http.Response) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			return path.Base(params["filename"])
		}
	}

	u := resp.Request.URL
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		return unescaped
	}
	return base
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		return time.Until(at)
	}
	return 0
}

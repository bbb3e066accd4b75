// Package feed fetches the raw product feed from a file or over HTTP.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/niksmo/gsm-storefront/internal/core/port"
)

var (
	_ port.FeedFetcher = (*FileFetcher)(nil)
	_ port.FeedFetcher = (*HTTPFetcher)(nil)
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 10 << 20
	userAgent       = "gsm-storefront/1.0"
)

var ErrBodyTooLarge = errors.New("feed body too large")

// A StatusError is a non-2xx feed response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// New picks an HTTPFetcher for http(s) URLs and a FileFetcher otherwise.
func New(source string, timeout time.Duration) port.FeedFetcher {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTPFetcher(source, timeout)
	}
	return NewFileFetcher(source)
}

type FileFetcher struct {
	path string
}

func NewFileFetcher(path string) FileFetcher {
	return FileFetcher{path}
}

func (f FileFetcher) FetchFeed(ctx context.Context) ([]byte, error) {
	const op = "FileFetcher.FetchFeed"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

type HTTPFetcher struct {
	url      string
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher returns a fetcher for url. A non-positive timeout uses 30s.
func NewHTTPFetcher(url string, timeout time.Duration) HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return HTTPFetcher{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		maxBytes: defaultMaxBytes,
	}
}

func (f HTTPFetcher) FetchFeed(ctx context.Context) ([]byte, error) {
	const op = "HTTPFetcher.FetchFeed"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w", op, &StatusError{resp.StatusCode, f.url})
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%s: %w: %d bytes", op, ErrBodyTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrBodyTooLarge)
	}
	return data, nil
}

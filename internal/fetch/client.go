// Package fetch is the thin I/O wrapper around the regulator's website:
// listing-page scraping, archive download, and on-disk caching. It carries no
// parsing logic beyond link extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// userAgent mimics a desktop browser; the regulator's CDN serves an error
// page to default Go client strings.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/124 Safari/537.36"

// Client wraps an HTTP client with a politeness rate limit for the
// regulator's site. Each period worker owns its own Client; the limiter may
// be shared across workers.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client with the given per-request timeout. A nil
// limiter disables rate limiting (tests).
func NewClient(timeout time.Duration, limiter *rate.Limiter) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// Get fetches a URL and returns the body. Non-2xx statuses are errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	return body, nil
}

// DownloadCached fetches a URL to dest unless a plausible cached copy already
// exists. Bodies at or below minSize signal a redirect or error page rather
// than real data and fail the download; nothing is written in that case.
func (c *Client) DownloadCached(ctx context.Context, url, dest string, minSize int64) error {
	if info, err := os.Stat(dest); err == nil && info.Size() > minSize {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure cache directory: %w", err)
	}

	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if int64(len(body)) <= minSize {
		return fmt.Errorf("download %s: body too small (%d bytes, need > %d)", url, len(body), minSize)
	}

	tmp := dest + ".part"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("finalize cache file: %w", err)
	}
	return nil
}

// Package images fetches catalog and room photos over HTTP with a
// bounded per-fetch timeout and a small retry budget.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// maxImageBytes caps a fetched body; anything larger is not a catalog photo.
const maxImageBytes = 20 << 20

// Fetcher downloads image bytes.
type Fetcher struct {
	client *retryablehttp.Client
}

// NewFetcher creates a fetcher with the given per-request timeout and
// retry count. A fetch exceeding the timeout fails instead of hanging.
func NewFetcher(timeout time.Duration, retryMax int) *Fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	return &Fetcher{client: client}
}

// Fetch downloads a single image. Any non-2xx status is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("fetch %s: body exceeds %d bytes", url, maxImageBytes)
	}
	return data, nil
}

// internal/adapter/collector/http.go

package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

const maxBodyBytes = 8 << 20

// ErrRateLimited is returned when a source still answers 429 after the retry
var ErrRateLimited = errors.New("rate limited")

// StatusError reports a response other than 200
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status code %d", e.URL, e.Code)
}

// HTTPClient fetches pages for collectors. It rotates user agents and retries a
// rate-limited request once after a fixed delay.
type HTTPClient struct {
	client     *http.Client
	userAgents []string
	retryDelay time.Duration
	next       atomic.Uint64
}

// NewHTTPClient creates a new collector HTTP client
func NewHTTPClient(timeout, retryDelay time.Duration, userAgents []string) *HTTPClient {
	if len(userAgents) == 0 {
		userAgents = []string{"trendradar/1.0"}
	}
	return &HTTPClient{
		client:     &http.Client{Timeout: timeout},
		userAgents: userAgents,
		retryDelay: retryDelay,
	}
}

// Get fetches url and returns the body of a 200 response
func (c *HTTPClient) Get(ctx context.Context, url, accept string) ([]byte, error) {
	header := http.Header{}
	if accept != "" {
		header.Set("Accept", accept)
	}
	return c.GetWithHeader(ctx, url, header)
}

// GetWithHeader is Get with extra request headers, such as API credentials
func (c *HTTPClient) GetWithHeader(ctx context.Context, url string, header http.Header) ([]byte, error) {
	body, status, err := c.do(ctx, url, header)
	if err != nil {
		return nil, err
	}

	if status == http.StatusTooManyRequests {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
		body, status, err = c.do(ctx, url, header)
		if err != nil {
			return nil, err
		}
		if status == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%s: %w", url, ErrRateLimited)
		}
	}

	if status != http.StatusOK {
		return nil, &StatusError{URL: url, Code: status}
	}
	return body, nil
}

func (c *HTTPClient) do(ctx context.Context, url string, header http.Header) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return body, resp.StatusCode, nil
}

func (c *HTTPClient) userAgent() string {
	n := c.next.Add(1) - 1
	return c.userAgents[n%uint64(len(c.userAgents))]
}

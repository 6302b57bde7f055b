package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client is the shared outbound HTTP client: one User-Agent, one request budget.
type Client struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewClient wraps httpClient; rps <= 0 disables rate limiting.
func NewClient(httpClient *http.Client, userAgent string, rps float64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}

	c := &Client{http: httpClient, userAgent: userAgent}
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

// Get issues a single GET; callers own the response body.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	return resp, nil
}

// UserAgent returns the configured agent string.
func (c *Client) UserAgent() string {
	return c.userAgent
}

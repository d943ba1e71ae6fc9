package contract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// maxSourceBytes bounds a single fetched document.
const maxSourceBytes = 64 << 20

// DefaultSourceClient implements SourceClient for local files, stdin and HTTP endpoints.
// HTTP requests share one token bucket.
type DefaultSourceClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	stdin      io.Reader
	headers    map[string]string
}

var _ SourceClient = &DefaultSourceClient{} // Compile-time check

// NewSourceClient creates a source client allowing rps HTTP requests per second.
func NewSourceClient(rps float64, timeout time.Duration) *DefaultSourceClient {
	if rps <= 0 {
		rps = DefaultRateLimit
	}
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &DefaultSourceClient{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		stdin:      os.Stdin,
		headers:    map[string]string{"Accept": "application/json"},
	}
}

// WithHeader adds a request header sent with every HTTP fetch.
func (c *DefaultSourceClient) WithHeader(key, value string) *DefaultSourceClient {
	c.headers[key] = value
	return c
}

// IsRemote implements the SourceClient interface.
func (c *DefaultSourceClient) IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch implements the SourceClient interface.
func (c *DefaultSourceClient) Fetch(ctx context.Context, location string) ([]byte, error) {
	switch {
	case strings.TrimSpace(location) == "":
		return nil, ErrEmptySource
	case location == "-":
		data, err := io.ReadAll(io.LimitReader(c.stdin, maxSourceBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	case c.IsRemote(location):
		return c.fetchHTTP(ctx, location)
	default:
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to read source file: %w", err)
		}
		return data, nil
	}
}

func (c *DefaultSourceClient) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	LogDebug("fetched source", logrus.Fields{
		"source":   url,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

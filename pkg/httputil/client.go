package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/observability"
)

// DefaultTimeout bounds a single request made through [NewHTTPClient].
const DefaultTimeout = 10 * time.Second

// maxBody caps response bodies read into memory.
const maxBody = 32 << 20

// NewHTTPClient creates an HTTP client with the given timeout, or
// DefaultTimeout when timeout is zero.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Client performs GET requests with default headers and retries.
type Client struct {
	http    *http.Client
	headers map[string]string

	// Attempts and Delay configure retries of transient failures.
	Attempts int
	Delay    time.Duration
}

// NewClient creates a Client. A nil httpClient uses [NewHTTPClient] defaults.
func NewClient(httpClient *http.Client, headers map[string]string) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	return &Client{
		http:     httpClient,
		headers:  headers,
		Attempts: 3,
		Delay:    500 * time.Millisecond,
	}
}

// Get fetches url and returns the response body. Request headers override
// the client defaults for the same key.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var body []byte
	err := Retry(ctx, c.Attempts, c.Delay, func() error {
		data, err := c.doRequest(ctx, url, headers)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	return body, err
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidURL, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", req.URL.Redacted()))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := CheckStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read body"))
	}
	return data, nil
}

// CheckStatus maps an HTTP status code onto an error, or nil for 2xx.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "status %d", code)
	case code >= 500:
		return Retryable(errors.New(errors.ErrCodeNetwork, "status %d", code))
	default:
		return errors.New(errors.ErrCodeUpstreamStatus, "status %d", code)
	}
}

// Package fetch performs JSON GET requests against the public registries and
// classifies failures by HTTP status.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout is the HTTP client deadline when none is configured.
const DefaultTimeout = 30 * time.Second

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// NetworkError is returned when the request never produced a response.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// Client issues GET requests with a fixed set of headers.
type Client struct {
	httpClient *http.Client
	headers    http.Header
}

// New creates a client with the given timeout (DefaultTimeout when zero).
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers:    http.Header{"Accept": []string{"application/json"}},
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// SetHeader adds a header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.headers.Set(key, value)
}

// Open issues a GET and returns the body of a 2xx response. The caller must
// close it.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vals := range c.headers {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

// GetJSON fetches url and decodes the body into v. A nil v discards the body.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// the client package is used by the ui handlers and the cli to call the SAM api.
// The client translates the api failures into user-friendly messages and also returns the detailed technical error to the caller for logging (see client/errors.go).
// Every failure is logged here with the request-scoped logger before being returned: callers decide whether to rethrow or degrade.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/multiplica-sam/sam/internal/logger"
)

// Client handles communication with the SAM api
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Client)

// WithTimeout sets the http client timeout. Zero (the default) means no timeout: requests are bounded by their context only.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock sets the clock used to date report file names
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the api address this client calls
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get issues a GET for path (relative to the base url) and decodes the JSON body into dest.
// Non-2xx responses, network failures and undecodable bodies are logged and returned as *ClientError.
func (c *Client) get(ctx context.Context, path string, dest any) error {
	res, err := c.do(ctx, path)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return c.fail(ctx, path, NewClientInternalError(err, fmt.Sprintf("decoding %s response", path)))
	}
	return nil
}

// getBytes issues a GET for path and returns the raw body with its content type
func (c *Client) getBytes(ctx context.Context, path string) ([]byte, string, error) {
	res, err := c.do(ctx, path)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", c.fail(ctx, path, NewClientConnectionError(err))
	}
	return data, res.Header.Get("Content-Type"), nil
}

// do sends the request. On success the caller owns the response body.
func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.fail(ctx, path, NewClientInternalError(err, "creating request"))
	}
	req.Header.Set("Accept", "application/json, application/pdf")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(ctx, path, NewClientConnectionError(err))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		return nil, c.fail(ctx, path, NewClientApiError(res))
	}
	return res, nil
}

// fail logs ce and returns it
func (c *Client) fail(ctx context.Context, path string, ce *ClientError) *ClientError {
	logger.ContextRequestLogger(ctx).Error("SAM api request failed",
		slog.String("component", "client"),
		slog.String("path", path),
		slog.Int("status_code", ce.StatusCode),
		slog.String("error", ce.Error()),
	)
	return ce
}

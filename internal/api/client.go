// Package api implements the client side of the remote session and message API. The
// API is treated as an external collaborator with a fixed JSON contract; this package
// only wraps its endpoints and classifies failures, it never retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// defaultTimeout is the per-request timeout used when the configuration does not
// override it. It matches the window the original front-end allowed for a model
// round trip.
const defaultTimeout = 60 * time.Second

// Client talks to the remote session and message API rooted at baseURL. All methods
// are safe for concurrent use; the zero value is not usable, construct with NewClient.
type Client struct {
	baseURL string
	logger  *slog.Logger

	client *http.Client
}

// NewClient creates a Client for the API at baseURL. A non-positive timeout falls
// back to the default. The base URL is expected without a trailing slash; one is
// stripped if present because request paths are joined as baseURL+"/api/...".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
	}
}

// do sends one JSON request and decodes a successful response into out, which may be
// nil when the caller only cares about the status. Transport failures map to
// NetworkError and non-2xx statuses to ServerError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	resp, err := c.send(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &ServerError{Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("error decoding response: %w", err)}
	}
	return nil
}

// send issues the request and returns the raw response. Callers own the body.
func (c *Client) send(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, &NetworkError{Op: op, Err: fmt.Errorf("error marshaling request: %w", err)}
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("error creating request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode))

	return resp, nil
}

// Ping probes the remote API by requesting the session list and discarding the
// result. It is used by the health endpoint to report reachability.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/api/sessions", nil, nil)
}

// Authenticated HTTP client for the crate API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/session"
	"github.com/desertthunder/crate/internal/shared"
)

// Client performs authenticated requests against the crate API.
//
// Every call reads the session from the [session.Provider] at call time; there
// is no ambient token state. A 401 response triggers exactly one forced
// refresh followed by one retried request, whose outcome is final.
type Client struct {
	baseURL    string
	sessions   session.Provider
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates an authenticated API client.
func NewClient(baseURL string, sessions session.Provider, client *http.Client, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000/api"
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    baseURL,
		sessions:   sessions,
		httpClient: client,
		logger:     logger,
	}
}

// Get performs an authenticated GET and decodes the JSON response into result.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Patch performs an authenticated PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

// Delete performs an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

// do is the request pipeline. Failure modes, in order:
//
//   - no session at entry: [shared.ErrNotAuthenticated], no network call
//   - 401 and refresh yields no session: [shared.ErrSessionExpired]
//   - non-2xx after at most one retry: [shared.StatusError] with the server's
//     detail message when present
//   - transport failure: [shared.ErrRequestFailed]
//
// A 204 response succeeds without touching result.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	sess, err := c.sessions.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if sess == nil {
		return shared.ErrNotAuthenticated
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, payload, sess.AccessToken())
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRequestFailed, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		c.logger.Debug("got 401, forcing session refresh", "path", path)

		refreshed, err := c.sessions.Refresh(ctx)
		if err != nil || refreshed == nil {
			return shared.ErrSessionExpired
		}

		// One retry with the refreshed token; a second 401 is terminal and
		// falls through to the status check below.
		resp, err = c.send(ctx, method, path, payload, refreshed.AccessToken())
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrRequestFailed, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// send issues a single HTTP request with the given bearer token.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

// statusError builds a [shared.StatusError] from a non-2xx response, passing
// through the server's detail field when the body had one.
func (c *Client) statusError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	var errBody struct {
		Detail string `json:"detail"`
	}
	message := ""
	if json.Unmarshal(data, &errBody) == nil {
		message = errBody.Detail
	}
	if message == "" {
		message = "request failed"
	}

	return &shared.StatusError{StatusCode: resp.StatusCode, Message: message}
}

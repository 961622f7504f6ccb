// Package api implements the client for the panel's file-management API.
//
// Plain request/response operations go through a retrying HTTP client.
// Triggering requests and cancellation calls for long-running jobs go through
// the non-retrying stream client: replaying a trigger would start the same
// job twice on the server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/craftdeck/craftdeck/internal/config"
	"github.com/craftdeck/craftdeck/internal/httpclient"
)

// Client talks to one panel deployment, optionally scoped to one server.
type Client struct {
	http    *http.Client // retrying, plain request/response
	stream  *http.Client // no timeout, no retries: channels, triggers, cancels
	baseURL string
	apiKey  string

	// serverID selects /api/server/{id}/fs/... resource paths. Empty selects
	// the older single-server deployment mode (/api/fs/...).
	serverID string

	log zerolog.Logger
}

// NewClient creates a panel API client from resolved configuration.
func NewClient(cfg *config.Config, log zerolog.Logger) (*Client, error) {
	if cfg.PanelURL == "" {
		return nil, fmt.Errorf("panel base URL is empty")
	}

	retrying, err := httpclient.NewRetryClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure HTTP client: %w", err)
	}
	streaming, err := httpclient.NewStreamClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure stream client: %w", err)
	}

	return &Client{
		http:     retrying,
		stream:   streaming,
		baseURL:  strings.TrimSuffix(cfg.PanelURL, "/"),
		apiKey:   cfg.APIKey,
		serverID: cfg.ServerID,
		log:      log,
	}, nil
}

// StreamClient exposes the non-retrying client for notification channels.
func (c *Client) StreamClient() *http.Client { return c.stream }

// Logger exposes the client's logger for the job controllers.
func (c *Client) Logger() zerolog.Logger { return c.log }

// fsURL builds a file-management resource URL. p is the path below fs/, with
// an optional ?query already attached by the caller.
func (c *Client) fsURL(p string) string {
	if c.serverID != "" {
		return c.baseURL + "/api/server/" + c.serverID + "/fs/" + p
	}
	return c.baseURL + "/api/fs/" + p
}

// do performs a plain request/response call with authentication. A non-nil
// body is JSON-encoded.
func (c *Client) do(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("url", url).Msg("API call failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func jsonMarshal(v interface{}) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// apiError turns a non-success response into an error. The server-supplied
// message is used when present: a JSON body with an "error" field wins, then
// the raw body text, then a synthesized "status statusText".
func (c *Client) apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	text := strings.TrimSpace(string(body))

	if text != "" {
		var wire struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &wire) == nil && wire.Error != "" {
			text = wire.Error
		}
		return fmt.Errorf("%s failed: %s", op, text)
	}
	return fmt.Errorf("%s failed: %d %s", op, resp.StatusCode, http.StatusText(resp.StatusCode))
}

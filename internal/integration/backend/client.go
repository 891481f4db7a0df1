package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/pkg/logger"
)

// Client is the shared HTTP transport for the remote backend API. All
// portal traffic to the backend (auth, plans, checkout, subscriptions) goes
// through it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// Config configures the backend Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a backend API client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a JSON request to the backend. token may be empty for public
// endpoints. Transport failures come back as *domain.NetworkError; HTTP
// error statuses are left to the caller, which knows the endpoint's
// semantics (e.g. whether a 404 means "not yet created").
func (c *Client) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("Backend request failed", "method", method, "path", path, "error", err)
		return nil, domain.NewNetworkError(method+" "+path, err)
	}
	return resp, nil
}

// decodeJSON decodes a response body into T and closes it.
func decodeJSON[T any](resp *http.Response) (T, error) {
	var out T
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// errorMessage drains the response and extracts the backend's error
// message, falling back to the HTTP status text.
func errorMessage(resp *http.Response) string {
	defer resp.Body.Close()
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(resp.StatusCode)
}

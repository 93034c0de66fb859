// Package apiclient talks to a persistence service exposing
// /api/data/{userId}. It is used by the remote store and the ops tools.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNoData means the service answered with success and a null record.
var ErrNoData = errors.New("no data stored for user")

// Response is the envelope every /api/data call answers with.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Health is the body of GET /api/health.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

type Option func(*Client)

// WithRateLimit caps outgoing requests to perMinute with a burst of one.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1)
		}
	}
}

// WithHTTPClient replaces the default client, keeping its own timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("persistence api base url is empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Load fetches the stored record for userId. A null record is ErrNoData.
func (c *Client) Load(ctx context.Context, userId string) (json.RawMessage, error) {
	var out Response
	if err := c.do(ctx, http.MethodGet, dataPath(userId), nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("persistence api: %s", out.Error)
	}
	if len(out.Data) == 0 || string(out.Data) == "null" {
		return nil, ErrNoData
	}
	return out.Data, nil
}

// Save posts record as the user's new state. The service stamps lastUpdated.
func (c *Client) Save(ctx context.Context, userId string, record json.RawMessage) error {
	var out Response
	if err := c.do(ctx, http.MethodPost, dataPath(userId), record, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("persistence api: %s", out.Error)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &out)
	return out, err
}

func dataPath(userId string) string {
	return "/api/data/" + url.PathEscape(userId)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env Response
		if json.Unmarshal(raw, &env) == nil && env.Error != "" {
			return fmt.Errorf("persistence api error %d: %s", resp.StatusCode, env.Error)
		}
		return fmt.Errorf("persistence api error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("persistence api: decode %s %s: %w", method, path, err)
	}
	return nil
}

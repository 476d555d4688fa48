package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds every request issued through the client.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is buffered.
const maxResponseBytes = 10 << 20

// Config holds the settings shared by every service on a Client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.ocontest.xyz/api
	BaseURL string
	Timeout time.Duration
	Debug   bool
}

// TokenSource supplies the current access token for outgoing requests.
// An empty string means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// Refresher exchanges the stored refresh token for a new access token.
// Consulted at most once per request that fails with a 401.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Client is the shared request pipeline for all ocontest API calls.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	debug      bool

	Auth          *AuthService
	Users         *UserService
	Contests      *ContestService
	Videos        *VideoService
	Notifications *NotificationService
}

// New creates a client for the given API base URL.
// Options attach the auth token source, the 401 refresh hook and caching.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// The jar carries the CSRF cookie the server sets on auth responses.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: base,
		debug:   cfg.Debug,
		httpClient: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: buildTransport(o),
		},
	}

	c.Auth = &AuthService{client: c}
	c.Users = &UserService{client: c}
	c.Contests = &ContestService{client: c}
	c.Videos = &VideoService{client: c}
	c.Notifications = &NotificationService{client: c}

	log.Debug().Str("baseURL", base.String()).Msg("api client initialized")

	return c, nil
}

// newRequest builds a JSON request relative to the base URL.
// Bodies go through bytes.Reader so GetBody is populated and the auth
// transport can replay the request after a token refresh.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// do executes the request and decodes the JSON response into out.
// Non-2xx responses come back as *APIError; transport failures are
// wrapped network errors and never carry a status code.
func (c *Client) do(req *http.Request, out any) error {
	if c.debug {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("api request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiErrorFromResponse(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	req, err := c.newRequest(ctx, http.MethodPatch, path, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) del(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

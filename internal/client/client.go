// Package client is the Go consumer of the auth API. It keeps the access
// token in memory, carries the refresh token in a cookie jar, and refreshes
// transparently: when a request comes back 401 expired_token the client
// refreshes once and replays the request, and concurrent expirations share
// a single refresh call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const defaultRefreshWaitTimeout = 10 * time.Second

type Options struct {
	BaseURL    string
	HTTPClient *http.Client

	// RefreshWaitTimeout bounds how long a queued request waits for an
	// in-flight refresh before giving up. Zero means the default of 10s.
	RefreshWaitTimeout time.Duration

	// OnSessionExpired fires once per failed refresh, after the stored
	// access token has been cleared. Typically hooked to a re-login
	// prompt.
	OnSessionExpired func()
}

type Client struct {
	baseURL     string
	http        *http.Client
	tokens      *tokenStore
	coordinator *refreshCoordinator
	onExpired   func()
}

type User struct {
	ID          uint      `json:"id"`
	LoginName   string    `json:"loginName"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Session struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	waitTimeout := opts.RefreshWaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = defaultRefreshWaitTimeout
	}

	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      httpClient,
		tokens:    &tokenStore{},
		onExpired: opts.OnSessionExpired,
	}
	c.coordinator = newRefreshCoordinator(c.refreshOnce, waitTimeout)
	return c, nil
}

// AccessToken returns the currently stored access token, empty when logged
// out.
func (c *Client) AccessToken() string { return c.tokens.Get() }

func (c *Client) Register(ctx context.Context, loginName, password, displayName string) (*Session, error) {
	return c.startSession(ctx, "/api/auth/register", map[string]string{
		"loginName":   loginName,
		"password":    password,
		"displayName": displayName,
	})
}

func (c *Client) Login(ctx context.Context, loginName, password string) (*Session, error) {
	return c.startSession(ctx, "/api/auth/login", map[string]string{
		"loginName": loginName,
		"password":  password,
	})
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.doAuthed(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) startSession(ctx context.Context, path string, body map[string]string) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, path, body, &session, ""); err != nil {
		return nil, err
	}
	c.tokens.Set(session.AccessToken)
	return &session, nil
}

// doAuthed performs an authenticated request. On 401 expired_token it asks
// the coordinator for a fresh token (joining an in-flight refresh when one
// exists) and retries once. Any other 401 forces a logout.
func (c *Client) doAuthed(ctx context.Context, method, path string, body, out any) error {
	err := c.do(ctx, method, path, body, out, c.tokens.Get())
	apiErr, ok := asAPIError(err)
	if !ok || apiErr.StatusCode != http.StatusUnauthorized {
		return err
	}
	if apiErr.Code != "expired_token" {
		c.forceLogout()
		return err
	}

	token, refreshErr := c.coordinator.Refresh(ctx)
	if refreshErr != nil {
		c.forceLogout()
		return refreshErr
	}
	return c.do(ctx, method, path, body, out, token)
}

// refreshOnce is the single-flight body run by the coordinator.
func (c *Client) refreshOnce(ctx context.Context) (string, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, &session, ""); err != nil {
		return "", err
	}
	c.tokens.Set(session.AccessToken)
	return session.AccessToken, nil
}

func (c *Client) forceLogout() {
	c.tokens.Clear()
	if c.onExpired != nil {
		c.onExpired()
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, accessToken string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	}
	return apiErr
}

func asAPIError(err error) (*APIError, bool) {
	if err == nil {
		return nil, false
	}
	apiErr, ok := err.(*APIError)
	return apiErr, ok
}

// Package api is the HTTP boundary to the condominium-management
// backend: the auth service (session endpoints) and the admin service
// (user administration and the managers/associations data surface).
//
// The backend is tolerated as-is: list bodies may be bare arrays or
// wrapped, success bodies may be empty (204) or non-JSON, and every 401
// maps to ErrUnauthorized rather than being retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnauthorized is returned for any 401 response. Callers surface a
// login prompt; nothing in this package retries authentication.
var ErrUnauthorized = errors.New("session expired or not logged in")

const sessionCookie = "token"

// Client talks to both backend services. Session credentials travel by
// reference: the token cookie captured at login is attached to every
// request.
type Client struct {
	http      *http.Client
	adminBase string
	authBase  string
	token     string
	log       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken preloads a previously persisted session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger attaches a logger; the default is a no-op.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the given admin and auth service bases,
// e.g. "http://localhost:8082/api" and "http://localhost:8080/api".
func New(adminBase, authBase string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		adminBase: strings.TrimRight(adminBase, "/"),
		authBase:  strings.TrimRight(authBase, "/"),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current session token, empty when logged out.
func (c *Client) Token() string { return c.token }

// errorBody is the backend's error envelope, when it bothers to send one.
type errorBody struct {
	Error string `json:"error"`
}

// do issues a request and returns the leniently decoded body. body is
// JSON-encoded when non-nil. Responses with empty or non-JSON bodies
// decode to nil and a raw string respectively; they are payloads, not
// errors.
func (c *Client) do(ctx context.Context, method, url string, body any) (any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.token})
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	c.log.Debug("backend request",
		zap.String("method", method), zap.String("url", url),
		zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	payload, raw := decodeLenient(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s %s: %w", method, url, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := backendMessage(payload, raw)
		return nil, fmt.Errorf("%s %s: backend returned %d: %s", method, url, resp.StatusCode, msg)
	}
	return payload, nil
}

// decodeLenient reads a response body, decoding JSON when the backend
// claims JSON and the bytes parse, and treating everything else as an
// opaque string payload.
func decodeLenient(resp *http.Response) (payload any, raw string) {
	if resp.StatusCode == http.StatusNoContent {
		return nil, ""
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return nil, ""
	}
	raw = string(data)
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var v any
		if json.Unmarshal(data, &v) == nil {
			return v, raw
		}
	}
	return raw, raw
}

// backendMessage extracts the backend's error string from a decoded
// payload, falling back to the raw body.
func backendMessage(payload any, raw string) string {
	if m, ok := payload.(map[string]any); ok {
		if msg, ok := m["error"].(string); ok && msg != "" {
			return msg
		}
	}
	if raw == "" {
		return "no response body"
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return raw
}

func (c *Client) adminURL(parts ...string) string {
	return c.adminBase + "/" + strings.Join(parts, "/")
}

func (c *Client) authURL(parts ...string) string {
	return c.authBase + "/" + strings.Join(parts, "/")
}

package api

import (
	"context"
	"fmt"
	"net/http"

	"condoctl/internal/authn"
)

// Session endpoints on the auth service.

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates against the auth service and captures the session
// token for subsequent requests, then probes /auth/me for the
// principal's identity and role.
func (c *Client) Login(ctx context.Context, username, password string) (authn.Session, error) {
	payload, err := c.do(ctx, http.MethodPost, c.authURL("auth", "login"), loginBody{Username: username, Password: password})
	if err != nil {
		return authn.Session{}, err
	}
	body, ok := payload.(map[string]any)
	if !ok {
		return authn.Session{}, fmt.Errorf("login: unexpected response shape %T", payload)
	}
	token, _ := body["token"].(string)
	if token == "" {
		return authn.Session{}, fmt.Errorf("login: no token in response")
	}
	c.token = token

	return c.Me(ctx)
}

// Logout invalidates the session server-side and drops the local token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, c.authURL("auth", "logout"), nil)
	c.token = ""
	return err
}

// Me returns the current principal, or ErrUnauthorized when the session
// is missing or expired.
func (c *Client) Me(ctx context.Context) (authn.Session, error) {
	payload, err := c.do(ctx, http.MethodGet, c.authURL("auth", "me"), nil)
	if err != nil {
		return authn.Session{}, err
	}
	body, ok := payload.(map[string]any)
	if !ok {
		return authn.Session{}, fmt.Errorf("session probe: unexpected response shape %T", payload)
	}
	username, _ := body["username"].(string)
	role, _ := body["role"].(string)
	return authn.Session{Username: username, Role: role}, nil
}

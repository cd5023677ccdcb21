package api

import (
	"context"
	"net/http"

	"condoctl/internal/users"
)

// User administration endpoints. The admin service emits PascalCase
// user rows but accepts lowercase bodies.

type createUserBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type roleBody struct {
	Role string `json:"role"`
}

// ListUsers fetches all accounts.
func (c *Client) ListUsers(ctx context.Context) ([]users.User, error) {
	payload, err := c.do(ctx, http.MethodGet, c.adminURL("admin", "users"), nil)
	if err != nil {
		return nil, err
	}
	items, _ := payload.([]any)
	out := make([]users.User, 0, len(items))
	for _, it := range items {
		raw, ok := it.(map[string]any)
		if !ok {
			continue
		}
		u := users.User{}
		u.ID, _ = first(raw, "ID", "id").(string)
		u.Username, _ = first(raw, "Username", "username").(string)
		u.Role, _ = first(raw, "Role", "role").(string)
		out = append(out, u)
	}
	return out, nil
}

func first(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// CreateUser adds an account.
func (c *Client) CreateUser(ctx context.Context, username, password, role string) error {
	_, err := c.do(ctx, http.MethodPost, c.adminURL("admin", "users"), createUserBody{
		Username: username, Password: password, Role: role,
	})
	return err
}

// UpdateUserRole changes one account's role.
func (c *Client) UpdateUserRole(ctx context.Context, id, role string) error {
	_, err := c.do(ctx, http.MethodPut, c.adminURL("admin", "users", id, "role"), roleBody{Role: role})
	return err
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.adminURL("admin", "users", id), nil)
	return err
}

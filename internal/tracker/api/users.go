package api

import (
	"context"
	"net/http"

	"github.com/redhill/reqtrack/internal/tracker/domain"
)

// NewUser is the payload for creating an account.
type NewUser struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

// UserUpdate mutates an existing account. The API takes the id in the PATCH
// body rather than the path. Password is optional: empty means unchanged.
type UserUpdate struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Active   bool     `json:"active"`
	Password string   `json:"password,omitempty"`
}

// ListUsers fetches all accounts. Admin only, enforced server-side.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates an account.
func (c *Client) CreateUser(ctx context.Context, u NewUser) error {
	return c.do(ctx, http.MethodPost, "/users", u, nil)
}

// UpdateUser updates an account.
func (c *Client) UpdateUser(ctx context.Context, u UserUpdate) error {
	return c.do(ctx, http.MethodPatch, "/users", u, nil)
}

// DeleteUser removes an account. The API takes the id in the DELETE body.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	body := struct {
		ID string `json:"id"`
	}{id}
	return c.do(ctx, http.MethodDelete, "/users", body, nil)
}

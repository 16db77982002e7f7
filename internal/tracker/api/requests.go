package api

import (
	"context"
	"net/http"

	"github.com/redhill/reqtrack/internal/tracker/domain"
)

// NewRequest is the payload for opening an engineering request. Requester
// and owner are account ids; the server resolves display names.
type NewRequest struct {
	Requester string `json:"requester"`
	Owner     string `json:"owner"`
	Type      string `json:"type"`
	Customer  string `json:"customer"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}

// RequestUpdate mutates an existing request, id in the PATCH body.
type RequestUpdate struct {
	ID        string `json:"id"`
	Requester string `json:"requester"`
	Owner     string `json:"owner"`
	Type      string `json:"type"`
	Customer  string `json:"customer"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ListRequests fetches all requests visible to the caller.
func (c *Client) ListRequests(ctx context.Context) ([]domain.Request, error) {
	var requests []domain.Request
	if err := c.do(ctx, http.MethodGet, "/requests", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// CreateRequest opens a new request.
func (c *Client) CreateRequest(ctx context.Context, r NewRequest) error {
	return c.do(ctx, http.MethodPost, "/requests", r, nil)
}

// UpdateRequest updates a request.
func (c *Client) UpdateRequest(ctx context.Context, r RequestUpdate) error {
	return c.do(ctx, http.MethodPatch, "/requests", r, nil)
}

// DeleteRequest removes a request. Admin only, enforced server-side and
// mirrored in the UI's role gating.
func (c *Client) DeleteRequest(ctx context.Context, id string) error {
	body := struct {
		ID string `json:"id"`
	}{id}
	return c.do(ctx, http.MethodDelete, "/requests", body, nil)
}

package api

import (
	"context"
	"net/http"
)

// Login exchanges credentials for an access token. The response also sets
// the HTTP-only refresh cookie, which the jar captures without the client
// ever reading it. On success the new token is placed in the credential
// store.
//
// Login is deliberately not routed through the refresh-retry gateway: a 403
// here means bad credentials, and there is nothing to refresh yet.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	resp, err := c.send(ctx, http.MethodPost, "/auth", body, "")
	if err != nil {
		return err
	}

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodeResponse(resp, &result); err != nil {
		return err
	}

	c.creds.SetToken(result.AccessToken)
	c.logger.Info("logged in", "username", username)
	return nil
}

// Logout asks the server to invalidate the refresh credential. The caller is
// expected to have cleared the credential store already; the cookie alone
// authenticates this call.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodPost, "/auth/logout", nil, "")
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

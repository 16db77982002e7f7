// Package api is the typed client for the remote tracker REST API.
//
// Every operation goes through a gateway that attaches the current bearer
// token and transparently recovers from access-token expiry: a 403 response
// triggers exactly one silent refresh (authenticated by the HTTP-only refresh
// cookie) followed by exactly one resend of the original request. The retry
// bound is structural, not a loop counter, so a consistently failing backend
// can never spin the client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/redhill/reqtrack/pkg/idx"
)

// DefaultTimeout bounds individual API requests. The gateway imposes no
// timeouts of its own beyond the single-retry cap.
const DefaultTimeout = 15 * time.Second

// maxResponseSize caps response bodies read into memory.
const maxResponseSize = 8 * 1024 * 1024

// CredentialStore holds the in-memory access token the gateway attaches to
// outbound requests. Implementations must be safe for concurrent use; the
// gateway writes through it at most once per outer call (on refresh success).
type CredentialStore interface {
	// Token returns the current access token, or "" when logged out.
	Token() string

	// SetToken replaces the current access token.
	SetToken(token string)
}

// Client is the tracker API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialStore
	jar        *Jar
	logger     *slog.Logger

	// refreshMu serialises silent refreshes so concurrent 403s share one
	// refresh result instead of stampeding the refresh endpoint.
	refreshMu      sync.Mutex
	refreshLimiter *rate.Limiter
}

// New creates a tracker API client. The jar carries the HTTP-only refresh
// cookie; the client itself never inspects it.
func New(baseURL string, creds CredentialStore, jar *Jar) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		creds:  creds,
		jar:    jar,
		logger: slog.Default(),
		// One refresh per second sustained, small burst for login races.
		refreshLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// WithLogger sets the client's logger.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// Jar returns the cookie jar so the session layer can manage its durability.
func (c *Client) Jar() *Jar {
	return c.jar
}

// do executes one gated API call: attempt, refresh if forbidden, retry once.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token := c.creds.Token()

	resp, err := c.send(ctx, method, path, body, token)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusForbidden {
		return decodeResponse(resp, out)
	}
	drain(resp)

	c.logger.Debug("access token rejected, refreshing", "method", method, "path", path)
	if err := c.refreshAfter(ctx, token); err != nil {
		return err
	}

	resp, err = c.send(ctx, method, path, body, c.creds.Token())
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

// send dispatches a single request with the given bearer token ("" sends no
// Authorization header). Cookies ride along via the jar on every call.
func (c *Client) send(ctx context.Context, method, path string, body any, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", idx.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// refreshAfter performs at most one silent refresh on behalf of a call whose
// bearer token stale was just rejected. Concurrent rejected calls queue on
// the lock and reuse the token the first one obtained.
func (c *Client) refreshAfter(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Someone else already refreshed while this call waited on the lock.
	if current := c.creds.Token(); current != "" && current != stale {
		return nil
	}

	if err := c.refreshLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("refresh throttled: %w", err)
	}

	return c.refreshLocked(ctx)
}

// refreshLocked exchanges the refresh cookie for a new access token. The
// caller must hold refreshMu.
func (c *Client) refreshLocked(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, "/auth/refresh", nil, "")
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusForbidden {
		drain(resp)
		c.logger.Info("refresh credential rejected, session expired")
		return ErrSessionExpired
	}

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodeResponse(resp, &result); err != nil {
		return err
	}

	c.creds.SetToken(result.AccessToken)
	c.logger.Debug("access token refreshed")
	return nil
}

// Refresh performs one silent refresh outside the retry path. The session
// bootstrap gate uses it to re-establish a session from the refresh cookie.
func (c *Client) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if err := c.refreshLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("refresh throttled: %w", err)
	}
	return c.refreshLocked(ctx)
}

// decodeResponse maps error statuses to *APIError and unmarshals successful
// bodies into out (which may be nil for operations with no useful body).
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}

		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &body); err == nil {
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// drain discards a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
}

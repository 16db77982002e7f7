// Package session owns client-side session state: the in-memory credential
// store, the startup bootstrap gate, identity derivation from token claims,
// the route authorization gate, and the session-scoped resource cache.
package session

import "sync"

// Credentials holds the current access token in process memory only. It is
// never written to durable storage; the refresh cookie is the durable
// artifact and lives in the transport's jar. Safe for concurrent use: every
// read observes the most recent write.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

// Token returns the current access token, or "" when none is held.
func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the current access token.
func (c *Credentials) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Clear drops the access token. Called on logout and on terminal refresh
// failure.
func (c *Credentials) Clear() {
	c.SetToken("")
}

package session

import (
	"sync"

	"github.com/redhill/reqtrack/internal/tracker/domain"
)

// Cache holds prefetched API results for the lifetime of a session so list
// screens render instantly. It is memory only and purged on logout (after
// the grace delay, see Manager.Logout).
type Cache struct {
	mu          sync.RWMutex
	requests    []domain.Request
	hasRequests bool
	users       []domain.User
	hasUsers    bool
}

// Requests returns the cached request list and whether one has been loaded.
func (c *Cache) Requests() ([]domain.Request, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.requests, c.hasRequests
}

// SetRequests replaces the cached request list.
func (c *Cache) SetRequests(requests []domain.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = requests
	c.hasRequests = true
}

// Users returns the cached user list and whether one has been loaded.
func (c *Cache) Users() ([]domain.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.users, c.hasUsers
}

// SetUsers replaces the cached user list.
func (c *Cache) SetUsers(users []domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = users
	c.hasUsers = true
}

// Purge discards everything.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = nil
	c.hasRequests = false
	c.users = nil
	c.hasUsers = false
}

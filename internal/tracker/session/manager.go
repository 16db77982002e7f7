package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redhill/reqtrack/internal/tracker/api"
	"github.com/redhill/reqtrack/internal/tracker/domain"
)

// State is the bootstrap gate's view of the session.
type State int

const (
	// StatePending means the gate has not yet decided; protected UI must
	// not render. Entered only on a fresh process start, never re-entered
	// by in-app navigation.
	StatePending State = iota

	// StateAuthenticated means a usable access token is in the store.
	StateAuthenticated

	// StateUnauthenticated means the user must log in.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "pending"
	}
}

// DefaultLogoutGrace is how long cached API results outlive a logout, giving
// in-flight prefetch requests time to settle before their results vanish.
const DefaultLogoutGrace = time.Second

// PreferenceStore persists the one durable boolean this client keeps: the
// user's consent to silent re-authentication on startup.
type PreferenceStore interface {
	SetPersistLogin(ctx context.Context, v bool) error
}

// Manager is the session context object threaded through the application:
// it owns the credential store, the bootstrap state machine, the prefetch
// cache, and teardown on logout. It is created at startup and torn down by
// Logout; nothing else mutates session state.
type Manager struct {
	creds  *Credentials
	client *api.Client
	prefs  PreferenceStore
	cache  *Cache
	logger *slog.Logger
	grace  time.Duration

	mu      sync.Mutex
	state   State
	persist bool
}

// NewManager wires a session manager. persist is the preference value read
// once at startup; later toggles go through SetPersist.
func NewManager(creds *Credentials, client *api.Client, prefs PreferenceStore, persist bool, logger *slog.Logger) *Manager {
	return &Manager{
		creds:   creds,
		client:  client,
		prefs:   prefs,
		cache:   &Cache{},
		logger:  logger,
		grace:   DefaultLogoutGrace,
		state:   StatePending,
		persist: persist,
	}
}

// WithLogoutGrace overrides the cache-purge delay, mainly for tests.
func (m *Manager) WithLogoutGrace(d time.Duration) *Manager {
	m.grace = d
	return m
}

// State returns the current bootstrap state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// Credentials exposes the session's credential store.
func (m *Manager) Credentials() *Credentials { return m.creds }

// Cache exposes the session-scoped resource cache.
func (m *Manager) Cache() *Cache { return m.cache }

// Identity derives the current identity fresh from the credential store.
func (m *Manager) Identity() domain.Identity {
	return Derive(m.creds.Token())
}

// PersistLogin reports the "trust this device" preference.
func (m *Manager) PersistLogin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persist
}

// SetPersist records the user's explicit toggle of the persistence
// preference, writing it through to durable storage and adjusting whether
// the refresh cookie survives restarts.
func (m *Manager) SetPersist(ctx context.Context, v bool) error {
	if err := m.prefs.SetPersistLogin(ctx, v); err != nil {
		return err
	}

	m.mu.Lock()
	m.persist = v
	m.mu.Unlock()

	m.client.Jar().SetPersist(v)
	return nil
}

// Bootstrap decides whether protected UI may render. It runs once per
// process start:
//
//   - a token already in the store authenticates immediately (in-process
//     navigation, not a fresh load);
//   - with persistence declined, it never touches the network and lands on
//     unauthenticated: the user chose not to be silently re-authenticated;
//   - otherwise it spends its single silent refresh attempt.
//
// A transport failure (no status) leaves the gate in StatePending and
// returns the error: the refresh credential may still be good, so the UI
// offers a retry instead of hard-redirecting to login.
func (m *Manager) Bootstrap(ctx context.Context) (State, error) {
	if m.creds.Token() != "" {
		m.setState(StateAuthenticated)
		return StateAuthenticated, nil
	}

	if !m.PersistLogin() {
		m.logger.Debug("persistence declined, skipping silent refresh")
		m.setState(StateUnauthenticated)
		return StateUnauthenticated, nil
	}

	err := m.client.Refresh(ctx)
	if err == nil {
		m.logger.Info("session restored via silent refresh")
		m.setState(StateAuthenticated)
		return StateAuthenticated, nil
	}

	if _, ok := api.AsAPIError(err); ok {
		m.logger.Info("silent refresh rejected", "error", err)
		m.setState(StateUnauthenticated)
		return StateUnauthenticated, nil
	}

	// No status available: transient transport failure, retryable.
	m.logger.Warn("silent refresh unreachable", "error", err)
	m.setState(StatePending)
	return StatePending, err
}

// LoggedIn transitions the gate after a successful interactive login.
func (m *Manager) LoggedIn() {
	m.setState(StateAuthenticated)
}

// Prefetch warms the cache after authentication so list screens render
// instantly. The user list is admin-gated server-side, so it is only fetched
// when the identity would pass that gate.
func (m *Manager) Prefetch(ctx context.Context) {
	requests, err := m.client.ListRequests(ctx)
	if err != nil {
		m.logger.Warn("request prefetch failed", "error", err)
	} else {
		domain.SortRequests(requests)
		m.cache.SetRequests(requests)
	}

	if !m.Identity().IsAdmin {
		return
	}
	users, err := m.client.ListUsers(ctx)
	if err != nil {
		m.logger.Warn("user prefetch failed", "error", err)
		return
	}
	m.cache.SetUsers(users)
}

// Logout tears the session down: the credential store is cleared
// immediately, the server is asked to invalidate the refresh credential, the
// cookie jar is emptied, and cached API results are discarded after the
// grace delay, not before, so in-flight requests settle against a live
// cache.
func (m *Manager) Logout(ctx context.Context) error {
	m.creds.Clear()
	m.setState(StateUnauthenticated)

	err := m.client.Logout(ctx)
	if err != nil {
		m.logger.Warn("server logout failed", "error", err)
	}
	m.client.Jar().Clear()

	time.AfterFunc(m.grace, m.cache.Purge)
	return err
}

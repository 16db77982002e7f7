package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/redhill/reqtrack/internal/tracker/api"
	"github.com/redhill/reqtrack/internal/tracker/session"
	"github.com/redhill/reqtrack/pkg/jwtx"
)

// fakeTracker is an in-process stand-in for the tracker API, faithful to its
// auth model: short-lived bearer tokens plus an HTTP-only refresh cookie.
type fakeTracker struct {
	t *testing.T

	mu          sync.Mutex
	accessToken string
	refreshSeq  int
	refresh     string
	refreshHits int
	mintSeq     int
	roles       []string
}

func (f *fakeTracker) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshHits
}

func (f *fakeTracker) mintAccess() string {
	f.mu.Lock()
	f.mintSeq++
	seq := f.mintSeq
	f.mu.Unlock()

	// A unique token id keeps successive tokens distinct even when they
	// are minted within the same second (exp has one-second resolution).
	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("token-%d", seq),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
		UserInfo: jwtx.UserInfo{UserID: 1, Username: "dana", Roles: f.roles},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("server-side-secret"))
	require.NoError(f.t, err)

	f.mu.Lock()
	f.accessToken = token
	f.mu.Unlock()
	return token
}

// expireAccess invalidates the current bearer token without touching the
// refresh credential, simulating access-token expiry.
func (f *fakeTracker) expireAccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accessToken = ""
}

func (f *fakeTracker) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
			body.Username != "dana" || body.Password != "hunter2" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		f.mu.Lock()
		f.refreshSeq++
		f.refresh = fmt.Sprintf("refresh-%d", f.refreshSeq)
		refresh := f.refresh
		f.mu.Unlock()

		http.SetCookie(w, &http.Cookie{
			Name: "jwt", Value: refresh, Path: "/", HttpOnly: true,
			Expires: time.Now().Add(24 * time.Hour),
		})
		writeJSON(w, map[string]string{"accessToken": f.mintAccess()})
	})

	mux.HandleFunc("GET /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("jwt")
		f.mu.Lock()
		f.refreshHits++
		valid := err == nil && f.refresh != "" && cookie.Value == f.refresh
		f.mu.Unlock()
		if !valid {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		writeJSON(w, map[string]string{"accessToken": f.mintAccess()})
	})

	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.refresh = ""
		f.accessToken = ""
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /requests", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		valid := f.accessToken != "" && r.Header.Get("Authorization") == "Bearer "+f.accessToken
		f.mu.Unlock()
		if !valid {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		writeJSON(w, []map[string]any{
			{"_id": "r1", "title": "VPN access", "completed": false, "createdAt": "2024-05-01T10:30:00.000Z"},
		})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

type nopPrefs struct{}

func (nopPrefs) SetPersistLogin(context.Context, bool) error { return nil }

// sessionUnit bundles one "process instance" of the client stack.
type sessionUnit struct {
	manager *session.Manager
	client  *api.Client
	creds   *session.Credentials
}

func newSessionUnit(t *testing.T, baseURL, cookiePath string, persist bool) sessionUnit {
	t.Helper()

	jar, err := api.NewJar(baseURL, cookiePath, persist)
	require.NoError(t, err)

	creds := &session.Credentials{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.New(baseURL, creds, jar).WithLogger(logger)
	manager := session.NewManager(creds, client, nopPrefs{}, persist, logger).
		WithLogoutGrace(10 * time.Millisecond)

	return sessionUnit{manager: manager, client: client, creds: creds}
}

// TestClientLifecycle walks the whole session arc against a fake tracker:
// login with trust, data access across a token expiry, a process restart
// restored from the persisted cookie, and a terminal logout.
func TestClientLifecycle(t *testing.T) {
	tracker := &fakeTracker{t: t, roles: []string{"Engineer"}}
	server := httptest.NewServer(tracker.handler())
	defer server.Close()

	ctx := context.Background()
	cookiePath := filepath.Join(t.TempDir(), "cookies.json")

	first := newSessionUnit(t, server.URL, cookiePath, true)

	state, err := first.manager.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, session.StateUnauthenticated, state, "nothing to restore on first run")

	require.NoError(t, first.client.Login(ctx, "dana", "hunter2"))
	first.manager.LoggedIn()
	require.Equal(t, session.StateAuthenticated, first.manager.State())

	id := first.manager.Identity()
	require.Equal(t, "dana", id.Username)
	require.True(t, id.IsEngineer)
	require.Equal(t, "Engineer", id.Status)

	first.manager.Prefetch(ctx)
	requests, ok := first.manager.Cache().Requests()
	require.True(t, ok)
	require.Len(t, requests, 1)

	// The access token dies; the next call must recover transparently.
	tracker.expireAccess()
	stale := first.creds.Token()
	refreshesBefore := tracker.refreshCount()

	requests, err = first.client.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, refreshesBefore+1, tracker.refreshCount(), "recovery used exactly one refresh")
	require.NotEqual(t, stale, first.creds.Token(), "gateway obtained a fresh token")

	// A new process restores the session from the persisted refresh cookie.
	second := newSessionUnit(t, server.URL, cookiePath, true)

	state, err = second.manager.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, session.StateAuthenticated, state)
	require.Equal(t, "dana", second.manager.Identity().Username)

	// Logout is terminal: credentials vanish now, the refresh credential is
	// revoked server-side, and a later silent refresh is firmly rejected.
	require.NoError(t, second.manager.Logout(ctx))
	require.Empty(t, second.creds.Token())

	err = second.client.Refresh(ctx)
	require.ErrorIs(t, err, api.ErrSessionExpired)

	third := newSessionUnit(t, server.URL, cookiePath, true)
	state, err = third.manager.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, session.StateUnauthenticated, state, "cookie file was purged on logout")
}

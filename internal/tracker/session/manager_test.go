package session_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/redhill/reqtrack/internal/tracker/api"
	"github.com/redhill/reqtrack/internal/tracker/session"
	"github.com/redhill/reqtrack/pkg/jwtx"
)

// prefsSpy records persistence-preference writes.
type prefsSpy struct {
	writes []bool
	err    error
}

func (p *prefsSpy) SetPersistLogin(_ context.Context, v bool) error {
	p.writes = append(p.writes, v)
	return p.err
}

func mintToken(t *testing.T, info jwtx.UserInfo) string {
	t.Helper()

	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
		UserInfo: info,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return token
}

type fixture struct {
	manager *session.Manager
	creds   *session.Credentials
	prefs   *prefsSpy
	jar     *api.Jar
	baseURL string
}

func newFixture(t *testing.T, handler http.Handler, persist bool) fixture {
	t.Helper()

	baseURL := "http://127.0.0.1:1" // unreachable unless a server is given
	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		baseURL = server.URL
	}

	jar, err := api.NewJar(baseURL, "", false)
	require.NoError(t, err)

	creds := &session.Credentials{}
	client := api.New(baseURL, creds, jar)
	prefs := &prefsSpy{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := session.NewManager(creds, client, prefs, persist, logger)

	return fixture{manager: manager, creds: creds, prefs: prefs, jar: jar, baseURL: baseURL}
}

func TestBootstrap(t *testing.T) {
	t.Run("existing token authenticates without network", func(t *testing.T) {
		var hits int
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits++ })

		f := newFixture(t, mux, true)
		f.creds.SetToken("already-there")

		state, err := f.manager.Bootstrap(context.Background())
		require.NoError(t, err)
		require.Equal(t, session.StateAuthenticated, state)
		require.Zero(t, hits)
	})

	t.Run("declined persistence never touches the network", func(t *testing.T) {
		var hits int
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits++ })

		f := newFixture(t, mux, false)

		state, err := f.manager.Bootstrap(context.Background())
		require.NoError(t, err)
		require.Equal(t, session.StateUnauthenticated, state)
		require.Equal(t, session.StateUnauthenticated, f.manager.State())
		require.Zero(t, hits)
	})

	t.Run("silent refresh restores the session", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "restored"})
		})

		f := newFixture(t, mux, true)

		state, err := f.manager.Bootstrap(context.Background())
		require.NoError(t, err)
		require.Equal(t, session.StateAuthenticated, state)
		require.Equal(t, "restored", f.creds.Token())
	})

	t.Run("rejected refresh lands on login", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"Forbidden"}`, http.StatusForbidden)
		})

		f := newFixture(t, mux, true)

		state, err := f.manager.Bootstrap(context.Background())
		require.NoError(t, err, "a decided rejection is not an error for the caller")
		require.Equal(t, session.StateUnauthenticated, state)
		require.Empty(t, f.creds.Token())
	})

	t.Run("transport failure stays pending and is retryable", func(t *testing.T) {
		f := newFixture(t, nil, true)

		state, err := f.manager.Bootstrap(context.Background())
		require.Error(t, err)
		require.Equal(t, session.StatePending, state)
		require.Equal(t, session.StatePending, f.manager.State())
	})
}

func TestSetPersist(t *testing.T) {
	t.Run("writes through to durable storage", func(t *testing.T) {
		f := newFixture(t, http.NewServeMux(), false)

		require.NoError(t, f.manager.SetPersist(context.Background(), true))
		require.True(t, f.manager.PersistLogin())
		require.Equal(t, []bool{true}, f.prefs.writes)
	})

	t.Run("storage failure leaves the preference unchanged", func(t *testing.T) {
		f := newFixture(t, http.NewServeMux(), false)
		f.prefs.err = context.DeadlineExceeded

		require.Error(t, f.manager.SetPersist(context.Background(), true))
		require.False(t, f.manager.PersistLogin())
	})
}

func TestPrefetch(t *testing.T) {
	requestsBody := `[
		{"_id":"r1","title":"Old open","completed":false,"createdAt":"2024-01-01T00:00:00.000Z"},
		{"_id":"r2","title":"Done","completed":true,"createdAt":"2024-06-01T00:00:00.000Z"},
		{"_id":"r3","title":"New open","completed":false,"createdAt":"2024-03-01T00:00:00.000Z"}
	]`

	t.Run("admin warms both caches, open requests first", func(t *testing.T) {
		var userHits int
		mux := http.NewServeMux()
		mux.HandleFunc("GET /requests", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(requestsBody))
		})
		mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
			userHits++
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"_id":"u1","username":"dana","roles":["Admin"],"active":true}]`))
		})

		f := newFixture(t, mux, true)
		f.creds.SetToken(mintToken(t, jwtx.UserInfo{
			UserID: 1, Username: "dana", Roles: []string{"Admin"},
		}))

		f.manager.Prefetch(context.Background())

		requests, ok := f.manager.Cache().Requests()
		require.True(t, ok)
		require.Len(t, requests, 3)
		require.Equal(t, "New open", requests[0].Title)
		require.Equal(t, "Old open", requests[1].Title)
		require.Equal(t, "Done", requests[2].Title)

		users, ok := f.manager.Cache().Users()
		require.True(t, ok)
		require.Len(t, users, 1)
		require.Equal(t, 1, userHits)
	})

	t.Run("non-admin never asks for the user list", func(t *testing.T) {
		var userHits int
		mux := http.NewServeMux()
		mux.HandleFunc("GET /requests", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(requestsBody))
		})
		mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) { userHits++ })

		f := newFixture(t, mux, true)
		f.creds.SetToken(mintToken(t, jwtx.UserInfo{
			UserID: 2, Username: "sam", Roles: []string{"Sales"},
		}))

		f.manager.Prefetch(context.Background())

		_, ok := f.manager.Cache().Users()
		require.False(t, ok)
		require.Zero(t, userHits)
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears credentials immediately, cache after the grace delay", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		f := newFixture(t, mux, true)
		f.manager.WithLogoutGrace(100 * time.Millisecond)
		f.creds.SetToken("active")
		f.manager.LoggedIn()
		f.manager.Cache().SetRequests(nil)

		require.NoError(t, f.manager.Logout(context.Background()))

		require.Empty(t, f.creds.Token())
		require.Equal(t, session.StateUnauthenticated, f.manager.State())

		// The cache survives the grace window, then vanishes.
		_, ok := f.manager.Cache().Requests()
		require.True(t, ok)
		require.Eventually(t, func() bool {
			_, ok := f.manager.Cache().Requests()
			return !ok
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("server failure still tears the session down", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
		})

		f := newFixture(t, mux, true)
		f.manager.WithLogoutGrace(time.Millisecond)
		f.creds.SetToken("active")

		err := f.manager.Logout(context.Background())
		require.Error(t, err)
		require.Empty(t, f.creds.Token())
		require.Equal(t, session.StateUnauthenticated, f.manager.State())
	})

	t.Run("logout empties the cookie jar", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		f := newFixture(t, mux, true)
		f.manager.WithLogoutGrace(time.Millisecond)

		origin, err := url.Parse(f.baseURL)
		require.NoError(t, err)

		f.jar.SetCookies(origin, []*http.Cookie{{Name: "jwt", Value: "refresh-1", Path: "/"}})
		require.Len(t, f.jar.Cookies(origin), 1)

		require.NoError(t, f.manager.Logout(context.Background()))
		require.Empty(t, f.jar.Cookies(origin))
	})
}

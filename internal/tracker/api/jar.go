package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sync"
	"time"
)

// Jar is the cookie jar backing the client's transport. It stands in for the
// browser's cookie store: the refresh credential arrives as an HTTP-only
// cookie and the client never reads its value, but the jar must survive
// process restarts for silent re-authentication to work. Cookies are written
// to disk only while the user's "trust this device" preference is on; turning
// the preference off removes the file.
type Jar struct {
	mu      sync.RWMutex
	inner   http.CookieJar
	origin  *url.URL
	path    string
	persist bool

	// stored keeps the full Set-Cookie attributes per cookie name, since
	// the inner jar only hands back name/value pairs.
	stored map[string]*http.Cookie
}

// storedCookie is the on-disk form of a cookie.
type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

// NewJar creates a jar for the API origin. When persist is true, cookies
// previously saved at path are loaded back in (expired ones are dropped).
func NewJar(apiURL, path string, persist bool) (*Jar, error) {
	origin, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}

	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	j := &Jar{
		inner:   inner,
		origin:  origin,
		path:    path,
		persist: persist,
		stored:  make(map[string]*http.Cookie),
	}

	if persist && path != "" {
		j.load()
	}
	return j, nil
}

// SetCookies implements http.CookieJar, recording full cookie attributes and
// saving them when persistence is on. The lock also guards the inner jar
// pointer, which Clear swaps out while requests may still be in flight.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner.SetCookies(u, cookies)

	for _, c := range cookies {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(j.stored, c.Name)
			continue
		}
		j.stored[c.Name] = c
	}
	if j.persist {
		j.saveLocked()
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

// SetPersist toggles durability. Turning it on writes the current cookies
// out; turning it off removes the file but keeps the in-memory session.
func (j *Jar) SetPersist(persist bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.persist = persist
	if persist {
		j.saveLocked()
	} else if j.path != "" {
		_ = os.Remove(j.path)
	}
}

// Clear drops all cookies, in memory and on disk. Called on logout.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()

	// cookiejar has no reset; replace the inner jar wholesale.
	inner, err := cookiejar.New(nil)
	if err == nil {
		j.inner = inner
	}
	j.stored = make(map[string]*http.Cookie)
	if j.path != "" {
		_ = os.Remove(j.path)
	}
}

func (j *Jar) load() {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return
	}

	var saved []storedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return
	}

	cookies := make([]*http.Cookie, 0, len(saved))
	for _, s := range saved {
		if !s.Expires.IsZero() && s.Expires.Before(time.Now()) {
			continue
		}
		c := &http.Cookie{
			Name:     s.Name,
			Value:    s.Value,
			Path:     s.Path,
			Expires:  s.Expires,
			Secure:   s.Secure,
			HttpOnly: s.HttpOnly,
		}
		cookies = append(cookies, c)
		j.stored[c.Name] = c
	}
	j.inner.SetCookies(j.origin, cookies)
}

func (j *Jar) saveLocked() {
	if j.path == "" {
		return
	}

	saved := make([]storedCookie, 0, len(j.stored))
	for _, c := range j.stored {
		saved = append(saved, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(j.path, data, 0o600)
}

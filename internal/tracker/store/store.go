// Package store defines the data access interface for durable client-side
// state. It stays small on purpose: the client persists user preferences
// only, the access token never touches disk, and API data lives in the
// session cache.
package store

import (
	"context"
	"errors"
)

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("store: not found")

// Color modes for the UI theme toggle.
const (
	ColorModeDark  = "dark"
	ColorModeLight = "light"
)

// Settings are the durable client preferences, a single row seeded with
// defaults on first run. PersistLogin defaults to false: silent
// re-authentication on startup requires explicit user consent.
type Settings struct {
	PersistLogin bool
	ColorMode    string
}

// Store is the root data access interface. Concrete drivers (sqlite)
// implement it.
type Store interface {
	// Settings returns the current preferences.
	Settings(ctx context.Context) (Settings, error)

	// SetPersistLogin records the "trust this device" toggle.
	SetPersistLogin(ctx context.Context, v bool) error

	// SetColorMode records the UI theme.
	SetColorMode(ctx context.Context, mode string) error

	// ApplyMigrations brings the schema up to date.
	ApplyMigrations() error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error
}

// Package sqlite is the sqlite-backed settings store, kept in the user's
// config directory so preferences survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/redhill/reqtrack/internal/tracker/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Settings returns the single preferences row.
func (s *Store) Settings(ctx context.Context) (store.Settings, error) {
	var (
		persist int
		mode    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT persist_login, color_mode FROM settings WHERE id = 1`,
	).Scan(&persist, &mode)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Settings{}, store.ErrNotFound
	}
	if err != nil {
		return store.Settings{}, err
	}

	return store.Settings{
		PersistLogin: persist != 0,
		ColorMode:    mode,
	}, nil
}

// SetPersistLogin records the "trust this device" toggle.
func (s *Store) SetPersistLogin(ctx context.Context, v bool) error {
	persist := 0
	if v {
		persist = 1
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE settings SET persist_login = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		persist,
	)
	return err
}

// SetColorMode records the UI theme.
func (s *Store) SetColorMode(ctx context.Context, mode string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE settings SET color_mode = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		mode,
	)
	return err
}

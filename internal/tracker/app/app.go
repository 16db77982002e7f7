// Package app wires the tracker client together: configuration, logging,
// the settings store, the API client, the session manager, and the TUI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/redhill/reqtrack/internal/tracker/api"
	"github.com/redhill/reqtrack/internal/tracker/session"
	"github.com/redhill/reqtrack/internal/tracker/store"
	"github.com/redhill/reqtrack/internal/tracker/store/drivers/sqlite"
	"github.com/redhill/reqtrack/internal/tracker/ui"
	"github.com/redhill/reqtrack/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application is the assembled tracker client.
type Application struct {
	cfg    Config
	logger *slog.Logger

	logFile *os.File
	db      store.Store
	client  *api.Client
	manager *session.Manager
}

// New initializes the application and all of its dependencies.
func New(cfg Config) (*Application, error) {
	app := &Application{cfg: cfg}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file in the data dir.
	logFile, err := os.OpenFile(
		filepath.Join(cfg.DataDir, "reqtrack.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600,
	)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	app.logFile = logFile
	app.logger = slogx.New(logFile, slogx.Config{
		Service: "reqtrack",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	if err := app.initStore(); err != nil {
		_ = logFile.Close()
		return nil, err
	}

	if err := app.initSession(); err != nil {
		_ = app.db.Close()
		_ = logFile.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the TUI and blocks until the user quits.
func (app *Application) Run() error {
	app.logger.Info("tracker client starting", "api_url", app.cfg.APIURL, "version", BuildVersion)

	model := ui.New(app.manager, app.client, app.db, app.logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	_, err := program.Run()
	if shutdownErr := app.Shutdown(); err == nil {
		err = shutdownErr
	}
	return err
}

// Shutdown releases resources.
func (app *Application) Shutdown() error {
	app.logger.Info("tracker client stopping")

	var firstErr error
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing settings store", "error", err)
		firstErr = err
	}
	if err := app.logFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// initStore opens the settings database and applies migrations.
func (app *Application) initStore() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL",
		filepath.Join(app.cfg.DataDir, "settings.db"))

	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("apply settings migrations: %w", err)
	}

	app.db = db
	app.logger.Info("settings migrations applied")
	return nil
}

// initSession reads the persistence preference (once, at startup), builds
// the cookie jar and API client around it, and creates the session manager.
func (app *Application) initSession() error {
	settings, err := app.db.Settings(context.Background())
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	jar, err := api.NewJar(
		app.cfg.APIURL,
		filepath.Join(app.cfg.DataDir, "cookies.json"),
		settings.PersistLogin,
	)
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}

	creds := &session.Credentials{}
	app.client = api.New(app.cfg.APIURL, creds, jar).
		WithLogger(app.logger).
		WithTimeout(app.cfg.Timeout)

	app.manager = session.NewManager(creds, app.client, app.db, settings.PersistLogin, app.logger).
		WithLogoutGrace(app.cfg.LogoutGrace)

	return nil
}

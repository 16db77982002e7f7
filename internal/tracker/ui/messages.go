package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/redhill/reqtrack/internal/tracker/api"
	"github.com/redhill/reqtrack/internal/tracker/domain"
	"github.com/redhill/reqtrack/internal/tracker/session"
)

// Messages produced by background commands. All network work happens in
// tea.Cmd goroutines; the update loop stays non-blocking.

type bootstrapMsg struct {
	state session.State
	err   error // non-nil only for retryable transport failures
}

type loginMsg struct {
	err error
}

type logoutMsg struct {
	err error
}

type requestsMsg struct {
	requests []domain.Request
	err      error
}

type usersMsg struct {
	users []domain.User
	err   error
}

// savedMsg reports the outcome of a create/update/delete mutation.
type savedMsg struct {
	err error
}

type prefetchedMsg struct{}

type colorModeSavedMsg struct {
	mode string
	err  error
}

func bootstrapCmd(m *session.Manager) tea.Cmd {
	return func() tea.Msg {
		state, err := m.Bootstrap(context.Background())
		return bootstrapMsg{state: state, err: err}
	}
}

func loginCmd(c *api.Client, username, password string) tea.Cmd {
	return func() tea.Msg {
		return loginMsg{err: c.Login(context.Background(), username, password)}
	}
}

func logoutCmd(m *session.Manager) tea.Cmd {
	return func() tea.Msg {
		return logoutMsg{err: m.Logout(context.Background())}
	}
}

func prefetchCmd(m *session.Manager) tea.Cmd {
	return func() tea.Msg {
		m.Prefetch(context.Background())
		return prefetchedMsg{}
	}
}

func loadRequestsCmd(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		requests, err := c.ListRequests(context.Background())
		if err == nil {
			domain.SortRequests(requests)
		}
		return requestsMsg{requests: requests, err: err}
	}
}

func loadUsersCmd(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		users, err := c.ListUsers(context.Background())
		return usersMsg{users: users, err: err}
	}
}

func saveCmd(run func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: run(context.Background())}
	}
}

func setColorModeCmd(prefs colorModeStore, mode string) tea.Cmd {
	return func() tea.Msg {
		return colorModeSavedMsg{mode: mode, err: prefs.SetColorMode(context.Background(), mode)}
	}
}

// colorModeStore is the slice of the settings store the UI needs.
type colorModeStore interface {
	SetColorMode(ctx context.Context, mode string) error
}

package ui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/redhill/reqtrack/internal/tracker/api"
)

const (
	loginFocusUsername = iota
	loginFocusPassword
	loginFocusTrust
)

// loginModel is the employee login screen: username, password, and the
// "Trust This Device" toggle that gates silent re-authentication.
type loginModel struct {
	username textinput.Model
	password textinput.Model
	focus    int
	trust    bool
	errMsg   string
	busy     bool
}

func newLoginModel(trust bool) loginModel {
	username := textinput.New()
	username.Placeholder = "Username"
	username.Focus()
	username.CharLimit = 64

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	return loginModel{
		username: username,
		password: password,
		trust:    trust,
	}
}

// submit reports whether the form is ready and hands back the credentials.
func (m *loginModel) submit() (username, password string, ok bool) {
	username = strings.TrimSpace(m.username.Value())
	password = m.password.Value()
	if username == "" || password == "" {
		m.errMsg = "Missing Username or Password"
		return "", "", false
	}
	return username, password, true
}

func (m *loginModel) setFocus(focus int) {
	m.focus = focus
	m.username.Blur()
	m.password.Blur()
	switch focus {
	case loginFocusUsername:
		m.username.Focus()
	case loginFocusPassword:
		m.password.Focus()
	}
}

// update handles editing keys. Navigation (tab/enter) and the trust toggle
// are handled by the root model, which owns the session manager.
func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case loginFocusUsername:
		m.username, cmd = m.username.Update(msg)
	case loginFocusPassword:
		m.password, cmd = m.password.Update(msg)
	}

	// Editing clears a stale error line, like the original form.
	if _, isKey := msg.(tea.KeyMsg); isKey && m.focus != loginFocusTrust {
		m.errMsg = ""
	}
	return m, cmd
}

func (m loginModel) view(s Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render("Employee Login"))
	b.WriteString("\n\n")
	if m.errMsg != "" {
		b.WriteString(s.Error.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	check := "[ ]"
	if m.trust {
		check = "[x]"
	}
	trustLine := fmt.Sprintf("%s Trust This Device", check)
	if m.focus == loginFocusTrust {
		trustLine = s.Selected.Render(trustLine)
	} else {
		trustLine = s.Label.Render(trustLine)
	}
	b.WriteString(trustLine)
	b.WriteString("\n\n")

	if m.busy {
		b.WriteString(s.Muted.Render("logging in..."))
	} else {
		b.WriteString(s.Muted.Render("tab: next field • space: toggle trust • enter: log in"))
	}

	return s.Box.Render(b.String())
}

// loginErrorMessage maps a login failure to the user-facing message line.
func loginErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	apiErr, ok := api.AsAPIError(err)
	if !ok {
		return "No Server Response"
	}

	switch apiErr.Status {
	case http.StatusBadRequest:
		return "Missing Username or Password"
	case http.StatusUnauthorized:
		return "Unauthorized"
	default:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Error()
	}
}

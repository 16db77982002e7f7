package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/redhill/reqtrack/internal/tracker/api"
	"github.com/redhill/reqtrack/internal/tracker/domain"
)

const (
	userFieldUsername = iota
	userFieldPassword
	userFieldRoles  // one toggle row per role
	userFieldActive = userFieldRoles + 3
	userFieldCount  = userFieldActive + 1
)

// userFormModel edits one account. A nil original means create, where a
// password is required; on edit an empty password leaves it unchanged.
type userFormModel struct {
	original *domain.User

	username textinput.Model
	password textinput.Model
	roles    map[domain.Role]bool
	active   bool

	focus  int
	errMsg string
}

func newUserFormModel(original *domain.User) userFormModel {
	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	m := userFormModel{
		username: username,
		password: password,
		roles:    map[domain.Role]bool{domain.RoleSales: true},
		active:   true,
	}

	if original != nil {
		copied := *original
		m.original = &copied
		m.username.SetValue(original.Username)
		m.password.Placeholder = "Password (leave empty to keep)"
		m.active = original.Active
		m.roles = map[domain.Role]bool{}
		for _, r := range original.RoleSet() {
			m.roles[r] = true
		}
	}

	return m
}

func (m *userFormModel) nextField() { m.setFocus((m.focus + 1) % userFieldCount) }
func (m *userFormModel) prevField() {
	m.setFocus((m.focus + userFieldCount - 1) % userFieldCount)
}

func (m *userFormModel) setFocus(focus int) {
	m.focus = focus
	m.username.Blur()
	m.password.Blur()
	switch focus {
	case userFieldUsername:
		m.username.Focus()
	case userFieldPassword:
		m.password.Focus()
	}
}

// toggle flips the focused role or active checkbox. It reports whether the
// key was consumed so text fields still receive spaces.
func (m *userFormModel) toggle(tea.KeyMsg) bool {
	switch {
	case m.focus >= userFieldRoles && m.focus < userFieldActive:
		role := domain.AllRoles[m.focus-userFieldRoles]
		m.roles[role] = !m.roles[role]
		return true
	case m.focus == userFieldActive:
		m.active = !m.active
		return true
	}
	return false
}

func (m *userFormModel) selectedRoles() []string {
	roles := make([]domain.Role, 0, len(domain.AllRoles))
	for _, r := range domain.AllRoles {
		if m.roles[r] {
			roles = append(roles, r)
		}
	}
	return domain.Strings(roles)
}

// submit validates the form and returns the mutation to run.
func (m *userFormModel) submit(c *api.Client) (func(context.Context) error, bool) {
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()

	if username == "" {
		m.errMsg = "Username is required"
		return nil, false
	}
	if m.original == nil && password == "" {
		m.errMsg = "Password is required"
		return nil, false
	}
	roles := m.selectedRoles()
	if len(roles) == 0 {
		m.errMsg = "Select at least one role"
		return nil, false
	}

	if m.original == nil {
		payload := api.NewUser{Username: username, Password: password, Roles: roles}
		return func(ctx context.Context) error {
			return c.CreateUser(ctx, payload)
		}, true
	}

	payload := api.UserUpdate{
		ID:       m.original.ID,
		Username: username,
		Roles:    roles,
		Active:   m.active,
		Password: password,
	}
	return func(ctx context.Context) error {
		return c.UpdateUser(ctx, payload)
	}, true
}

func (m userFormModel) update(msg tea.Msg) (userFormModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case userFieldUsername:
		m.username, cmd = m.username.Update(msg)
	case userFieldPassword:
		m.password, cmd = m.password.Update(msg)
	}
	if _, isKey := msg.(tea.KeyMsg); isKey {
		m.errMsg = ""
	}
	return m, cmd
}

func (m userFormModel) view(s Styles) string {
	var b strings.Builder

	heading := "New User"
	if m.original != nil {
		heading = "Edit User"
	}
	b.WriteString(s.Title.Render(heading))
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(s.Error.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	for i, role := range domain.AllRoles {
		check := "[ ]"
		if m.roles[role] {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s", check, role)
		if m.focus == userFieldRoles+i {
			line = s.Selected.Render(line)
		} else {
			line = s.Label.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	check := "[ ]"
	if m.active {
		check = "[x]"
	}
	activeLine := check + " Active"
	if m.focus == userFieldActive {
		activeLine = s.Selected.Render(activeLine)
	} else {
		activeLine = s.Label.Render(activeLine)
	}
	b.WriteString(activeLine)
	b.WriteString("\n\n")
	b.WriteString(s.Muted.Render("tab: next field • space: toggle • enter: save • esc: cancel"))

	return s.Box.Render(b.String())
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/redhill/reqtrack/internal/tracker/domain"
)

// usersModel renders the account list. The whole screen is admin-gated by
// the router; the model itself just displays.
type usersModel struct {
	table table.Model
	users []domain.User
}

func newUsersModel(s Styles) usersModel {
	columns := []table.Column{
		{Title: "Username", Width: 24},
		{Title: "Roles", Width: 30},
		{Title: "Active", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	m := usersModel{table: t}
	m.restyle(s)
	return m
}

func (m *usersModel) restyle(s Styles) {
	styles := table.DefaultStyles()
	styles.Header = s.Header
	styles.Selected = s.Selected
	m.table.SetStyles(styles)
}

func (m *usersModel) resize(width, height int) {
	if height > 10 {
		m.table.SetHeight(height - 8)
	}
}

func (m *usersModel) setUsers(users []domain.User) {
	m.users = users

	rows := make([]table.Row, len(users))
	for i, u := range users {
		active := "yes"
		if !u.Active {
			active = "no"
		}
		rows[i] = table.Row{u.Username, strings.Join(u.Roles, ", "), active}
	}
	m.table.SetRows(rows)
}

func (m *usersModel) selected() *domain.User {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.users) {
		return nil
	}
	return &m.users[i]
}

func (m usersModel) update(msg tea.Msg) (usersModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m usersModel) view(s Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render("Users"))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("n: new • e: edit • d: delete • R: reload • esc: back"))

	return b.String()
}

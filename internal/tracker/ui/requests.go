package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/redhill/reqtrack/internal/tracker/domain"
)

// requestsModel renders the request list as a table, open requests first.
// Selecting a row toggles a detail pane with the full request text.
type requestsModel struct {
	table    table.Model
	requests []domain.Request
	detail   bool
}

func newRequestsModel(s Styles) requestsModel {
	columns := []table.Column{
		{Title: "Title", Width: 32},
		{Title: "Customer", Width: 18},
		{Title: "Type", Width: 12},
		{Title: "Owner", Width: 14},
		{Title: "Opened", Width: 10},
		{Title: "Status", Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	m := requestsModel{table: t}
	m.restyle(s)
	return m
}

func (m *requestsModel) restyle(s Styles) {
	styles := table.DefaultStyles()
	styles.Header = s.Header
	styles.Selected = s.Selected
	m.table.SetStyles(styles)
}

func (m *requestsModel) resize(width, height int) {
	if height > 10 {
		m.table.SetHeight(height - 8)
	}
}

func (m *requestsModel) setRequests(requests []domain.Request) {
	m.requests = requests

	rows := make([]table.Row, len(requests))
	for i, r := range requests {
		status := "open"
		if r.Completed {
			status = "completed"
		}
		opened := ""
		if created := r.Created(); !created.IsZero() {
			opened = created.Format("2006-01-02")
		}
		rows[i] = table.Row{r.Title, r.Customer, r.Type, r.OwnerName, opened, status}
	}
	m.table.SetRows(rows)
}

func (m *requestsModel) selected() *domain.Request {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.requests) {
		return nil
	}
	return &m.requests[i]
}

func (m requestsModel) update(msg tea.Msg) (requestsModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m requestsModel) view(s Styles, id domain.Identity) string {
	var b strings.Builder

	b.WriteString(s.Title.Render("Requests"))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.detail {
		if req := m.selected(); req != nil {
			b.WriteString("\n")
			b.WriteString(m.detailPane(s, *req))
			b.WriteString("\n")
		}
	}

	help := "enter: detail • n: new • e: edit • R: reload • esc: back"
	if id.IsEngineer || id.IsAdmin {
		help = "enter: detail • n: new • e: edit • c: toggle complete • R: reload • esc: back"
	}
	if id.IsAdmin {
		help += " • d: delete"
	}
	b.WriteString(s.Muted.Render(help))

	return b.String()
}

func (m requestsModel) detailPane(s Styles, r domain.Request) string {
	var b strings.Builder

	title := r.Title
	if r.Completed {
		title = s.Completed.Render(title)
	} else {
		title = s.Header.Render(title)
	}
	b.WriteString(title)
	b.WriteString("\n")

	b.WriteString(s.Label.Render(fmt.Sprintf("requester: %s  owner: %s  customer: %s",
		r.RequesterName, r.OwnerName, r.Customer)))
	b.WriteString("\n")
	if r.Ticket != "" {
		b.WriteString(s.Label.Render("ticket: " + r.Ticket))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(r.Text)

	return s.Box.Render(b.String())
}

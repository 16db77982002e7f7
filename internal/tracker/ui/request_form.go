package ui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/redhill/reqtrack/internal/tracker/api"
	"github.com/redhill/reqtrack/internal/tracker/domain"
)

const (
	reqFieldTitle = iota
	reqFieldCustomer
	reqFieldType
	reqFieldText
	reqFieldCount
)

// requestFormModel edits one request. A nil original means create; on
// create the current user becomes both requester and owner and the server
// fills in display names.
type requestFormModel struct {
	original     *domain.Request
	newRequester string
	newOwner     string

	title    textinput.Model
	customer textinput.Model
	reqType  textinput.Model
	text     textarea.Model

	focus  int
	errMsg string
}

func newRequestFormModel(original *domain.Request, id domain.Identity) requestFormModel {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 120
	title.Focus()

	customer := textinput.New()
	customer.Placeholder = "Customer"
	customer.CharLimit = 80

	reqType := textinput.New()
	reqType.Placeholder = "Type"
	reqType.CharLimit = 40

	text := textarea.New()
	text.Placeholder = "Describe the request"
	text.SetHeight(6)

	m := requestFormModel{
		title:    title,
		customer: customer,
		reqType:  reqType,
		text:     text,
	}

	if original != nil {
		copied := *original
		m.original = &copied
		m.title.SetValue(original.Title)
		m.customer.SetValue(original.Customer)
		m.reqType.SetValue(original.Type)
		m.text.SetValue(original.Text)
	} else {
		// New requests start owned by their requester.
		self := strconv.FormatInt(id.UserID, 10)
		m.original = nil
		m.newRequester = self
		m.newOwner = self
	}

	return m
}

func (m *requestFormModel) nextField() { m.setFocus((m.focus + 1) % reqFieldCount) }
func (m *requestFormModel) prevField() {
	m.setFocus((m.focus + reqFieldCount - 1) % reqFieldCount)
}

func (m *requestFormModel) setFocus(focus int) {
	m.focus = focus
	m.title.Blur()
	m.customer.Blur()
	m.reqType.Blur()
	m.text.Blur()

	switch focus {
	case reqFieldTitle:
		m.title.Focus()
	case reqFieldCustomer:
		m.customer.Focus()
	case reqFieldType:
		m.reqType.Focus()
	case reqFieldText:
		m.text.Focus()
	}
}

// submit validates the form and returns the mutation to run.
func (m *requestFormModel) submit(c *api.Client) (func(context.Context) error, bool) {
	title := strings.TrimSpace(m.title.Value())
	customer := strings.TrimSpace(m.customer.Value())
	reqType := strings.TrimSpace(m.reqType.Value())
	text := strings.TrimSpace(m.text.Value())

	if title == "" || customer == "" || text == "" {
		m.errMsg = "Title, customer and description are required"
		return nil, false
	}

	if m.original == nil {
		payload := api.NewRequest{
			Requester: m.newRequester,
			Owner:     m.newOwner,
			Type:      reqType,
			Customer:  customer,
			Title:     title,
			Text:      text,
		}
		return func(ctx context.Context) error {
			return c.CreateRequest(ctx, payload)
		}, true
	}

	payload := requestUpdateFrom(*m.original)
	payload.Type = reqType
	payload.Customer = customer
	payload.Title = title
	payload.Text = text
	return func(ctx context.Context) error {
		return c.UpdateRequest(ctx, payload)
	}, true
}

func (m requestFormModel) update(msg tea.Msg) (requestFormModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case reqFieldTitle:
		m.title, cmd = m.title.Update(msg)
	case reqFieldCustomer:
		m.customer, cmd = m.customer.Update(msg)
	case reqFieldType:
		m.reqType, cmd = m.reqType.Update(msg)
	case reqFieldText:
		m.text, cmd = m.text.Update(msg)
	}
	if _, isKey := msg.(tea.KeyMsg); isKey {
		m.errMsg = ""
	}
	return m, cmd
}

func (m requestFormModel) view(s Styles) string {
	var b strings.Builder

	heading := "New Request"
	if m.original != nil {
		heading = "Edit Request"
	}
	b.WriteString(s.Title.Render(heading))
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(s.Error.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(m.title.View())
	b.WriteString("\n")
	b.WriteString(m.customer.View())
	b.WriteString("\n")
	b.WriteString(m.reqType.View())
	b.WriteString("\n\n")
	b.WriteString(m.text.View())
	b.WriteString("\n\n")
	b.WriteString(s.Muted.Render("tab: next field • ctrl+s: save • esc: cancel"))

	return s.Box.Render(b.String())
}

// requestUpdateFrom seeds an update payload with a request's current state,
// so partial edits do not blank the untouched fields.
func requestUpdateFrom(r domain.Request) api.RequestUpdate {
	return api.RequestUpdate{
		ID:        r.ID,
		Requester: r.Requester,
		Owner:     r.Owner,
		Type:      r.Type,
		Customer:  r.Customer,
		Title:     r.Title,
		Text:      r.Text,
		Completed: r.Completed,
	}
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/redhill/reqtrack/internal/tracker/api"
	"github.com/redhill/reqtrack/internal/tracker/domain"
	"github.com/redhill/reqtrack/internal/tracker/session"
	"github.com/redhill/reqtrack/internal/tracker/store"
)

// route identifies a top-level screen. Protected routes are gated through
// the session manager before they render.
type route int

const (
	routeBootstrap route = iota
	routeLogin
	routeHome
	routeRequests
	routeRequestForm
	routeUsers
	routeUserForm
)

func (r route) String() string {
	switch r {
	case routeBootstrap:
		return "bootstrap"
	case routeLogin:
		return "login"
	case routeHome:
		return "home"
	case routeRequests:
		return "requests"
	case routeRequestForm:
		return "request-form"
	case routeUsers:
		return "users"
	case routeUserForm:
		return "user-form"
	}
	return "unknown"
}

// requiredRoles returns the role set that may enter a route. A nil slice
// means the route is public.
func requiredRoles(r route) []domain.Role {
	switch r {
	case routeUsers, routeUserForm:
		return []domain.Role{domain.RoleAdmin}
	case routeHome, routeRequests, routeRequestForm:
		return domain.AllRoles
	}
	return nil
}

// Model is the root program model. It owns routing, the bootstrap gate and
// the status bar; the per-screen models only know how to edit and render
// themselves.
type Model struct {
	manager *session.Manager
	client  *api.Client
	prefs   store.Store
	logger  *slog.Logger

	styles    Styles
	colorMode string

	route     route
	attempted route // where a denied navigation wanted to go
	width     int
	height    int

	spinner spinner.Model
	bootErr error

	login       loginModel
	requests    requestsModel
	requestForm requestFormModel
	users       usersModel
	userForm    userFormModel

	status string
	busy   bool
}

// New wires the root model. The initial color mode comes from the settings
// store; a read failure just falls back to the dark default.
func New(manager *session.Manager, client *api.Client, prefs store.Store, logger *slog.Logger) Model {
	colorMode := store.ColorModeDark
	if settings, err := prefs.Settings(context.Background()); err == nil {
		colorMode = settings.ColorMode
	} else {
		logger.Warn("settings read failed, using defaults", "error", err)
	}
	styles := newStyles(colorMode)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Selected

	return Model{
		manager:   manager,
		client:    client,
		prefs:     prefs,
		logger:    logger,
		styles:    styles,
		colorMode: colorMode,
		route:     routeBootstrap,
		attempted: routeHome,
		spinner:   sp,
		login:     newLoginModel(manager.PersistLogin()),
		requests:  newRequestsModel(styles),
		users:     newUsersModel(styles),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, bootstrapCmd(m.manager))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.requests.resize(msg.Width, msg.Height)
		m.users.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bootstrapMsg:
		return m.onBootstrap(msg)

	case loginMsg:
		return m.onLogin(msg)

	case logoutMsg:
		m.login = newLoginModel(m.manager.PersistLogin())
		m.attempted = routeHome
		m.route = routeLogin
		m.status = "Logged out"
		return m, nil

	case requestsMsg:
		return m.onRequests(msg)

	case usersMsg:
		return m.onUsers(msg)

	case savedMsg:
		return m.onSaved(msg)

	case prefetchedMsg:
		if cached, ok := m.manager.Cache().Requests(); ok {
			m.requests.setRequests(cached)
		}
		if cached, ok := m.manager.Cache().Users(); ok {
			m.users.setUsers(cached)
		}
		return m, nil

	case colorModeSavedMsg:
		if msg.err != nil {
			m.status = "Could not save theme: " + msg.err.Error()
			return m, nil
		}
		m.colorMode = msg.mode
		m.styles = newStyles(msg.mode)
		m.requests.restyle(m.styles)
		m.users.restyle(m.styles)
		return m, nil

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	return m, nil
}

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		next := store.ColorModeLight
		if m.colorMode == store.ColorModeLight {
			next = store.ColorModeDark
		}
		return m, setColorModeCmd(m.prefs, next)
	case "ctrl+l":
		if m.manager.State() == session.StateAuthenticated {
			return m, logoutCmd(m.manager)
		}
	}

	switch m.route {
	case routeBootstrap:
		return m.keyBootstrap(msg)
	case routeLogin:
		return m.keyLogin(msg)
	case routeHome:
		return m.keyHome(msg)
	case routeRequests:
		return m.keyRequests(msg)
	case routeRequestForm:
		return m.keyRequestForm(msg)
	case routeUsers:
		return m.keyUsers(msg)
	case routeUserForm:
		return m.keyUserForm(msg)
	}
	return m, nil
}

// keyBootstrap only reacts to a retry while the gate reports a transport
// failure; everything else waits for the bootstrap result.
func (m Model) keyBootstrap(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.bootErr != nil && msg.String() == "r" {
		m.bootErr = nil
		return m, bootstrapCmd(m.manager)
	}
	return m, nil
}

func (m Model) onBootstrap(msg bootstrapMsg) (tea.Model, tea.Cmd) {
	switch msg.state {
	case session.StateAuthenticated:
		m.bootErr = nil
		model, cmd := m.navigate(m.attempted)
		return model, tea.Batch(cmd, prefetchCmd(m.manager))
	case session.StateUnauthenticated:
		m.bootErr = nil
		m.route = routeLogin
		return m, nil
	default:
		// Still pending: transport failure, refresh credential may be fine.
		m.bootErr = msg.err
		return m, nil
	}
}

func (m Model) keyLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.login.setFocus((m.login.focus + 1) % 3)
		return m, nil
	case "shift+tab", "up":
		m.login.setFocus((m.login.focus + 2) % 3)
		return m, nil
	case " ":
		if m.login.focus == loginFocusTrust {
			next := !m.login.trust
			if err := m.manager.SetPersist(context.Background(), next); err != nil {
				m.login.errMsg = "Could not save preference"
				return m, nil
			}
			m.login.trust = next
			return m, nil
		}
	case "enter":
		username, password, ok := m.login.submit()
		if !ok {
			return m, nil
		}
		m.login.busy = true
		return m, loginCmd(m.client, username, password)
	}

	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

func (m Model) onLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		m.login.errMsg = loginErrorMessage(msg.err)
		return m, nil
	}

	m.manager.LoggedIn()
	m.login = newLoginModel(m.manager.PersistLogin())

	target := m.attempted
	m.attempted = routeHome
	model, cmd := m.navigate(target)
	return model, tea.Batch(cmd, prefetchCmd(m.manager))
}

// navigate moves to a route through the authorization gate. Unauthenticated
// users are parked on login with the attempted route preserved; an
// insufficient role set stays put with a status message.
func (m Model) navigate(target route) (Model, tea.Cmd) {
	required := requiredRoles(target)
	if required != nil {
		if m.manager.State() != session.StateAuthenticated {
			m.attempted = target
			m.route = routeLogin
			return m, nil
		}
		decision := session.Authorize(m.manager.Identity(), target.String(), required...)
		if !decision.Allowed {
			m.status = "You are not authorized to view " + decision.Attempted
			return m, nil
		}
	}

	m.route = target
	m.status = ""

	switch target {
	case routeRequests:
		if cached, ok := m.manager.Cache().Requests(); ok {
			m.requests.setRequests(cached)
			return m, nil
		}
		m.busy = true
		return m, loadRequestsCmd(m.client)
	case routeUsers:
		if cached, ok := m.manager.Cache().Users(); ok {
			m.users.setUsers(cached)
			return m, nil
		}
		m.busy = true
		return m, loadUsersCmd(m.client)
	}
	return m, nil
}

func (m Model) keyHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m.navigate(routeRequests)
	case "u":
		return m.navigate(routeUsers)
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) keyRequests(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.manager.Identity()

	switch msg.String() {
	case "esc", "h":
		if m.requests.detail {
			m.requests.detail = false
			return m, nil
		}
		return m.navigate(routeHome)
	case "enter":
		if m.requests.selected() != nil {
			m.requests.detail = !m.requests.detail
		}
		return m, nil
	case "n":
		m.requestForm = newRequestFormModel(nil, id)
		m.route = routeRequestForm
		return m, nil
	case "e":
		if req := m.requests.selected(); req != nil {
			m.requestForm = newRequestFormModel(req, id)
			m.route = routeRequestForm
		}
		return m, nil
	case "c":
		req := m.requests.selected()
		if req == nil || !(id.IsEngineer || id.IsAdmin) {
			return m, nil
		}
		update := requestUpdateFrom(*req)
		update.Completed = !req.Completed
		m.busy = true
		return m, saveCmd(func(ctx context.Context) error {
			return m.client.UpdateRequest(ctx, update)
		})
	case "d":
		req := m.requests.selected()
		if req == nil || !id.IsAdmin {
			return m, nil
		}
		reqID := req.ID
		m.busy = true
		return m, saveCmd(func(ctx context.Context) error {
			return m.client.DeleteRequest(ctx, reqID)
		})
	case "R":
		m.busy = true
		return m, loadRequestsCmd(m.client)
	}

	var cmd tea.Cmd
	m.requests, cmd = m.requests.update(msg)
	return m, cmd
}

func (m Model) keyRequestForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.route = routeRequests
		return m, nil
	case "tab", "down":
		m.requestForm.nextField()
		return m, nil
	case "shift+tab", "up":
		m.requestForm.prevField()
		return m, nil
	case "enter":
		// Enter inserts a newline while the description has focus;
		// ctrl+s always saves.
		if m.requestForm.focus == reqFieldText {
			break
		}
		fallthrough
	case "ctrl+s":
		save, ok := m.requestForm.submit(m.client)
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, saveCmd(save)
	}

	var cmd tea.Cmd
	m.requestForm, cmd = m.requestForm.update(msg)
	return m, cmd
}

func (m Model) keyUsers(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "h":
		return m.navigate(routeHome)
	case "n":
		m.userForm = newUserFormModel(nil)
		m.route = routeUserForm
		return m, nil
	case "e":
		if u := m.users.selected(); u != nil {
			m.userForm = newUserFormModel(u)
			m.route = routeUserForm
		}
		return m, nil
	case "d":
		if u := m.users.selected(); u != nil {
			userID := u.ID
			m.busy = true
			return m, saveCmd(func(ctx context.Context) error {
				return m.client.DeleteUser(ctx, userID)
			})
		}
		return m, nil
	case "R":
		m.busy = true
		return m, loadUsersCmd(m.client)
	}

	var cmd tea.Cmd
	m.users, cmd = m.users.update(msg)
	return m, cmd
}

func (m Model) keyUserForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.route = routeUsers
		return m, nil
	case "tab", "down":
		m.userForm.nextField()
		return m, nil
	case "shift+tab", "up":
		m.userForm.prevField()
		return m, nil
	case " ":
		if m.userForm.toggle(msg) {
			return m, nil
		}
	case "enter":
		save, ok := m.userForm.submit(m.client)
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, saveCmd(save)
	}

	var cmd tea.Cmd
	m.userForm, cmd = m.userForm.update(msg)
	return m, cmd
}

func (m Model) onRequests(msg requestsMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		return m.onRequestError(msg.err)
	}
	m.manager.Cache().SetRequests(msg.requests)
	m.requests.setRequests(msg.requests)
	return m, nil
}

func (m Model) onUsers(msg usersMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		return m.onRequestError(msg.err)
	}
	m.manager.Cache().SetUsers(msg.users)
	m.users.setUsers(msg.users)
	return m, nil
}

func (m Model) onSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		return m.onRequestError(msg.err)
	}

	// A mutation succeeded: reload the affected list and return to it.
	switch m.route {
	case routeRequestForm:
		m.route = routeRequests
		fallthrough
	case routeRequests:
		m.busy = true
		return m, loadRequestsCmd(m.client)
	case routeUserForm:
		m.route = routeUsers
		fallthrough
	case routeUsers:
		m.busy = true
		return m, loadUsersCmd(m.client)
	}
	return m, nil
}

// onRequestError routes API failures. Session expiry clears back to login
// with the current route preserved for after re-authentication; everything
// else becomes a status line.
func (m Model) onRequestError(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, api.ErrSessionExpired) {
		m.attempted = m.route
		m.route = routeLogin
		m.login = newLoginModel(m.manager.PersistLogin())
		m.login.errMsg = api.ErrSessionExpired.Message
		m.manager.Credentials().Clear()
		return m, nil
	}

	if apiErr, ok := api.AsAPIError(err); ok {
		m.status = apiErr.Message
	} else {
		m.status = "No Server Response"
	}
	return m, nil
}

func (m Model) View() string {
	var body string

	switch m.route {
	case routeBootstrap:
		body = m.viewBootstrap()
	case routeLogin:
		body = m.login.view(m.styles)
	case routeHome:
		body = m.viewHome()
	case routeRequests:
		body = m.requests.view(m.styles, m.manager.Identity())
	case routeRequestForm:
		body = m.requestForm.view(m.styles)
	case routeUsers:
		body = m.users.view(m.styles)
	case routeUserForm:
		body = m.userForm.view(m.styles)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar())
}

func (m Model) viewBootstrap() string {
	if m.bootErr != nil {
		var b strings.Builder
		b.WriteString(m.styles.Error.Render("Could not reach the tracker"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render(m.bootErr.Error()))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Label.Render("r: retry • ctrl+c: quit"))
		return m.styles.Box.Render(b.String())
	}
	return m.styles.Box.Render(m.spinner.View() + " restoring session...")
}

func (m Model) viewHome() string {
	id := m.manager.Identity()

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Engineering Request Tracker"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Header.Render("Welcome, " + id.Username))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Label.Render("r: requests"))
	b.WriteString("\n")
	if id.IsAdmin {
		b.WriteString(m.styles.Label.Render("u: users"))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Label.Render("ctrl+t: theme • ctrl+l: log out • q: quit"))
	return m.styles.Box.Render(b.String())
}

func (m Model) statusBar() string {
	left := m.route.String()
	if m.busy {
		left += " " + m.spinner.View()
	}

	middle := m.status

	right := ""
	if m.manager.State() == session.StateAuthenticated {
		id := m.manager.Identity()
		right = fmt.Sprintf("%s %s", id.Username, m.styles.StatusRole.Render(id.Status))
	}

	line := m.styles.StatusBar.Render(left)
	if middle != "" {
		line += " " + m.styles.Error.Render(middle)
	}
	if right != "" {
		line += "  " + m.styles.StatusBar.Render(right)
	}
	return line
}

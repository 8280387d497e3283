package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plandy-app/flandy/internal/plandy"
	"github.com/plandy-app/flandy/internal/prefs"
	"github.com/plandy-app/flandy/internal/state"
)

// loginField indexes into the login form inputs.
const (
	fieldName = iota
	fieldEmail
	fieldPassword
	loginFieldCount
)

// loginState holds the sign-in / sign-up form.
type loginState struct {
	registering bool
	inputs      [loginFieldCount]textinput.Model
	focusIdx    int
	submitting  bool
	errLines    []string
}

func newLoginState() loginState {
	var s loginState

	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 80

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 120

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 120

	s.inputs[fieldName] = name
	s.inputs[fieldEmail] = email
	s.inputs[fieldPassword] = password

	s.focusIdx = fieldEmail
	s.inputs[fieldEmail].Focus()
	return s
}

// setError converts an auth failure into display lines. Validation errors
// list every field message; everything else gets one line.
func (s *loginState) setError(err error) {
	var verr *plandy.ValidationError
	if errors.As(err, &verr) {
		s.errLines = verr.Messages()
		return
	}
	if errors.Is(err, plandy.ErrUnavailable) {
		s.errLines = []string{"Backend unreachable. Is the Plandy server running?"}
		return
	}
	s.errLines = []string{err.Error()}
}

// visibleFields returns the form fields active for the current mode.
func (s loginState) visibleFields() []int {
	if s.registering {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

// handleLoginKey processes keyboard input on the login screen.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.submitting {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.cycleLoginFocus(1)
		return m, nil

	case "shift+tab", "up":
		m.cycleLoginFocus(-1)
		return m, nil

	case "ctrl+r":
		// Toggle sign-in / sign-up
		m.login.registering = !m.login.registering
		m.login.errLines = nil
		if !m.login.registering && m.login.focusIdx == fieldName {
			m.cycleLoginFocus(1)
		}
		return m, nil

	case "enter":
		return m.submitLogin()
	}

	// Route everything else to the focused input
	var cmd tea.Cmd
	m.login.inputs[m.login.focusIdx], cmd = m.login.inputs[m.login.focusIdx].Update(msg)
	return m, cmd
}

func (m *Model) cycleLoginFocus(dir int) {
	fields := m.login.visibleFields()
	pos := 0
	for i, f := range fields {
		if f == m.login.focusIdx {
			pos = i
			break
		}
	}
	pos = (pos + dir + len(fields)) % len(fields)

	m.login.inputs[m.login.focusIdx].Blur()
	m.login.focusIdx = fields[pos]
	m.login.inputs[m.login.focusIdx].Focus()
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.login.inputs[fieldName].Value())
	email := strings.TrimSpace(m.login.inputs[fieldEmail].Value())
	password := m.login.inputs[fieldPassword].Value()

	if email == "" || password == "" {
		m.login.errLines = []string{"Email and password are required."}
		return m, nil
	}
	if m.login.registering && name == "" {
		m.login.errLines = []string{"Name is required to sign up."}
		return m, nil
	}

	m.login.submitting = true
	m.login.errLines = nil

	if m.login.registering {
		return m, registerCmd(m.ctx, m.client, m.store, m.prefsPath, m.theme.Name, name, email, password)
	}
	return m, loginCmd(m.ctx, m.client, m.store, m.prefsPath, m.theme.Name, email, password)
}

// renderLogin renders the centered sign-in form.
func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	var b strings.Builder

	b.WriteString(styles.Logo.Render("flandy"))
	b.WriteString(styles.MutedText.Render("  AI-assisted planning"))
	b.WriteString("\n\n")

	title := ternary(m.login.registering, "Create an account", "Sign in")
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n\n")

	for _, f := range m.login.visibleFields() {
		b.WriteString(m.login.inputs[f].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.login.submitting {
		b.WriteString(styles.WarningText.Render("Signing in..."))
		b.WriteString("\n")
	}
	for _, line := range m.login.errLines {
		b.WriteString(styles.DangerText.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	hint := ternary(m.login.registering,
		"enter: sign up   ctrl+r: sign in instead   ctrl+c: quit",
		"enter: sign in   ctrl+r: sign up instead   ctrl+c: quit")
	b.WriteString(styles.FaintText.Render(hint))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// Commands

func loginCmd(ctx context.Context, client *plandy.Client, store *state.Store, prefsPath, themeName, email, password string) tea.Cmd {
	return func() tea.Msg {
		token, user, err := client.Login(ctx, email, password)
		if err != nil {
			return authMsg{err: err}
		}
		store.SetSession(token, user)
		if prefsPath != "" {
			_ = prefs.Save(prefsPath, prefs.Prefs{Theme: themeName, Token: token})
		}
		return authMsg{token: token, user: user}
	}
}

func registerCmd(ctx context.Context, client *plandy.Client, store *state.Store, prefsPath, themeName, name, email, password string) tea.Cmd {
	return func() tea.Msg {
		token, user, err := client.Register(ctx, email, password, "", name)
		if err != nil {
			return authMsg{err: err}
		}
		store.SetSession(token, user)
		if prefsPath != "" {
			_ = prefs.Save(prefsPath, prefs.Prefs{Theme: themeName, Token: token})
		}
		return authMsg{token: token, user: user}
	}
}

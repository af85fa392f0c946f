package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/state"
)

// loginForm holds the sign-in inputs. Field errors from the server (such as
// "These credentials do not match our records.") show under the field.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
}

func newLoginForm(email string) loginForm {
	e := textinput.New()
	e.Prompt = ""
	e.Placeholder = "admin@example.com"
	e.CharLimit = 255
	e.Width = loginWidth - 16
	e.SetValue(email)
	e.Focus()

	p := textinput.New()
	p.Prompt = ""
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'
	p.CharLimit = 255
	p.Width = loginWidth - 16

	return loginForm{email: e, password: p}
}

func (l *loginForm) setFocus(i int) {
	l.focus = i
	if i == 0 {
		l.email.Focus()
		l.password.Blur()
	} else {
		l.email.Blur()
		l.password.Focus()
	}
}

// handleLoginKey processes keys on the sign-in screen.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.store.Auth.Snapshot().Loading {
		return m, nil
	}
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextField):
		m.login.setFocus((m.login.focus + 1) % 2)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.login.setFocus((m.login.focus + 1) % 2)
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if m.login.focus == 0 {
			m.login.setFocus(1)
			return m, nil
		}
		email := strings.TrimSpace(m.login.email.Value())
		return m, loginCmd(m.ctx, m.store.Auth, email, m.login.password.Value())
	}

	var cmd tea.Cmd
	if m.login.focus == 0 {
		m.login.email, cmd = m.login.email.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}

// renderLogin renders the sign-in box.
func (m Model) renderLogin() string {
	styles := m.theme.Styles()
	auth := m.store.Auth.Snapshot()

	label := func(text string, focused bool) string {
		style := styles.MutedText
		if focused {
			style = styles.AccentText
		}
		return style.Width(12).Render(text)
	}

	fields := api.FieldErrorsOf(auth.Err)
	var b strings.Builder
	if !m.online {
		b.WriteString(styles.WarningText.Render("Backend unreachable at startup; sign-in may fail."))
		b.WriteString("\n\n")
	}
	b.WriteString(label("Email", m.login.focus == 0))
	b.WriteString(m.login.email.View())
	b.WriteString("\n")
	if msg := fields["email"]; msg != "" {
		b.WriteString(styles.DangerText.Render(msg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(label("Password", m.login.focus == 1))
	b.WriteString(m.login.password.View())
	b.WriteString("\n")
	if msg := fields["password"]; msg != "" {
		b.WriteString(styles.DangerText.Render(msg))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case auth.Loading:
		b.WriteString(m.spinner.View() + " " + styles.WarningText.Render("Signing in..."))
	case auth.Err != nil && fields == nil:
		b.WriteString(styles.DangerText.Render(loginError(auth.Err)))
	default:
		b.WriteString(styles.FaintText.Render("Enter: Sign in  •  Tab: Next  •  Ctrl+C: Quit"))
	}

	return placeModal(m.theme, "busadmin · Sign in", b.String(), loginWidth, m.width, m.height)
}

func loginError(err error) string {
	if errors.Is(err, state.ErrCredentialsRequired) {
		return "Email and password are required"
	}
	return api.Message(err)
}

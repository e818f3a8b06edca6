package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/stockroom/internal/api"
	"github.com/five82/stockroom/internal/session"
)

// LocationLogin is the location reported while the login screen is shown.
const LocationLogin = api.LoginPath

const (
	loginUser = iota
	loginPassword
	loginCompany
)

// loginForm signs in or, in register mode, creates an account first.
type loginForm struct {
	inputs   [3]textinput.Model
	focus    int
	register bool
	busy     bool
	err      string
	notice   string
}

func newLoginForm(user string) loginForm {
	var f loginForm
	for i := range f.inputs {
		in := textinput.New()
		in.CharLimit = 64
		in.Width = 28
		in.Prompt = ""
		f.inputs[i] = in
	}
	f.inputs[loginUser].Placeholder = "username"
	f.inputs[loginUser].SetValue(user)
	f.inputs[loginPassword].Placeholder = "password"
	f.inputs[loginPassword].EchoMode = textinput.EchoPassword
	f.inputs[loginPassword].EchoCharacter = '•'
	f.inputs[loginCompany].Placeholder = "company name"

	if user != "" {
		f.focus = loginPassword
	}
	f.inputs[f.focus].Focus()
	return f
}

func (f loginForm) fieldCount() int {
	if f.register {
		return 3
	}
	return 2
}

func (f *loginForm) move(delta int) {
	n := f.fieldCount()
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + n) % n
	f.inputs[f.focus].Focus()
}

func (f loginForm) username() string { return strings.TrimSpace(f.inputs[loginUser].Value()) }
func (f loginForm) password() string { return f.inputs[loginPassword].Value() }

type loginResultMsg struct {
	cred session.Credential
	err  error
}

type registerResultMsg struct {
	username string
	err      error
}

func loginCmd(ctx context.Context, client *api.Client, username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, OperationTimeout)
		defer cancel()
		cred, err := client.Login(ctx, api.LoginRequest{Username: username, Password: password})
		return loginResultMsg{cred: cred, err: err}
	}
}

func registerCmd(ctx context.Context, client *api.Client, req api.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, OperationTimeout)
		defer cancel()
		return registerResultMsg{username: req.Username, err: client.Register(ctx, req)}
	}
}

// handleLoginKey processes input while the login screen is shown.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.login
	if f.busy {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		f.move(1)
		return m, nil
	case "shift+tab", "up":
		f.move(-1)
		return m, nil
	case "ctrl+r":
		f.register = !f.register
		f.err, f.notice = "", ""
		if !f.register && f.focus == loginCompany {
			f.move(1)
		}
		return m, nil
	case "enter":
		if f.focus < f.fieldCount()-1 {
			f.move(1)
			return m, nil
		}
		return m.submitLogin()
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return m, cmd
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	f := &m.login
	username, password := f.username(), f.password()
	if username == "" || password == "" {
		f.err = "username and password are required"
		return m, nil
	}
	f.busy = true
	f.err, f.notice = "", ""
	if f.register {
		return m, registerCmd(m.ctx, m.client, api.RegisterRequest{
			Username:    username,
			Password:    password,
			CompanyName: strings.TrimSpace(f.inputs[loginCompany].Value()),
		})
	}
	return m, loginCmd(m.ctx, m.client, username, password)
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		m.login.err = describeLoginError(msg.err)
		m.logger.Info("login failed", zap.String("user", m.login.username()), zap.Error(msg.err))
		return m, nil
	}
	m.role = msg.cred.Role
	m.loggedIn = true
	m.prefs.User = m.login.username()
	m.savePrefs()
	m.login = newLoginForm(m.prefs.User)
	m.setTab(m.startTab())
	m.flash("Signed in as "+m.prefs.User, false)
	return m, m.refreshAllCmd()
}

func (m Model) handleRegisterResult(msg registerResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.login.busy = false
		m.login.err = describeLoginError(msg.err)
		return m, nil
	}
	// Sign straight in with the new account.
	m.login.register = false
	m.login.notice = "Account created"
	return m, loginCmd(m.ctx, m.client, msg.username, m.login.password())
}

func describeLoginError(err error) string {
	if api.IsHTTP(err) {
		if msg := api.Message(err); msg != "" {
			return msg
		}
	}
	return describeError(err)
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()
	f := m.login

	title := "Sign in"
	if f.register {
		title = "Create account"
	}
	labels := []string{"Username", "Password", "Company"}

	var b strings.Builder
	b.WriteString(styles.Logo.Render("stockroom"))
	b.WriteString("  ")
	b.WriteString(styles.MutedText.Render(title))
	b.WriteString("\n\n")
	for i := 0; i < f.fieldCount(); i++ {
		label := labels[i]
		if i == f.focus {
			b.WriteString(styles.AccentText.Render("> " + padRight(label, 9)))
		} else {
			b.WriteString(styles.MutedText.Render("  " + padRight(label, 9)))
		}
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case f.busy:
		b.WriteString(styles.WarningText.Render("Contacting server..."))
	case f.err != "":
		b.WriteString(styles.DangerText.Render(f.err))
	case f.notice != "":
		b.WriteString(styles.SuccessText.Render(f.notice))
	case m.toast != "":
		b.WriteString(styles.WarningText.Render(m.toast))
	default:
		b.WriteString(styles.FaintText.Render(m.client.BaseURL()))
	}
	b.WriteString("\n\n")
	hint := "enter sign in  ctrl+r register  ctrl+c quit"
	if f.register {
		hint = "enter create  ctrl+r back to sign in  ctrl+c quit"
	}
	b.WriteString(styles.FaintText.Render(hint))

	box := styles.Dialog.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

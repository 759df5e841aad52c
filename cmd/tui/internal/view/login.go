package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/pennywise/internal/user"
)

// LoggedInMsg carries the session of a successful login.
type LoggedInMsg struct {
	Session *user.Session
}

type loginFailedMsg struct {
	err error
}

type LoginModel struct {
	users *user.Service
	form  *huh.Form
	err   error
}

func NewLoginModel(users *user.Service) LoginModel {
	return LoginModel{users: users, form: newLoginForm()}
}

func newLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("email cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if failed, ok := msg.(loginFailedMsg); ok {
		m.err = failed.err
		m.form = newLoginForm()

		return m, m.form.Init()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.loginCmd(m.form.GetString("email"), m.form.GetString("password"))
}

func (m LoginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sess, err := m.users.Login(ctx, email, password)
		if err != nil {
			return loginFailedMsg{err: err}
		}

		return LoggedInMsg{Session: sess}
	}
}

func (m LoginModel) View() string {
	s := "Pennywise\n\n" + m.form.View()

	if m.err != nil {
		s += "\n" + errorStyle.Render(describe(m.err))
	}

	return pageStyle.Render(s)
}

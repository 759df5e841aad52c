package view

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/user"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
)

// Services is everything the screens talk to.
type Services struct {
	Users        *user.Service
	Wallets      *wallet.Service
	Goals        *goal.Service
	Categories   *category.Service
	Budgets      *budget.Service
	Transactions *transaction.Service
	Import       *importer.Service
	Export       *export.Service
}

// CommonModel is embedded by all views that act on behalf of the logged in user.
type CommonModel struct {
	svc    Services
	userID uuid.UUID
}

func newCommon(svc Services, userID uuid.UUID) CommonModel {
	return CommonModel{svc: svc, userID: userID}
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	pageStyle    = lipgloss.NewStyle().Padding(1)
)

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func boxed(t table.Model) string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(t.View())
}

// describe shows domain errors by their message and anything else verbatim.
func describe(err error) string {
	if e, ok := apperr.As(err); ok && e.Kind != apperr.KindStore {
		return e.Message
	}

	return err.Error()
}

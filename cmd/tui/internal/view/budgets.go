package view

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/budget"
)

type BudgetsModel struct {
	CommonModel

	table   table.Model
	budgets []*budget.Budget
	names   map[uuid.UUID]string
	loading bool
	err     error
}

func NewBudgetsModel(svc Services, userID uuid.UUID) BudgetsModel {
	return BudgetsModel{
		CommonModel: newCommon(svc, userID),
		table: newTable([]table.Column{
			{Title: "Category", Width: 24},
			{Title: "Remaining", Width: 14},
			{Title: "From", Width: 12},
			{Title: "To", Width: 12},
			{Title: "", Width: 8},
		}),
		loading: true,
	}
}

func (m BudgetsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBudgetsMsg:
		m.loading = false
		m.err = msg.err
		m.budgets = msg.budgets
		m.names = msg.names
		m.refreshTable(time.Now())
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *BudgetsModel) refreshTable(now time.Time) {
	rows := make([]table.Row, 0, len(m.budgets))
	for _, b := range m.budgets {
		state := ""
		switch {
		case now.Before(b.StartDate):
			state = "upcoming"
		case now.After(b.EndDate.AddDate(0, 0, 1)):
			state = "ended"
		case b.Amount.IsNegative():
			state = "over"
		}

		name, ok := m.names[b.CategoryID]
		if !ok {
			name = b.CategoryID.String()
		}

		rows = append(rows, table.Row{name, FormatAmount(b.Amount), FormatDate(b.StartDate), FormatDate(b.EndDate), state})
	}
	m.table.SetRows(rows)
}

func (m BudgetsModel) View() string {
	if m.loading {
		return pageStyle.Render("Loading budgets...")
	}

	if m.err != nil {
		return pageStyle.Render(errorStyle.Render("Error: " + describe(m.err)))
	}

	return pageStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		"Budgets",
		"",
		boxed(m.table),
		faintStyle.Render("Esc: back | r: refresh"),
	))
}

type loadBudgetsMsg struct {
	budgets []*budget.Budget
	names   map[uuid.UUID]string
	err     error
}

func (m BudgetsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		budgets, err := m.svc.Budgets.List(ctx, m.userID, listPage)
		if err != nil {
			return loadBudgetsMsg{err: err}
		}

		cats, err := m.svc.Categories.List(ctx, m.userID, listPage)
		if err != nil {
			return loadBudgetsMsg{err: err}
		}

		names := make(map[uuid.UUID]string, len(cats.Items))
		for _, c := range cats.Items {
			names[c.ID] = c.Name
		}

		return loadBudgetsMsg{budgets: budgets.Items, names: names}
	}
}

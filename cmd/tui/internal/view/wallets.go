package view

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
)

type WalletsModel struct {
	CommonModel

	table   table.Model
	wallets []*wallet.Wallet
	loading bool
	err     error
}

func NewWalletsModel(svc Services, userID uuid.UUID) WalletsModel {
	return WalletsModel{
		CommonModel: newCommon(svc, userID),
		table: newTable([]table.Column{
			{Title: "Name", Width: 30},
			{Title: "Currency", Width: 10},
			{Title: "Balance", Width: 14},
		}),
		loading: true,
	}
}

func (m WalletsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m WalletsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadWalletsMsg:
		m.loading = false
		m.err = msg.err
		m.wallets = msg.wallets
		m.refreshTable()
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

func (m *WalletsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.wallets))
	for _, w := range m.wallets {
		rows = append(rows, table.Row{w.Name, string(w.Currency), FormatAmount(w.Balance)})
	}
	m.table.SetRows(rows)
}

func (m WalletsModel) View() string {
	if m.loading {
		return pageStyle.Render("Loading wallets...")
	}

	if m.err != nil {
		return pageStyle.Render(errorStyle.Render("Error: " + describe(m.err)))
	}

	return pageStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		"Wallets",
		"",
		boxed(m.table),
		faintStyle.Render("Esc: back | r: refresh"),
	))
}

type loadWalletsMsg struct {
	wallets []*wallet.Wallet
	err     error
}

func (m WalletsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Wallets.List(ctx, m.userID, listPage)
		return loadWalletsMsg{wallets: res.Items, err: err}
	}
}

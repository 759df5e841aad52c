package view

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

// TransactionsModel browses active or soft-deleted transactions.
type TransactionsModel struct {
	CommonModel

	table   table.Model
	txs     []*transaction.Transaction
	deleted bool
	loading bool
	err     error
	status  string
}

func NewTransactionsModel(svc Services, userID uuid.UUID) TransactionsModel {
	return TransactionsModel{
		CommonModel: newCommon(svc, userID),
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "From", Width: 8},
			{Title: "Type", Width: 8},
			{Title: "Amount", Width: 12},
			{Title: "Note", Width: 40},
		}),
		loading: true,
	}
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTxsMsg:
		m.loading = false
		m.err = msg.err
		m.txs = msg.txs
		m.refreshTable()
		return m, nil

	case txChangedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + describe(msg.err))
		}
		return m, m.loadCmd()

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
		case "d":
			m.deleted = !m.deleted
			m.status = ""
			m.loading = true
			return m, m.loadCmd()
		case "x":
			if tx := m.selected(); tx != nil && !m.deleted {
				return m, m.softDeleteCmd(tx.ID)
			}
		case "u":
			if tx := m.selected(); tx != nil && m.deleted {
				return m, m.restoreCmd(tx.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m TransactionsModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		amount := FormatAmount(tx.Amount)
		if tx.Type == ledger.Expense {
			amount = "-" + amount
		}

		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Source.Kind),
			string(tx.Type),
			amount,
			tx.Note,
		})
	}
	m.table.SetRows(rows)
}

func (m TransactionsModel) View() string {
	if m.loading {
		return pageStyle.Render("Loading transactions...")
	}

	if m.err != nil {
		return pageStyle.Render(errorStyle.Render("Error: " + describe(m.err)))
	}

	title, help := "Transactions", "Esc: back | r: refresh | d: show deleted | x: delete"
	if m.deleted {
		title, help = "Deleted Transactions", "Esc: back | r: refresh | d: show active | u: restore"
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", boxed(m.table), faintStyle.Render(help))
	if m.status != "" {
		content = m.status + "\n" + content
	}

	return pageStyle.Render(content)
}

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	deleted := m.deleted

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		list := m.svc.Transactions.List
		if deleted {
			list = m.svc.Transactions.ListDeleted
		}

		res, err := list(ctx, m.userID, listPage)
		return loadTxsMsg{txs: res.Items, err: err}
	}
}

type txChangedMsg struct {
	status string
	err    error
}

func (m TransactionsModel) softDeleteCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.svc.Transactions.SoftDelete(ctx, id, m.userID); err != nil {
			return txChangedMsg{err: err}
		}

		return txChangedMsg{status: "Transaction soft deleted successfully"}
	}
}

func (m TransactionsModel) restoreCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Transactions.Restore(ctx, id, m.userID)
		if err != nil {
			return txChangedMsg{err: err}
		}

		status := "Transaction restored successfully"
		if res.BudgetOverrun {
			status = warnStyle.Render(status + ", budget exceeded")
		}

		return txChangedMsg{status: status}
	}
}

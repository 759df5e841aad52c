package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pennywise/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/pennywise/internal/budget/store"
	"github.com/MrJamesThe3rd/pennywise/internal/cache"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	categoryStore "github.com/MrJamesThe3rd/pennywise/internal/category/store"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	goalStore "github.com/MrJamesThe3rd/pennywise/internal/goal/store"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/pennywise/internal/matching/store"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pennywise/internal/transaction/store"
	"github.com/MrJamesThe3rd/pennywise/internal/user"
	userStore "github.com/MrJamesThe3rd/pennywise/internal/user/store"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
	walletStore "github.com/MrJamesThe3rd/pennywise/internal/wallet/store"
)

type model struct {
	svc  view.Services
	name string

	currentView View
	session     *user.Session

	loginView        view.LoginModel
	walletsView      view.WalletsModel
	goalsView        view.GoalsModel
	budgetsView      view.BudgetsModel
	transactionsView view.TransactionsModel
	recordView       view.RecordModel
	importView       view.ImportModel
	exportView       view.ExportModel
}

type View int

const (
	ViewLogin        View = 0
	ViewMenu         View = 1
	ViewWallets      View = 2
	ViewGoals        View = 3
	ViewBudgets      View = 4
	ViewTransactions View = 5
	ViewRecord       View = 6
	ViewImport       View = 7
	ViewExport       View = 8
)

func initialModel(log *slog.Logger) model {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewGateway(cfg.Auth.Secret, cfg.Auth.TTL)
	engine := ledger.NewEngine(cfg.Ledger.BudgetPolicy, log)

	// Balances are read straight from the store; the API owns the shared cache.
	var readCache cache.Cache = cache.Noop{}

	txSvc := transaction.NewService(txStore.New(db), engine, readCache, log)
	matchSvc := matching.NewService(matchingStore.New(db))

	svc := view.Services{
		Users:        user.NewService(userStore.New(db), tokens, cfg.Auth.RestoreWindow, log),
		Wallets:      wallet.NewService(walletStore.New(db), readCache, log),
		Goals:        goal.NewService(goalStore.New(db), readCache, log),
		Categories:   category.NewService(categoryStore.New(db), log),
		Budgets:      budget.NewService(budgetStore.New(db), log),
		Transactions: txSvc,
		Import:       importer.NewService(matchSvc, txSvc, log),
		Export:       export.NewService(txSvc),
	}

	return model{
		svc:         svc,
		name:        cfg.App.Name,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(svc.Users),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.LoggedInMsg:
		m.session = msg.Session
		m.currentView = ViewMenu
		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewWallets:
		var newModel tea.Model
		newModel, cmd = m.walletsView.Update(msg)
		m.walletsView = newModel.(view.WalletsModel)
	case ViewGoals:
		var newModel tea.Model
		newModel, cmd = m.goalsView.Update(msg)
		m.goalsView = newModel.(view.GoalsModel)
	case ViewBudgets:
		var newModel tea.Model
		newModel, cmd = m.budgetsView.Update(msg)
		m.budgetsView = newModel.(view.BudgetsModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewRecord:
		var newModel tea.Model
		newModel, cmd = m.recordView.Update(msg)
		m.recordView = newModel.(view.RecordModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	userID := m.session.User.ID

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewWallets
		m.walletsView = view.NewWalletsModel(m.svc, userID)

		return m, m.walletsView.Init()
	case "2":
		m.currentView = ViewGoals
		m.goalsView = view.NewGoalsModel(m.svc, userID)

		return m, m.goalsView.Init()
	case "3":
		m.currentView = ViewBudgets
		m.budgetsView = view.NewBudgetsModel(m.svc, userID)

		return m, m.budgetsView.Init()
	case "4":
		m.currentView = ViewTransactions
		m.transactionsView = view.NewTransactionsModel(m.svc, userID)

		return m, m.transactionsView.Init()
	case "5":
		m.currentView = ViewRecord
		m.recordView = view.NewRecordModel(m.svc, userID)

		return m, m.recordView.Init()
	case "6":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(m.svc, userID)

		return m, m.importView.Init()
	case "7":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.svc, userID)

		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		greeting := "Welcome, " + m.session.User.Username
		if m.session.Restored {
			greeting += " (account restored)"
		}

		return lipgloss.NewStyle().Padding(2).Render(
			m.name + "\n" + greeting + "\n\n" +
				"1. Wallets\n" +
				"2. Goals\n" +
				"3. Budgets\n" +
				"4. Transactions\n" +
				"5. Record Transaction\n" +
				"6. Import Statement\n" +
				"7. Export Statement\n\n" +
				"q. Quit",
		)
	case ViewWallets:
		return m.walletsView.View()
	case ViewGoals:
		return m.goalsView.View()
	case ViewBudgets:
		return m.budgetsView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewRecord:
		return m.recordView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	f, err := tea.LogToFile("pennywise-tui.log", "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	log := slog.New(slog.NewTextHandler(f, nil))
	slog.SetDefault(log)

	p := tea.NewProgram(initialModel(log))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

const goalConfirmMessage = "You are using money from your savings goal. Are you sure you want to continue?"

type recordState int

const (
	recordStateLoading recordState = iota
	recordStateForm
	recordStateConfirm
	recordStateSaving
	recordStateResult
)

// RecordModel records one transaction against a wallet or a goal.
type RecordModel struct {
	CommonModel

	state   recordState
	form    *huh.Form
	sources []huh.Option[string]
	cats    []huh.Option[string]
	pending transaction.CreateParams
	result  *transaction.Result
	err     error
}

func NewRecordModel(svc Services, userID uuid.UUID) RecordModel {
	return RecordModel{CommonModel: newCommon(svc, userID)}
}

func (m RecordModel) Init() tea.Cmd {
	return m.loadOptionsCmd()
}

func (m RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	switch msg := msg.(type) {
	case recordOptionsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = recordStateResult
			return m, nil
		}

		m.sources = msg.sources
		m.cats = msg.cats
		m.form = m.buildForm()
		m.state = recordStateForm
		return m, m.form.Init()

	case recordSavedMsg:
		m.err = msg.err
		m.result = msg.result

		if msg.err == nil && msg.result.RequiresConfirmation {
			m.form = m.buildConfirm()
			m.state = recordStateConfirm
			return m, m.form.Init()
		}

		m.state = recordStateResult
		return m, nil
	}

	switch m.state {
	case recordStateForm, recordStateConfirm:
		return m.updateForm(msg)
	case recordStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
			return m, Back
		}
	}

	return m, nil
}

func (m RecordModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == recordStateConfirm {
		if !m.form.GetBool("confirm") {
			return m, Back
		}

		m.pending.Confirm = true
		m.state = recordStateSaving
		return m, m.saveCmd(m.pending)
	}

	params, err := m.params()
	if err != nil {
		m.err = err
		m.state = recordStateResult
		return m, nil
	}

	m.pending = params
	m.state = recordStateSaving
	return m, m.saveCmd(params)
}

func (m RecordModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("source").
				Title("From").
				Options(m.sources...),
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(m.cats...),
			huh.NewSelect[ledger.Type]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Expense", ledger.Expense),
					huh.NewOption("Income", ledger.Income),
				),
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("0.00").
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil || !d.IsPositive() {
						return fmt.Errorf("amount must be a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Key("note").
				Title("Note").
				CharLimit(255),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m RecordModel) buildConfirm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(goalConfirmMessage),
		),
	).WithWidth(50).WithShowHelp(false)
}

// Source options are encoded as "<kind>:<id>".
func sourceOption(kind transaction.SourceKind, id uuid.UUID) string {
	return string(kind) + ":" + id.String()
}

func (m RecordModel) params() (transaction.CreateParams, error) {
	kind, raw, _ := strings.Cut(m.form.GetString("source"), ":")

	id, err := uuid.Parse(raw)
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("pick a wallet or goal")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(m.form.GetString("amount")))
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("invalid amount")
	}

	typ, ok := m.form.Get("type").(ledger.Type)
	if !ok {
		typ = ledger.Expense
	}

	p := transaction.CreateParams{
		Amount: amount,
		Type:   typ,
		Note:   strings.TrimSpace(m.form.GetString("note")),
	}

	if transaction.SourceKind(kind) == transaction.SourceGoal {
		p.GoalID = &id
	} else {
		p.WalletID = &id
	}

	if cat, err := uuid.Parse(m.form.GetString("category")); err == nil {
		p.CategoryID = &cat
	}

	return p, nil
}

func (m RecordModel) View() string {
	switch m.state {
	case recordStateLoading:
		return pageStyle.Render("Loading...")
	case recordStateSaving:
		return pageStyle.Render("Saving...")
	case recordStateForm:
		return pageStyle.Render("Record Transaction\n\n" + m.form.View() + "\n" + faintStyle.Render("Esc: cancel"))
	case recordStateConfirm:
		return pageStyle.Render(warnStyle.Render("Savings goal") + "\n\n" + m.form.View())
	}

	if m.err != nil {
		return pageStyle.Render(errorStyle.Render("Error: "+describe(m.err)) + "\n\n" + faintStyle.Render("Enter/Esc: back"))
	}

	s := successStyle.Render("Transaction created successfully")
	if m.result != nil && m.result.BudgetOverrun {
		s += "\n\n" + warnStyle.Render("This transaction exceeds the category budget.")
	}

	return pageStyle.Render(s + "\n\n" + faintStyle.Render("Enter/Esc: back"))
}

type recordOptionsMsg struct {
	sources []huh.Option[string]
	cats    []huh.Option[string]
	err     error
}

func (m RecordModel) loadOptionsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		wallets, err := m.svc.Wallets.List(ctx, m.userID, listPage)
		if err != nil {
			return recordOptionsMsg{err: err}
		}

		goals, err := m.svc.Goals.List(ctx, m.userID, listPage)
		if err != nil {
			return recordOptionsMsg{err: err}
		}

		cats, err := m.svc.Categories.List(ctx, m.userID, listPage)
		if err != nil {
			return recordOptionsMsg{err: err}
		}

		if len(wallets.Items)+len(goals.Items) == 0 {
			return recordOptionsMsg{err: fmt.Errorf("create a wallet or goal first")}
		}

		msg := recordOptionsMsg{}
		for _, w := range wallets.Items {
			label := fmt.Sprintf("%s (%s %s)", w.Name, FormatAmount(w.Balance), w.Currency)
			msg.sources = append(msg.sources, huh.NewOption(label, sourceOption(transaction.SourceWallet, w.ID)))
		}
		for _, g := range goals.Items {
			label := fmt.Sprintf("Goal: %s (%s saved)", g.Name, FormatAmount(g.SavedAmount))
			msg.sources = append(msg.sources, huh.NewOption(label, sourceOption(transaction.SourceGoal, g.ID)))
		}

		msg.cats = append(msg.cats, huh.NewOption("None", ""))
		for _, c := range cats.Items {
			msg.cats = append(msg.cats, huh.NewOption(c.Name, c.ID.String()))
		}

		return msg
	}
}

type recordSavedMsg struct {
	result *transaction.Result
	err    error
}

func (m RecordModel) saveCmd(params transaction.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Transactions.Create(ctx, m.userID, params)
		return recordSavedMsg{result: res, err: err}
	}
}

package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateLoading importState = iota
	importStateSetup
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

// ImportModel imports a bank statement into a wallet.
type ImportModel struct {
	CommonModel

	state        importState
	form         *huh.Form
	filePicker   filepicker.Model
	conflictList list.Model

	walletID   uuid.UUID
	categoryID *uuid.UUID
	path       string

	status string
	err    error
}

func NewImportModel(svc Services, userID uuid.UUID) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		CommonModel: newCommon(svc, userID),
		filePicker:  fp,
	}
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadOptionsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

		if m.state == importStateResult {
			return m, nil
		}

	case importOptionsMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			return m, nil
		}

		m.form = newImportForm(msg.wallets, msg.cats)
		m.state = importStateSetup
		return m, m.form.Init()

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		res := msg.result
		if len(res.Conflicts) == 0 {
			m.status = fmt.Sprintf("Imported %d transactions.", len(res.Imported))
			if res.BudgetOverruns > 0 {
				m.status += fmt.Sprintf(" %d exceeded their budget.", res.BudgetOverruns)
			}
			return m, nil
		}

		items := make([]list.Item, len(res.Conflicts))
		for i, c := range res.Conflicts {
			items[i] = conflictItem{conflict: c}
		}

		m.conflictList = list.New(items, conflictDelegate{}, 80, 20)
		m.conflictList.Title = "Statement contains transactions that already exist"
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)
		m.state = importStateConflicts

		return m, nil
	}

	switch m.state {
	case importStateSetup:
		return m.updateSetup(msg)
	case importStateFilePick:
		return m.updateFilePick(msg)
	}

	return m, nil
}

func (m ImportModel) updateSetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	walletID, err := uuid.Parse(m.form.GetString("wallet"))
	if err != nil {
		m.state = importStateResult
		m.err = fmt.Errorf("pick a wallet")
		return m, nil
	}

	m.walletID = walletID
	m.categoryID = nil
	if cat, err := uuid.Parse(m.form.GetString("category")); err == nil {
		m.categoryID = &cat
	}

	m.state = importStateFilePick
	return m, m.filePicker.Init()
}

func (m ImportModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(false)
	}

	return m, cmd
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "y" {
		m.state = importStateImporting
		m.status = "Importing including duplicates..."
		return m, m.importCmd(true)
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func newImportForm(wallets, cats []huh.Option[string]) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("wallet").
				Title("Wallet").
				Options(wallets...),
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Description("Used for rows no rule matches").
				Options(cats...),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateLoading:
		return pageStyle.Render("Loading...")
	case importStateSetup:
		return pageStyle.Render("Import Statement\n\n" + m.form.View())
	case importStateFilePick:
		return pageStyle.Render("Select statement to import:\n\n" + m.filePicker.View())
	case importStateImporting:
		return pageStyle.Render(m.status)
	case importStateConflicts:
		return pageStyle.Render(m.conflictList.View() + "\n" + faintStyle.Render("y: import anyway | Esc: cancel"))
	}

	if m.err != nil {
		return pageStyle.Render(errorStyle.Render("Error: "+describe(m.err)) + "\n\n(Esc to go back)")
	}

	return pageStyle.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type importOptionsMsg struct {
	wallets []huh.Option[string]
	cats    []huh.Option[string]
	err     error
}

func (m ImportModel) loadOptionsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		wallets, err := m.svc.Wallets.List(ctx, m.userID, listPage)
		if err != nil {
			return importOptionsMsg{err: err}
		}

		if len(wallets.Items) == 0 {
			return importOptionsMsg{err: fmt.Errorf("create a wallet first")}
		}

		cats, err := m.svc.Categories.List(ctx, m.userID, listPage)
		if err != nil {
			return importOptionsMsg{err: err}
		}

		msg := importOptionsMsg{}
		for _, w := range wallets.Items {
			msg.wallets = append(msg.wallets, huh.NewOption(w.Name, w.ID.String()))
		}

		msg.cats = append(msg.cats, huh.NewOption("None", ""))
		for _, c := range cats.Items {
			msg.cats = append(msg.cats, huh.NewOption(c.Name, c.ID.String()))
		}

		return msg
	}
}

type importResultMsg struct {
	result *transaction.ImportResult
	err    error
}

func (m ImportModel) importCmd(allowDuplicates bool) tea.Cmd {
	req := importer.Request{
		WalletID:        m.walletID,
		CategoryID:      m.categoryID,
		AllowDuplicates: allowDuplicates,
	}
	path := m.path

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		req.File = f

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.svc.Import.Import(ctx, m.userID, req)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

// Conflict list item

type conflictItem struct {
	conflict transaction.Conflict
}

func (i conflictItem) Title() string       { return "" }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return "" }

// Conflict list delegate

type conflictDelegate struct{}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	line1 := fmt.Sprintf("%sRow %d: %s  %s %s  %s",
		cursor, item.conflict.Row,
		FormatDate(incoming.Date),
		incoming.Type,
		FormatAmount(incoming.Amount),
		incoming.Note,
	)

	line2 := fmt.Sprintf("      Existing: %s  %s %s  %s",
		FormatDate(existing.Date),
		existing.Type,
		FormatAmount(existing.Amount),
		existing.Note,
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}

package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

const exportTimeout = 2 * time.Minute

type exportState int

const (
	exportStateLoading exportState = iota
	exportStateSetup
	exportStatePeriod
	exportStateExporting
	exportStateResult
)

// ExportModel writes a wallet statement archive to disk.
type ExportModel struct {
	CommonModel

	state   exportState
	err     error
	form    *huh.Form
	picker  PeriodPicker
	spinner spinner.Model

	walletID uuid.UUID
	dir      string
	file     string
	summary  string
}

func NewExportModel(svc Services, userID uuid.UUID) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		CommonModel: newCommon(svc, userID),
		picker:      NewPeriodPicker(PeriodThisWeek),
		spinner:     s,
	}
}

func (m ExportModel) Init() tea.Cmd {
	return m.loadWalletsCmd()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exportWalletsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = exportStateResult
			return m, nil
		}

		m.form = newExportForm(msg.options)
		m.state = exportStateSetup
		return m, m.form.Init()

	case PeriodSelectedMsg:
		m.state = exportStateExporting
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.runExportCmd(msg.From, msg.To))
	}

	switch m.state {
	case exportStateSetup:
		return m.updateSetup(msg)
	case exportStatePeriod:
		return m.updatePeriod(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	return m, nil
}

func (m ExportModel) updateSetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	walletID, err := uuid.Parse(m.form.GetString("wallet"))
	if err != nil {
		m.err = fmt.Errorf("pick a wallet")
		m.state = exportStateResult
		return m, nil
	}

	m.walletID = walletID
	m.dir = m.form.GetString("path")
	if m.dir == "" {
		m.dir = "./exports"
	}

	m.state = exportStatePeriod
	return m, nil
}

func (m ExportModel) updatePeriod(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && !m.picker.Editing() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.summary = result.summary
		m.file = result.file
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func newExportForm(wallets []huh.Option[string]) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("wallet").
				Title("Wallet").
				Options(wallets...),
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports"),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateLoading:
		return pageStyle.Render("Loading...")

	case exportStateSetup:
		return pageStyle.Render("Export Statement\n\n" + m.form.View())

	case exportStatePeriod:
		return pageStyle.Render(m.picker.View())

	case exportStateExporting:
		return pageStyle.Render(fmt.Sprintf("%s Exporting statement...", m.spinner.View()))
	}

	return m.viewResult()
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return pageStyle.Render(errorStyle.Render("Error: "+describe(m.err)) + "\n\n(Esc to go back)")
	}

	return pageStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render("Export Complete!"),
			"",
			"Saved to "+m.file,
			"",
			m.summary,
			"",
			"(Esc to go back)",
		),
	)
}

type exportWalletsMsg struct {
	options []huh.Option[string]
	err     error
}

func (m ExportModel) loadWalletsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Wallets.List(ctx, m.userID, listPage)
		if err != nil {
			return exportWalletsMsg{err: err}
		}

		if len(res.Items) == 0 {
			return exportWalletsMsg{err: fmt.Errorf("create a wallet first")}
		}

		msg := exportWalletsMsg{}
		for _, w := range res.Items {
			msg.options = append(msg.options, huh.NewOption(w.Name, w.ID.String()))
		}

		return msg
	}
}

type exportResultMsg struct {
	summary string
	file    string
	err     error
}

func (m ExportModel) runExportCmd(from, to time.Time) tea.Cmd {
	walletID, dir := m.walletID, m.dir

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		exp, err := m.svc.Export.Export(ctx, m.userID, walletID, from, to)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportResultMsg{err: fmt.Errorf("failed to create output directory: %w", err)}
		}

		name := filepath.Join(dir, fmt.Sprintf("statement_%s_%s.zip", FormatDate(from), FormatDate(to)))

		f, err := os.Create(name)
		if err != nil {
			return exportResultMsg{err: fmt.Errorf("failed to create archive: %w", err)}
		}
		defer f.Close()

		if err := exp.WriteZip(f); err != nil {
			return exportResultMsg{err: err}
		}

		return exportResultMsg{summary: exp.Summary(), file: name}
	}
}

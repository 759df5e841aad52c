package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/goal"
)

type goalRow struct {
	goal   *goal.Goal
	status goal.Status
}

// GoalsModel lists goals with a progress bar each.
type GoalsModel struct {
	CommonModel

	bar     progress.Model
	rows    []goalRow
	cursor  int
	loading bool
	err     error
}

func NewGoalsModel(svc Services, userID uuid.UUID) GoalsModel {
	return GoalsModel{
		CommonModel: newCommon(svc, userID),
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		loading:     true,
	}
}

func (m GoalsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m GoalsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadGoalsMsg:
		m.loading = false
		m.err = msg.err
		m.rows = msg.rows
		m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		}
	}

	return m, nil
}

func (m GoalsModel) View() string {
	if m.loading {
		return pageStyle.Render("Loading goals...")
	}

	if m.err != nil {
		return pageStyle.Render(errorStyle.Render("Error: " + describe(m.err)))
	}

	if len(m.rows) == 0 {
		return pageStyle.Render("No goals yet.\n\n" + faintStyle.Render("Esc: back"))
	}

	var b strings.Builder
	b.WriteString("Goals\n\n")

	for i, r := range m.rows {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		frac, _ := r.status.Progress.Div(hundred).Float64()
		fmt.Fprintf(&b, "%s %-24s %s %s / %s\n", cursor, r.goal.Name, m.bar.ViewAs(min(frac, 1)),
			FormatAmount(r.status.SavedAmount), FormatAmount(r.status.TargetAmount))
	}

	b.WriteString("\n" + m.detail(m.rows[m.cursor].status) + "\n\n")
	b.WriteString(faintStyle.Render("Esc: back | r: refresh | ↑/↓: select"))

	return pageStyle.Render(b.String())
}

func (m GoalsModel) detail(s goal.Status) string {
	if s.IsAchieved {
		return successStyle.Render("Goal achieved!")
	}

	if s.DaysRemaining == 0 {
		return warnStyle.Render("Deadline reached")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s%% saved", s.Progress.StringFixed(2)),
		fmt.Sprintf("%d days left, save %s per day", s.DaysRemaining, FormatAmount(s.DailySaving)),
	)
}

type loadGoalsMsg struct {
	rows []goalRow
	err  error
}

func (m GoalsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Goals.List(ctx, m.userID, listPage)
		if err != nil {
			return loadGoalsMsg{err: err}
		}

		today := time.Now()
		rows := make([]goalRow, 0, len(res.Items))

		for _, g := range res.Items {
			st, err := goal.Progress(g.TargetAmount, g.SavedAmount, g.Deadline, today)
			if err != nil {
				return loadGoalsMsg{err: err}
			}

			rows = append(rows, goalRow{goal: g, status: st})
		}

		return loadGoalsMsg{rows: rows}
	}
}

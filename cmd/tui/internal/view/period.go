package view

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Period is a statement range offered by the period picker.
type Period int

const (
	PeriodThisWeek Period = iota
	PeriodLastWeek
	PeriodThisMonth
	PeriodLastMonth
	PeriodThisYear
	PeriodCustom
)

var periodLabels = [...]string{"This Week", "Last Week", "This Month", "Last Month", "This Year", "Custom Range"}

func (p Period) String() string {
	if p < 0 || int(p) >= len(periodLabels) {
		return "Unknown"
	}

	return periodLabels[p]
}

// calendarDay keeps t's date and drops the clock.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Range returns the first and last day of the period as seen from today.
// Both days belong to the statement. Weeks start on Monday.
func (p Period) Range(today time.Time) (from, to time.Time) {
	today = calendarDay(today)
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	month := today.AddDate(0, 0, 1-today.Day())

	switch p {
	case PeriodThisWeek:
		return monday, today
	case PeriodLastWeek:
		return monday.AddDate(0, 0, -7), monday.AddDate(0, 0, -1)
	case PeriodThisMonth:
		return month, today
	case PeriodLastMonth:
		return month.AddDate(0, -1, 0), month.AddDate(0, 0, -1)
	case PeriodThisYear:
		return today.AddDate(0, 0, 1-today.YearDay()), today
	}

	return today, today
}

// PeriodSelectedMsg carries the chosen statement range. To is inclusive.
type PeriodSelectedMsg struct {
	From time.Time
	To   time.Time
}

func selectPeriod(msg PeriodSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// parseRange reads a custom range typed as two calendar days.
func parseRange(from, to string) (PeriodSelectedMsg, error) {
	f, err := time.Parse(time.DateOnly, strings.TrimSpace(from))
	if err != nil {
		return PeriodSelectedMsg{}, errors.New("start date must be YYYY-MM-DD")
	}

	t, err := time.Parse(time.DateOnly, strings.TrimSpace(to))
	if err != nil {
		return PeriodSelectedMsg{}, errors.New("end date must be YYYY-MM-DD")
	}

	if t.Before(f) {
		return PeriodSelectedMsg{}, errors.New("end date must not be before start date")
	}

	return PeriodSelectedMsg{From: f, To: t}, nil
}

// PeriodPicker lets the user pick a statement period from a list, or type a
// custom one.
type PeriodPicker struct {
	first  Period
	cursor Period
	now    func() time.Time

	custom bool
	fields [2]textinput.Model
	focus  int
	err    error
}

// NewPeriodPicker lists the periods from first onwards.
func NewPeriodPicker(first Period) PeriodPicker {
	p := PeriodPicker{first: first, cursor: first, now: time.Now}

	for i, prompt := range []string{"From: ", "To:   "} {
		in := textinput.New()
		in.Placeholder = time.DateOnly
		in.CharLimit = len(time.DateOnly)
		in.Width = 12
		in.Prompt = prompt
		p.fields[i] = in
	}

	return p
}

// Editing reports whether the custom range inputs are shown.
func (p PeriodPicker) Editing() bool {
	return p.custom
}

func (p PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)

	if !p.custom {
		if !isKey {
			return p, nil
		}

		return p.choose(key.String())
	}

	if isKey {
		switch key.String() {
		case "esc":
			p.custom = false
			p.err = nil
			return p, nil
		case "tab", "shift+tab", "up", "down":
			cmd := p.focusField(1 - p.focus)
			return p, cmd
		case "enter":
			return p.submit()
		}
	}

	var cmd tea.Cmd
	p.fields[p.focus], cmd = p.fields[p.focus].Update(msg)

	return p, cmd
}

func (p PeriodPicker) choose(key string) (PeriodPicker, tea.Cmd) {
	switch key {
	case "up", "k":
		p.cursor = max(p.cursor-1, p.first)
	case "down", "j":
		p.cursor = min(p.cursor+1, PeriodCustom)
	case "enter":
		if p.cursor == PeriodCustom {
			p.custom = true
			cmd := p.focusField(0)
			return p, cmd
		}

		from, to := p.cursor.Range(p.now())
		return p, selectPeriod(PeriodSelectedMsg{From: from, To: to})
	}

	return p, nil
}

// submit moves on to the end date while it is still blank.
func (p PeriodPicker) submit() (PeriodPicker, tea.Cmd) {
	if p.focus == 0 && p.fields[1].Value() == "" {
		cmd := p.focusField(1)
		return p, cmd
	}

	msg, err := parseRange(p.fields[0].Value(), p.fields[1].Value())
	if err != nil {
		p.err = err
		return p, nil
	}

	p.err = nil

	return p, selectPeriod(msg)
}

func (p *PeriodPicker) focusField(i int) tea.Cmd {
	p.focus = i

	for j := range p.fields {
		p.fields[j].Blur()
	}

	p.fields[i].Focus()

	return textinput.Blink
}

func (p PeriodPicker) View() string {
	var b strings.Builder

	b.WriteString("Statement Period:\n\n")

	if p.custom {
		for _, f := range p.fields {
			b.WriteString(f.View() + "\n")
		}

		b.WriteString("\n" + faintStyle.Render("both days included | Enter: confirm | Tab: switch | Esc: back"))
	} else {
		now := p.now()

		for period := p.first; period <= PeriodCustom; period++ {
			var hint string
			if period != PeriodCustom {
				from, to := period.Range(now)
				hint = faintStyle.Render("  " + FormatDate(from) + " to " + FormatDate(to))
			}

			if period == p.cursor {
				b.WriteString(activeStyle.Render("> "+period.String()) + hint + "\n")
				continue
			}

			b.WriteString("  " + period.String() + hint + "\n")
		}

		b.WriteString("\n" + faintStyle.Render("Enter: select | Esc: back"))
	}

	if p.err != nil {
		b.WriteString("\n\n" + errorStyle.Render("Error: "+p.err.Error()))
	}

	return b.String()
}

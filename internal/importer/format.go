package importer

import "strings"

// Format describes a statement layout by the header names of its columns.
// A format either carries one signed Amount column or a Debit/Credit pair.
type Format struct {
	Name   string
	Date   []string
	Note   []string
	Amount []string
	Debit  []string
	Credit []string
}

var (
	dateHeaders = []string{"date", "data", "data mov.", "ngày"}
	noteHeaders = []string{"note", "description", "descrição", "memo", "ghi chú"}
)

// formats are tried in order; the split layout goes first since a signed
// layout would otherwise match its date and note columns alone.
var formats = []Format{
	{
		Name:   "split",
		Date:   dateHeaders,
		Note:   noteHeaders,
		Debit:  []string{"debit", "débito", "withdrawal"},
		Credit: []string{"credit", "crédito", "deposit"},
	},
	{
		Name:   "signed",
		Date:   dateHeaders,
		Note:   noteHeaders,
		Amount: []string{"amount", "montante", "movimento", "số tiền"},
	},
}

// columns maps a normalised header name to its position.
type columns map[string]int

func headerOf(row []string) columns {
	cols := make(columns, len(row))

	for i, cell := range row {
		name := normalise(cell)
		if _, seen := cols[name]; name != "" && !seen {
			cols[name] = i
		}
	}

	return cols
}

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// find returns the position of the first alias present.
func (c columns) find(aliases []string) (int, bool) {
	for _, a := range aliases {
		if i, ok := c[a]; ok {
			return i, true
		}
	}

	return -1, false
}

// layout is a Format resolved against a concrete header row.
type layout struct {
	format                *Format
	date, note            int
	amount, debit, credit int
}

func (f *Format) resolve(c columns) (layout, bool) {
	l := layout{format: f, amount: -1, debit: -1, credit: -1}

	var ok bool
	if l.date, ok = c.find(f.Date); !ok {
		return l, false
	}

	if l.note, ok = c.find(f.Note); !ok {
		return l, false
	}

	if f.Amount != nil {
		l.amount, ok = c.find(f.Amount)
		return l, ok
	}

	if l.debit, ok = c.find(f.Debit); !ok {
		return l, false
	}

	l.credit, ok = c.find(f.Credit)

	return l, ok
}

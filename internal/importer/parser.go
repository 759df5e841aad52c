// Package importer turns bank statement exports into transaction rows.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

// Parse reads a semicolon separated statement. Preamble lines before the
// header are skipped, as are rows without a parseable date (totals, footers)
// and rows whose amount is empty or zero.
func Parse(r io.Reader) ([]transaction.ImportRow, error) {
	text, err := utf8Reader(r)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(text)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Validation("Malformed CSV file")
	}

	l, header, ok := detect(rows)
	if !ok {
		return nil, apperr.Validation("Unrecognised statement format: expected date;note;amount columns")
	}

	var out []transaction.ImportRow

	for i, row := range rows[header+1:] {
		line := header + i + 2

		date, ok := parseDate(cell(row, l.date))
		if !ok {
			continue
		}

		amount, err := l.amountOf(row)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("row %d: invalid amount", line))
		}

		if amount.IsZero() {
			continue
		}

		note := cell(row, l.note)
		if note == "" {
			return nil, apperr.Validation(fmt.Sprintf("row %d: missing note", line))
		}

		out = append(out, transaction.ImportRow{Date: date, Note: note, Amount: amount})
	}

	if len(out) == 0 {
		return nil, apperr.Validation("Statement has no transactions")
	}

	return out, nil
}

func detect(rows [][]string) (layout, int, bool) {
	for i, row := range rows {
		cols := headerOf(row)

		for f := range formats {
			if l, ok := formats[f].resolve(cols); ok {
				return l, i, true
			}
		}
	}

	return layout{}, 0, false
}

// amountOf returns a signed amount: debits are negative.
func (l layout) amountOf(row []string) (decimal.Decimal, error) {
	if l.amount >= 0 {
		return optional(cell(row, l.amount))
	}

	debit, err := optional(cell(row, l.debit))
	if err != nil {
		return decimal.Zero, err
	}

	if !debit.IsZero() {
		return debit.Abs().Neg(), nil
	}

	credit, err := optional(cell(row, l.credit))
	if err != nil {
		return decimal.Zero, err
	}

	return credit.Abs(), nil
}

func optional(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}

	return parseAmount(s)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}

// Package export writes a wallet's transactions back out as a statement.
package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=export
type Statements interface {
	Statement(ctx context.Context, userID, walletID uuid.UUID, from, to time.Time) ([]*transaction.Transaction, error)
}

// Export is one wallet's statement for a period.
type Export struct {
	WalletID     uuid.UUID
	From, To     time.Time
	Transactions []*transaction.Transaction
	Income       decimal.Decimal
	Expense      decimal.Decimal
}

func (e *Export) Net() decimal.Decimal { return e.Income.Sub(e.Expense) }

type Service struct {
	statements Statements
}

func NewService(statements Statements) *Service {
	return &Service{statements: statements}
}

// Export collects the wallet's transactions dated from from through to,
// both days included.
func (s *Service) Export(ctx context.Context, userID, walletID uuid.UUID, from, to time.Time) (*Export, error) {
	ts, err := s.statements.Statement(ctx, userID, walletID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	e := &Export{WalletID: walletID, From: from, To: to, Transactions: ts}

	for _, t := range ts {
		if t.Type == ledger.Income {
			e.Income = e.Income.Add(t.Amount)
		} else {
			e.Expense = e.Expense.Add(t.Amount)
		}
	}

	return e, nil
}

// signed renders an expense as a negative amount, the way statements are imported.
func signed(t *transaction.Transaction) decimal.Decimal {
	if t.Type == ledger.Expense {
		return t.Amount.Neg()
	}

	return t.Amount
}

// WriteCSV writes the statement in the date;note;amount layout the importer reads.
func (e *Export) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write([]string{"date", "note", "amount"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, t := range e.Transactions {
		row := []string{t.Date.Format(time.DateOnly), t.Note, signed(t).String()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summary is a plain-text digest of the statement, one line per transaction.
func (e *Export) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Statement %s to %s\n\n", e.From.Format(time.DateOnly), e.To.Format(time.DateOnly))

	for _, t := range e.Transactions {
		note := t.Note
		if note == "" {
			note = "-"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s\n", t.Date.Format(time.DateOnly), note, signed(t).String())
	}

	fmt.Fprintf(&sb, "\nIncome: %s\nExpense: %s\nNet: %s\n", e.Income, e.Expense, e.Net())

	return sb.String()
}

// WriteZip bundles statement.csv and summary.txt.
func (e *Export) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)

	f, err := zw.Create("statement.csv")
	if err != nil {
		return fmt.Errorf("creating statement entry: %w", err)
	}

	if err := e.WriteCSV(f); err != nil {
		return err
	}

	f, err = zw.Create("summary.txt")
	if err != nil {
		return fmt.Errorf("creating summary entry: %w", err)
	}

	if _, err := io.WriteString(f, e.Summary()); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return zw.Close()
}

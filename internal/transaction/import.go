package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/validate"
)

// ImportRow is one statement line. A negative amount is an expense.
type ImportRow struct {
	Date       time.Time
	Note       string
	Amount     decimal.Decimal
	CategoryID *uuid.UUID
}

type ImportParams struct {
	WalletID uuid.UUID
	// CategoryID is used for rows that carry none.
	CategoryID *uuid.UUID
	Rows       []ImportRow
	// AllowDuplicates imports rows that match an existing transaction.
	AllowDuplicates bool
}

type ImportResult struct {
	Imported       []*Transaction
	Conflicts      []Conflict
	BudgetOverruns int
}

// Conflict pairs an incoming row with the existing transaction it duplicates.
type Conflict struct {
	Row      int
	Incoming *Transaction
	Existing *Transaction
}

type dupKey struct {
	Date   string
	Amount string
	Type   ledger.Type
	Note   string
}

func keyOf(t *Transaction) dupKey {
	return dupKey{
		Date:   t.Date.UTC().Format(time.DateOnly),
		Amount: t.Amount.String(),
		Type:   t.Type,
		Note:   t.Note,
	}
}

// rowError keeps the error kind and prefixes the row number to its message.
func rowError(row int, err error) error {
	if e, ok := apperr.As(err); ok {
		c := *e
		c.Message = fmt.Sprintf("row %d: %s", row, e.Message)

		return &c
	}

	return fmt.Errorf("row %d: %w", row, err)
}

// ImportBatch records a statement against one wallet in a single unit of work.
// Any failing row rolls back the whole batch. When rows duplicate existing
// transactions and AllowDuplicates is false, nothing is imported and the
// conflicts are returned instead.
func (s *Service) ImportBatch(ctx context.Context, userID uuid.UUID, params ImportParams) (*ImportResult, error) {
	if len(params.Rows) == 0 {
		return &ImportResult{}, nil
	}

	txs := make([]*Transaction, len(params.Rows))

	for i, r := range params.Rows {
		typ := ledger.Income
		if r.Amount.IsNegative() {
			typ = ledger.Expense
		}

		categoryID := r.CategoryID
		if categoryID == nil {
			categoryID = params.CategoryID
		}

		t := &Transaction{
			UserID:     userID,
			Source:     Source{Kind: SourceWallet, ID: params.WalletID},
			CategoryID: categoryID,
			Amount:     r.Amount.Abs(),
			Type:       typ,
			Note:       r.Note,
			Date:       r.Date,
		}
		if err := validateTransaction(t); err != nil {
			return nil, rowError(i+1, err)
		}

		txs[i] = t
	}

	from, to := dateRange(txs)
	res := &ImportResult{}

	err := s.unit(ctx, userID, func(ss *session) error {
		ids := []uuid.UUID{params.WalletID}
		for _, t := range txs {
			ids = append(ids, t.ledgerIDs()...)
		}

		if err := ss.lock(ctx, ids...); err != nil {
			return err
		}

		if _, err := ss.funding(ctx, Source{Kind: SourceWallet, ID: params.WalletID}, lifecycle.Active); err != nil {
			return err
		}

		if !params.AllowDuplicates {
			conflicts, err := s.duplicates(ctx, ss, userID, params.WalletID, txs, from, to)
			if err != nil {
				return err
			}

			if len(conflicts) > 0 {
				res.Conflicts = conflicts
				return nil
			}
		}

		for i, t := range txs {
			r, err := ss.apply(ctx, t)
			if err != nil {
				return rowError(i+1, err)
			}

			if err := ss.tx.CreateTransaction(ctx, t); err != nil {
				return rowError(i+1, err)
			}

			if r.BudgetOverrun {
				res.BudgetOverruns++
			}
		}

		return ss.flush(ctx)
	})
	if err != nil {
		s.log.Warn("import rejected", "user_id", userID, "wallet_id", params.WalletID, "rows", len(txs), "error", err)
		return nil, err
	}

	if len(res.Conflicts) > 0 {
		return res, nil
	}

	res.Imported = txs
	s.log.Info("import completed", "user_id", userID, "wallet_id", params.WalletID, "rows", len(txs))

	return res, nil
}

func (s *Service) duplicates(ctx context.Context, ss *session, userID, walletID uuid.UUID, txs []*Transaction, from, to time.Time) ([]Conflict, error) {
	existing, err := ss.tx.WalletTransactions(ctx, userID, walletID, from, to)
	if err != nil {
		return nil, err
	}

	lookup := make(map[dupKey]*Transaction, len(existing))
	for _, e := range existing {
		lookup[keyOf(e)] = e
	}

	var conflicts []Conflict

	for i, t := range txs {
		if e, ok := lookup[keyOf(t)]; ok {
			conflicts = append(conflicts, Conflict{Row: i + 1, Incoming: t, Existing: e})
		}
	}

	return conflicts, nil
}

// dateRange spans whole days so that every row's date falls inside [from, to).
func dateRange(txs []*Transaction) (time.Time, time.Time) {
	from := txs[0].Date
	to := txs[0].Date

	for _, t := range txs[1:] {
		if t.Date.Before(from) {
			from = t.Date
		}

		if t.Date.After(to) {
			to = t.Date
		}
	}

	return validate.Day(from), validate.Day(to).AddDate(0, 0, 1)
}

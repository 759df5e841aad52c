package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/cache"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
	"github.com/MrJamesThe3rd/pennywise/internal/validate"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	GetTransaction(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) ([]*Transaction, int, error)
}

// Tx is one unit of work. Nothing written through it is visible until Commit.
type Tx interface {
	Lock(ctx context.Context, ids ...uuid.UUID) error

	GetTransaction(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*Transaction, error)
	GetWallet(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*wallet.Wallet, error)
	GetGoal(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*goal.Goal, error)
	GetCategory(ctx context.Context, id, userID uuid.UUID) (*category.Category, error)
	ActiveBudget(ctx context.Context, userID, categoryID uuid.UUID) (*budget.Budget, error)

	SaveWallet(ctx context.Context, w *wallet.Wallet) error
	SaveGoal(ctx context.Context, g *goal.Goal) error
	SaveBudget(ctx context.Context, b *budget.Budget) error

	CreateTransaction(ctx context.Context, t *Transaction) error
	UpdateTransaction(ctx context.Context, t *Transaction) error
	SetTransactionDeleted(ctx context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error
	DeleteTransaction(ctx context.Context, id, userID uuid.UUID) error
	// WalletTransactions lists a wallet's active transactions dated in [from, to).
	WalletTransactions(ctx context.Context, userID, walletID uuid.UUID, from, to time.Time) ([]*Transaction, error)

	Commit() error
	Rollback() error
}

type Service struct {
	repo   Repository
	engine *ledger.Engine
	cache  cache.Cache
	log    *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, engine *ledger.Engine, c cache.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, engine: engine, cache: c, log: log, now: time.Now}
}

type CreateParams struct {
	WalletID   *uuid.UUID
	GoalID     *uuid.UUID
	CategoryID *uuid.UUID
	Amount     decimal.Decimal
	Type       ledger.Type
	Note       string
	// Date defaults to now.
	Date *time.Time
	// Confirm is required for goal-funded transactions.
	Confirm bool
}

// UpdateParams patches a transaction. Setting either WalletID or GoalID
// replaces the source.
type UpdateParams struct {
	WalletID   *uuid.UUID
	GoalID     *uuid.UUID
	CategoryID *uuid.UUID
	Amount     *decimal.Decimal
	Type       *ledger.Type
	Note       *string
	Date       *time.Time
	Confirm    bool
}

// Result is returned by every ledger-changing operation. When
// RequiresConfirmation is set nothing was persisted and Transaction is nil.
type Result struct {
	Transaction          *Transaction
	RequiresConfirmation bool
	BudgetOverrun        bool
}

func validateTransaction(t *Transaction) error {
	err := validate.New().
		Check(t.Type.Valid(), "Invalid transaction type").
		Positive("amount", t.Amount).
		Money("amount", t.Amount).
		MaxLen("note", t.Note, 255).
		Err()
	if err != nil {
		return err
	}

	if t.Source.Kind == SourceWallet && t.CategoryID == nil {
		return apperr.Validation("category_id is required for wallet transactions")
	}

	return nil
}

// unit runs fn inside one store transaction and commits when fn succeeds.
// Cached views of every wallet and goal fn changed are dropped after commit.
func (s *Service) unit(ctx context.Context, userID uuid.UUID, fn func(ss *session) error) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ss := newSession(tx, s.engine, userID)

	if err := fn(ss); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if keys := ss.cacheKeys(); len(keys) > 0 {
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.log.Warn("failed to invalidate ledger cache", "keys", keys, "error", err)
		}
	}

	return nil
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Result, error) {
	src, err := NewSource(params.WalletID, params.GoalID)
	if err != nil {
		return nil, err
	}

	date := s.now()
	if params.Date != nil {
		date = *params.Date
	}

	t := &Transaction{
		UserID:     userID,
		Source:     src,
		CategoryID: params.CategoryID,
		Amount:     params.Amount,
		Type:       params.Type,
		Note:       params.Note,
		Date:       date,
	}
	if err := validateTransaction(t); err != nil {
		return nil, err
	}

	var res Result

	err = s.unit(ctx, userID, func(ss *session) error {
		if err := ss.lock(ctx, t.ledgerIDs()...); err != nil {
			return err
		}

		if _, err := ss.funding(ctx, t.Source, lifecycle.Active); err != nil {
			return err
		}

		if t.Source.Kind == SourceGoal && !params.Confirm {
			res.RequiresConfirmation = true
			return nil
		}

		r, err := ss.apply(ctx, t)
		if err != nil {
			return err
		}

		if err := ss.tx.CreateTransaction(ctx, t); err != nil {
			return err
		}

		res.BudgetOverrun = r.BudgetOverrun

		return ss.flush(ctx)
	})
	if err != nil {
		s.log.Warn("transaction create rejected", "user_id", userID, "source", src.ID, "error", err)
		return nil, err
	}

	if res.RequiresConfirmation {
		return &res, nil
	}

	res.Transaction = t
	s.log.Info("transaction created",
		"user_id", userID, "transaction_id", t.ID, "type", t.Type, "amount", t.Amount.String())

	return &res, nil
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id, userID, lifecycle.Active)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Result[*Transaction], error) {
	return s.list(ctx, userID, lifecycle.Active, page)
}

func (s *Service) ListDeleted(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Result[*Transaction], error) {
	return s.list(ctx, userID, lifecycle.Deleted, page)
}

func (s *Service) list(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) (pagination.Result[*Transaction], error) {
	ts, total, err := s.repo.ListTransactions(ctx, userID, filter, page)
	if err != nil {
		return pagination.Result[*Transaction]{}, err
	}

	return pagination.NewResult(ts, page, total), nil
}

// Statement lists a wallet's active transactions dated within [from, to).
func (s *Service) Statement(ctx context.Context, userID, walletID uuid.UUID, from, to time.Time) ([]*Transaction, error) {
	if !to.After(from) {
		return nil, apperr.Validation("End date must be after start date")
	}

	var ts []*Transaction

	err := s.unit(ctx, userID, func(ss *session) error {
		if _, err := ss.tx.GetWallet(ctx, walletID, userID, lifecycle.Active); err != nil {
			return err
		}

		var err error
		ts, err = ss.tx.WalletTransactions(ctx, userID, walletID, from, to)

		return err
	})
	if err != nil {
		return nil, err
	}

	return ts, nil
}

func patch(cur *Transaction, params UpdateParams) (*Transaction, error) {
	next := *cur

	if params.WalletID != nil || params.GoalID != nil {
		src, err := NewSource(params.WalletID, params.GoalID)
		if err != nil {
			return nil, err
		}

		next.Source = src
	}

	if params.CategoryID != nil {
		next.CategoryID = params.CategoryID
	}

	if params.Amount != nil {
		next.Amount = *params.Amount
	}

	if params.Type != nil {
		next.Type = *params.Type
	}

	if params.Note != nil {
		next.Note = *params.Note
	}

	if params.Date != nil {
		next.Date = *params.Date
	}

	return &next, validateTransaction(&next)
}

// Update reverses the transaction's current effect and applies the patched
// one in the same unit of work.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, params UpdateParams) (*Result, error) {
	var (
		res  Result
		next *Transaction
	)

	err := s.unit(ctx, userID, func(ss *session) error {
		if err := ss.lock(ctx, id); err != nil {
			return err
		}

		cur, err := ss.tx.GetTransaction(ctx, id, userID, lifecycle.Active)
		if err != nil {
			return err
		}

		next, err = patch(cur, params)
		if err != nil {
			return err
		}

		if err := ss.lock(ctx, append(cur.ledgerIDs(), next.ledgerIDs()...)...); err != nil {
			return err
		}

		if _, err := ss.funding(ctx, next.Source, lifecycle.Active); err != nil {
			return err
		}

		if next.Source.Kind == SourceGoal && next.Source != cur.Source && !params.Confirm {
			res.RequiresConfirmation = true
			return nil
		}

		if err := ss.reverse(ctx, cur); err != nil {
			return err
		}

		r, err := ss.apply(ctx, next)
		if err != nil {
			return err
		}

		if err := ss.tx.UpdateTransaction(ctx, next); err != nil {
			return err
		}

		res.BudgetOverrun = r.BudgetOverrun

		return ss.flush(ctx)
	})
	if err != nil {
		s.log.Warn("transaction update rejected", "user_id", userID, "transaction_id", id, "error", err)
		return nil, err
	}

	if res.RequiresConfirmation {
		return &res, nil
	}

	res.Transaction = next
	s.log.Info("transaction updated", "user_id", userID, "transaction_id", id)

	return &res, nil
}

// SoftDelete reverses the transaction's effect and hides it.
func (s *Service) SoftDelete(ctx context.Context, id, userID uuid.UUID) error {
	err := s.unit(ctx, userID, func(ss *session) error {
		if err := ss.lock(ctx, id); err != nil {
			return err
		}

		cur, err := ss.tx.GetTransaction(ctx, id, userID, lifecycle.Active)
		if err != nil {
			return err
		}

		if err := ss.lock(ctx, cur.ledgerIDs()...); err != nil {
			return err
		}

		if err := ss.reverse(ctx, cur); err != nil {
			return err
		}

		if err := ss.tx.SetTransactionDeleted(ctx, id, userID, true, s.now()); err != nil {
			return err
		}

		return ss.flush(ctx)
	})
	if err != nil {
		return err
	}

	s.log.Info("transaction soft deleted", "user_id", userID, "transaction_id", id)

	return nil
}

// Restore re-applies a soft-deleted transaction. It fails like Create would if
// the source can no longer absorb it.
func (s *Service) Restore(ctx context.Context, id, userID uuid.UUID) (*Result, error) {
	var res Result

	err := s.unit(ctx, userID, func(ss *session) error {
		if err := ss.lock(ctx, id); err != nil {
			return err
		}

		cur, err := ss.tx.GetTransaction(ctx, id, userID, lifecycle.Deleted)
		if err != nil {
			return err
		}

		if err := ss.lock(ctx, cur.ledgerIDs()...); err != nil {
			return err
		}

		r, err := ss.apply(ctx, cur)
		if err != nil {
			return err
		}

		if err := ss.tx.SetTransactionDeleted(ctx, id, userID, false, s.now()); err != nil {
			return err
		}

		cur.IsDeleted = false
		cur.DeletedAt = nil
		res.Transaction = cur
		res.BudgetOverrun = r.BudgetOverrun

		return ss.flush(ctx)
	})
	if err != nil {
		s.log.Warn("transaction restore rejected", "user_id", userID, "transaction_id", id, "error", err)
		return nil, err
	}

	s.log.Info("transaction restored", "user_id", userID, "transaction_id", id)

	return &res, nil
}

// Delete removes the transaction permanently, reversing it first unless it was
// already soft-deleted.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	err := s.unit(ctx, userID, func(ss *session) error {
		if err := ss.lock(ctx, id); err != nil {
			return err
		}

		cur, err := ss.tx.GetTransaction(ctx, id, userID, lifecycle.Any)
		if err != nil {
			return err
		}

		if !cur.IsDeleted {
			if err := ss.lock(ctx, cur.ledgerIDs()...); err != nil {
				return err
			}

			if err := ss.reverse(ctx, cur); err != nil {
				return err
			}
		}

		if err := ss.tx.DeleteTransaction(ctx, id, userID); err != nil {
			return err
		}

		return ss.flush(ctx)
	})
	if err != nil {
		return err
	}

	s.log.Info("transaction deleted", "user_id", userID, "transaction_id", id)

	return nil
}

package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/cache"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
)

// session is the identity map of one unit of work. Every wallet, goal and
// budget is loaded at most once so that a reversal and a re-application on the
// same record act on the same value. flush writes back only what changed.
type session struct {
	tx     Tx
	engine *ledger.Engine
	userID uuid.UUID

	wallets map[uuid.UUID]*wallet.Wallet
	goals   map[uuid.UUID]*goal.Goal
	// budgets is keyed by category id; a nil value records that none is active.
	budgets  map[uuid.UUID]*budget.Budget
	original map[uuid.UUID]decimal.Decimal
}

func newSession(tx Tx, engine *ledger.Engine, userID uuid.UUID) *session {
	return &session{
		tx:       tx,
		engine:   engine,
		userID:   userID,
		wallets:  make(map[uuid.UUID]*wallet.Wallet),
		goals:    make(map[uuid.UUID]*goal.Goal),
		budgets:  make(map[uuid.UUID]*budget.Budget),
		original: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (s *session) lock(ctx context.Context, ids ...uuid.UUID) error {
	return s.tx.Lock(ctx, ids...)
}

// funding resolves the transaction source. Reversals pass lifecycle.Any so
// that a transaction can be undone against a soft-deleted wallet or goal.
func (s *session) funding(ctx context.Context, src Source, filter lifecycle.Filter) (ledger.Target, error) {
	switch src.Kind {
	case SourceWallet:
		w, ok := s.wallets[src.ID]
		if !ok {
			var err error

			w, err = s.tx.GetWallet(ctx, src.ID, s.userID, lifecycle.Any)
			if err != nil {
				return ledger.Target{}, err
			}

			s.wallets[src.ID] = w
			s.original[w.ID] = w.Balance
		}

		if !filter.Matches(w.IsDeleted) {
			return ledger.Target{}, apperr.NotFound("Wallet")
		}

		return ledger.Target{Kind: ledger.KindWallet, ID: w.ID, Amount: &w.Balance}, nil
	case SourceGoal:
		g, ok := s.goals[src.ID]
		if !ok {
			var err error

			g, err = s.tx.GetGoal(ctx, src.ID, s.userID, lifecycle.Any)
			if err != nil {
				return ledger.Target{}, err
			}

			s.goals[src.ID] = g
			s.original[g.ID] = g.SavedAmount
		}

		if !filter.Matches(g.IsDeleted) {
			return ledger.Target{}, apperr.NotFound("Goal")
		}

		return ledger.Target{Kind: ledger.KindGoal, ID: g.ID, Amount: &g.SavedAmount}, nil
	default:
		return ledger.Target{}, apperr.Validation("Either wallet_id or goal_id is required")
	}
}

// budget returns the active budget for a category, or nil when there is none.
func (s *session) budget(ctx context.Context, categoryID uuid.UUID) (*ledger.Target, error) {
	b, ok := s.budgets[categoryID]
	if !ok {
		var err error

		b, err = s.tx.ActiveBudget(ctx, s.userID, categoryID)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}

		s.budgets[categoryID] = b
		if b != nil {
			s.original[b.ID] = b.Amount
		}
	}

	if b == nil {
		return nil, nil
	}

	return &ledger.Target{Kind: ledger.KindBudget, ID: b.ID, Amount: &b.Amount}, nil
}

// apply resolves every ledger t touches and adds its effect. Checks run in
// order: source, category, funding, budget.
func (s *session) apply(ctx context.Context, t *Transaction) (ledger.Result, error) {
	funding, err := s.funding(ctx, t.Source, lifecycle.Active)
	if err != nil {
		return ledger.Result{}, err
	}

	if w, ok := s.wallets[t.Source.ID]; ok && t.Source.Kind == SourceWallet && !w.Currency.Fits(t.Amount) {
		return ledger.Result{}, apperr.Validation("Amount has too many decimal places for " + string(w.Currency))
	}

	if t.CategoryID != nil {
		if _, err := s.tx.GetCategory(ctx, *t.CategoryID, s.userID); err != nil {
			return ledger.Result{}, err
		}
	}

	if err := s.engine.CheckFunding(funding, t.Entry()); err != nil {
		return ledger.Result{}, err
	}

	set := ledger.Set{Funding: funding}

	if t.CategoryID != nil {
		b, err := s.budget(ctx, *t.CategoryID)
		if err != nil {
			return ledger.Result{}, err
		}

		if b == nil {
			return ledger.Result{}, apperr.NotFound("Budget")
		}

		set.Budget = b
	}

	return s.engine.Apply(set, t.Entry())
}

// reverse removes t's effect. A budget that is no longer active is left alone.
func (s *session) reverse(ctx context.Context, t *Transaction) error {
	funding, err := s.funding(ctx, t.Source, lifecycle.Any)
	if err != nil {
		return err
	}

	set := ledger.Set{Funding: funding}

	if t.CategoryID != nil {
		b, err := s.budget(ctx, *t.CategoryID)
		if err != nil {
			return err
		}

		set.Budget = b
	}

	s.engine.Reverse(set, t.Entry())

	return nil
}

func (s *session) changed(id uuid.UUID, now decimal.Decimal) bool {
	return !s.original[id].Equal(now)
}

func (s *session) flush(ctx context.Context) error {
	for _, w := range s.wallets {
		if !s.changed(w.ID, w.Balance) {
			continue
		}

		if err := s.tx.SaveWallet(ctx, w); err != nil {
			return err
		}
	}

	for _, g := range s.goals {
		if !s.changed(g.ID, g.SavedAmount) {
			continue
		}

		if err := s.tx.SaveGoal(ctx, g); err != nil {
			return err
		}
	}

	for _, b := range s.budgets {
		if b == nil || !s.changed(b.ID, b.Amount) {
			continue
		}

		if err := s.tx.SaveBudget(ctx, b); err != nil {
			return err
		}
	}

	return nil
}

// cacheKeys lists the cached views made stale by this unit of work.
func (s *session) cacheKeys() []string {
	var keys []string

	for _, w := range s.wallets {
		if s.changed(w.ID, w.Balance) {
			keys = append(keys, cache.Key(cache.EntityWalletBalance, w.ID))
		}
	}

	for _, g := range s.goals {
		if s.changed(g.ID, g.SavedAmount) {
			keys = append(keys, cache.Key(cache.EntityGoalStatus, g.ID))
		}
	}

	return keys
}

package transaction_test

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
)

type state struct {
	wallets      map[uuid.UUID]wallet.Wallet
	goals        map[uuid.UUID]goal.Goal
	categories   map[uuid.UUID]category.Category
	budgets      map[uuid.UUID]budget.Budget
	transactions map[uuid.UUID]transaction.Transaction
}

func (s state) clone() state {
	return state{
		wallets:      maps.Clone(s.wallets),
		goals:        maps.Clone(s.goals),
		categories:   maps.Clone(s.categories),
		budgets:      maps.Clone(s.budgets),
		transactions: maps.Clone(s.transactions),
	}
}

// memRepo keeps committed state; each memTx works on a private copy that
// replaces it on Commit.
type memRepo struct {
	st      state
	commits int
	// failCreate makes CreateTransaction fail with a store error.
	failCreate bool
}

func newMemRepo() *memRepo {
	return &memRepo{st: state{
		wallets:      map[uuid.UUID]wallet.Wallet{},
		goals:        map[uuid.UUID]goal.Goal{},
		categories:   map[uuid.UUID]category.Category{},
		budgets:      map[uuid.UUID]budget.Budget{},
		transactions: map[uuid.UUID]transaction.Transaction{},
	}}
}

func (r *memRepo) Begin(context.Context) (transaction.Tx, error) {
	return &memTx{repo: r, st: r.st.clone()}, nil
}

func (r *memRepo) GetTransaction(_ context.Context, id, userID uuid.UUID, f lifecycle.Filter) (*transaction.Transaction, error) {
	return findTransaction(r.st, id, userID, f)
}

func (r *memRepo) ListTransactions(_ context.Context, userID uuid.UUID, f lifecycle.Filter, _ pagination.Params) ([]*transaction.Transaction, int, error) {
	var out []*transaction.Transaction

	for _, t := range r.st.transactions {
		if lifecycle.Owned(&t, userID, f) {
			out = append(out, &t)
		}
	}

	return out, len(out), nil
}

func findTransaction(st state, id, userID uuid.UUID, f lifecycle.Filter) (*transaction.Transaction, error) {
	t, ok := st.transactions[id]
	if !ok || !lifecycle.Owned(&t, userID, f) {
		return nil, apperr.NotFound("Transaction")
	}

	return &t, nil
}

type memTx struct {
	repo   *memRepo
	st     state
	locked []uuid.UUID
}

func (m *memTx) Lock(_ context.Context, ids ...uuid.UUID) error {
	m.locked = append(m.locked, ids...)
	return nil
}

func (m *memTx) GetTransaction(_ context.Context, id, userID uuid.UUID, f lifecycle.Filter) (*transaction.Transaction, error) {
	return findTransaction(m.st, id, userID, f)
}

func (m *memTx) GetWallet(_ context.Context, id, userID uuid.UUID, f lifecycle.Filter) (*wallet.Wallet, error) {
	w, ok := m.st.wallets[id]
	if !ok || !lifecycle.Owned(&w, userID, f) {
		return nil, apperr.NotFound("Wallet")
	}

	return &w, nil
}

func (m *memTx) GetGoal(_ context.Context, id, userID uuid.UUID, f lifecycle.Filter) (*goal.Goal, error) {
	g, ok := m.st.goals[id]
	if !ok || !lifecycle.Owned(&g, userID, f) {
		return nil, apperr.NotFound("Goal")
	}

	return &g, nil
}

func (m *memTx) GetCategory(_ context.Context, id, userID uuid.UUID) (*category.Category, error) {
	c, ok := m.st.categories[id]
	if !ok || !lifecycle.Owned(&c, userID, lifecycle.Active) {
		return nil, apperr.NotFound("Category")
	}

	return &c, nil
}

func (m *memTx) ActiveBudget(_ context.Context, userID, categoryID uuid.UUID) (*budget.Budget, error) {
	for _, b := range m.st.budgets {
		if b.UserID == userID && b.CategoryID == categoryID && !b.IsDeleted {
			return &b, nil
		}
	}

	return nil, apperr.NotFound("Budget")
}

func (m *memTx) SaveWallet(_ context.Context, w *wallet.Wallet) error {
	m.st.wallets[w.ID] = *w
	return nil
}

func (m *memTx) SaveGoal(_ context.Context, g *goal.Goal) error {
	m.st.goals[g.ID] = *g
	return nil
}

func (m *memTx) SaveBudget(_ context.Context, b *budget.Budget) error {
	m.st.budgets[b.ID] = *b
	return nil
}

func (m *memTx) CreateTransaction(_ context.Context, t *transaction.Transaction) error {
	if m.repo.failCreate {
		return context.DeadlineExceeded
	}

	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	m.st.transactions[t.ID] = *t

	return nil
}

func (m *memTx) UpdateTransaction(_ context.Context, t *transaction.Transaction) error {
	m.st.transactions[t.ID] = *t
	return nil
}

func (m *memTx) SetTransactionDeleted(_ context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error {
	t, ok := m.st.transactions[id]
	if !ok || t.UserID != userID || t.IsDeleted == deleted {
		return apperr.NotFound("Transaction")
	}

	t.IsDeleted = deleted
	t.DeletedAt = nil

	if deleted {
		t.DeletedAt = &now
	}

	m.st.transactions[id] = t

	return nil
}

func (m *memTx) DeleteTransaction(_ context.Context, id, _ uuid.UUID) error {
	delete(m.st.transactions, id)
	return nil
}

func (m *memTx) WalletTransactions(_ context.Context, userID, walletID uuid.UUID, from, to time.Time) ([]*transaction.Transaction, error) {
	var out []*transaction.Transaction

	for _, t := range m.st.transactions {
		if t.UserID != userID || t.IsDeleted || t.Source.Kind != transaction.SourceWallet || t.Source.ID != walletID {
			continue
		}

		if t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}

		out = append(out, &t)
	}

	slices.SortFunc(out, func(a, b *transaction.Transaction) int { return a.Date.Compare(b.Date) })

	return out, nil
}

func (m *memTx) Commit() error {
	m.repo.st = m.st
	m.repo.commits++

	return nil
}

func (m *memTx) Rollback() error { return nil }

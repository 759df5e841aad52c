package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	budgetstore "github.com/MrJamesThe3rd/pennywise/internal/budget/store"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	categorystore "github.com/MrJamesThe3rd/pennywise/internal/category/store"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	goalstore "github.com/MrJamesThe3rd/pennywise/internal/goal/store"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
	walletstore "github.com/MrJamesThe3rd/pennywise/internal/wallet/store"
)

const selectTransactionColumns = `id, user_id, wallet_id, goal_id, category_id, amount, transaction_type, note, date, is_deleted, deleted_at, created_at, updated_at`

var Transactions = database.Table[*transaction.Transaction]{
	Name:    "transactions",
	Entity:  "Transaction",
	Columns: selectTransactionColumns,
	Scan:    scanTransaction,
}

// scanTransaction expects the column order of selectTransactionColumns.
func scanTransaction(s database.Scanner) (*transaction.Transaction, error) {
	var t transaction.Transaction

	var walletID, goalID *uuid.UUID

	var typ string

	if err := s.Scan(
		&t.ID, &t.UserID, &walletID, &goalID, &t.CategoryID, &t.Amount, &typ, &t.Note, &t.Date,
		&t.IsDeleted, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	src, err := transaction.NewSource(walletID, goalID)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
	}

	t.Source = src
	t.Type = ledger.Type(typ)

	return &t, nil
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetTransaction(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*transaction.Transaction, error) {
	return database.FindOwned(ctx, s.db, Transactions, id, userID, filter)
}

func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) ([]*transaction.Transaction, int, error) {
	return database.ListOwned(ctx, s.db, Transactions, userID, filter, page)
}

func (s *Store) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &unit{tx: tx}, nil
}

// unit implements transaction.Tx on one *sql.Tx. Locks taken through it are
// released on commit or rollback.
type unit struct {
	tx *sql.Tx
}

func (u *unit) Commit() error   { return u.tx.Commit() }
func (u *unit) Rollback() error { return u.tx.Rollback() }

func (u *unit) Lock(ctx context.Context, ids ...uuid.UUID) error {
	return database.Lock(ctx, u.tx, ids...)
}

func (u *unit) GetTransaction(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*transaction.Transaction, error) {
	return database.FindOwned(ctx, u.tx, Transactions, id, userID, filter)
}

func (u *unit) GetWallet(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*wallet.Wallet, error) {
	return database.FindOwned(ctx, u.tx, walletstore.Wallets, id, userID, filter)
}

func (u *unit) GetGoal(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*goal.Goal, error) {
	return database.FindOwned(ctx, u.tx, goalstore.Goals, id, userID, filter)
}

func (u *unit) GetCategory(ctx context.Context, id, userID uuid.UUID) (*category.Category, error) {
	return database.FindOwned(ctx, u.tx, categorystore.Categories, id, userID, lifecycle.Active)
}

func (u *unit) ActiveBudget(ctx context.Context, userID, categoryID uuid.UUID) (*budget.Budget, error) {
	return budgetstore.FindActive(ctx, u.tx, userID, categoryID)
}

func (u *unit) SaveWallet(ctx context.Context, w *wallet.Wallet) error {
	res, err := u.tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		w.Balance, w.ID, w.UserID)
	if err != nil {
		return fmt.Errorf("saving wallet balance: %w", err)
	}

	return database.ExpectOne(res, "Wallet")
}

func (u *unit) SaveGoal(ctx context.Context, g *goal.Goal) error {
	res, err := u.tx.ExecContext(ctx,
		`UPDATE goals SET saved_amount = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		g.SavedAmount, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("saving goal amount: %w", err)
	}

	return database.ExpectOne(res, "Goal")
}

func (u *unit) SaveBudget(ctx context.Context, b *budget.Budget) error {
	res, err := u.tx.ExecContext(ctx,
		`UPDATE budgets SET amount = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		b.Amount, b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("saving budget amount: %w", err)
	}

	return database.ExpectOne(res, "Budget")
}

func (u *unit) CreateTransaction(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, wallet_id, goal_id, category_id, amount, transaction_type, note, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		t.UserID,
		t.Source.WalletID(),
		t.Source.GoalID(),
		t.CategoryID,
		t.Amount,
		t.Type,
		t.Note,
		t.Date,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (u *unit) UpdateTransaction(ctx context.Context, t *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET wallet_id = $1, goal_id = $2, category_id = $3, amount = $4, transaction_type = $5,
			note = $6, date = $7, updated_at = NOW()
		WHERE id = $8 AND user_id = $9 AND NOT is_deleted
		RETURNING updated_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		t.Source.WalletID(),
		t.Source.GoalID(),
		t.CategoryID,
		t.Amount,
		t.Type,
		t.Note,
		t.Date,
		t.ID,
		t.UserID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.NotFound("Transaction")
		}

		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (u *unit) SetTransactionDeleted(ctx context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error {
	return database.SetDeleted(ctx, u.tx, Transactions, id, userID, deleted, now)
}

func (u *unit) DeleteTransaction(ctx context.Context, id, userID uuid.UUID) error {
	return database.DeleteOwned(ctx, u.tx, Transactions, id, userID)
}

func (u *unit) WalletTransactions(ctx context.Context, userID, walletID uuid.UUID, from, to time.Time) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND wallet_id = $2 AND NOT is_deleted AND date >= $3 AND date < $4
		ORDER BY date ASC`

	rows, err := u.tx.QueryContext(ctx, query, userID, walletID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing wallet transactions: %w", err)
	}
	defer rows.Close()

	var ts []*transaction.Transaction

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		ts = append(ts, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating wallet transactions: %w", err)
	}

	return ts, nil
}

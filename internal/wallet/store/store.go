package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
)

const selectWalletColumns = `id, user_id, name, balance, currency, is_deleted, deleted_at, created_at, updated_at`

// Wallets describes the wallets table for the shared owned-record helpers.
var Wallets = database.Table[*wallet.Wallet]{
	Name:    "wallets",
	Entity:  "Wallet",
	Columns: selectWalletColumns,
	Scan:    scanWallet,
}

func scanWallet(s database.Scanner) (*wallet.Wallet, error) {
	var w wallet.Wallet

	var cur string

	if err := s.Scan(
		&w.ID, &w.UserID, &w.Name, &w.Balance, &cur,
		&w.IsDeleted, &w.DeletedAt, &w.CreatedAt, &w.UpdatedAt,
	); err != nil {
		return nil, err
	}

	w.Currency = wallet.Currency(cur)

	return &w, nil
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateWallet(ctx context.Context, w *wallet.Wallet) error {
	query := `
		INSERT INTO wallets (user_id, name, balance, currency, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, w.UserID, w.Name, w.Balance, w.Currency).
		Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Wallet name already exists")
		}

		return fmt.Errorf("creating wallet: %w", err)
	}

	return nil
}

func (s *Store) GetWallet(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*wallet.Wallet, error) {
	return database.FindOwned(ctx, s.db, Wallets, id, userID, filter)
}

func (s *Store) ListWallets(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) ([]*wallet.Wallet, int, error) {
	return database.ListOwned(ctx, s.db, Wallets, userID, filter, page)
}

func (s *Store) UpdateWallet(ctx context.Context, w *wallet.Wallet) error {
	query := `
		UPDATE wallets
		SET name = $1, currency = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4 AND NOT is_deleted
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, w.Name, w.Currency, w.ID, w.UserID).Scan(&w.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.NotFound("Wallet")
		}

		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Wallet name already exists")
		}

		return fmt.Errorf("updating wallet: %w", err)
	}

	return nil
}

func (s *Store) SetDeleted(ctx context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error {
	return database.SetDeleted(ctx, s.db, Wallets, id, userID, deleted, now)
}

func (s *Store) FindCollision(ctx context.Context, userID uuid.UUID, name string, exclude uuid.UUID) (lifecycle.Collision, error) {
	return database.FindCollision(ctx, s.db, Wallets, userID, "name", name, exclude)
}

// DeleteWallet removes the wallet together with its already soft-deleted
// transactions.
func (s *Store) DeleteWallet(ctx context.Context, id, userID uuid.UUID) error {
	return database.DeleteParent(ctx, s.db, Wallets, "wallet_id", id, userID)
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	categorystore "github.com/MrJamesThe3rd/pennywise/internal/category/store"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
)

const selectBudgetColumns = `id, user_id, category_id, amount, start_date, end_date, is_deleted, deleted_at, created_at, updated_at`

var Budgets = database.Table[*budget.Budget]{
	Name:    "budgets",
	Entity:  "Budget",
	Columns: selectBudgetColumns,
	Scan:    scanBudget,
	Key:     "category",
}

func scanBudget(s database.Scanner) (*budget.Budget, error) {
	var b budget.Budget

	if err := s.Scan(
		&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.StartDate, &b.EndDate,
		&b.IsDeleted, &b.DeletedAt, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	b.StartDate = b.StartDate.UTC()
	b.EndDate = b.EndDate.UTC()

	return &b, nil
}

// FindActive returns the user's single active budget for a category.
func FindActive(ctx context.Context, q database.Querier, userID, categoryID uuid.UUID) (*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + ` FROM budgets
		WHERE user_id = $1 AND category_id = $2 AND NOT is_deleted`

	b, err := scanBudget(q.QueryRowContext(ctx, query, userID, categoryID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("Budget")
		}

		return nil, fmt.Errorf("finding active budget: %w", err)
	}

	return b, nil
}

type Store struct {
	db *sql.DB
	q  database.Querier
}

func New(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Locked runs fn against a store bound to one transaction that holds the
// advisory locks of ids. The ledger takes the same category locks before
// moving a budget's amount.
func (s *Store) Locked(ctx context.Context, ids []uuid.UUID, fn func(r budget.Repository) error) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := database.Lock(ctx, tx, ids...); err != nil {
			return err
		}

		return fn(&Store{db: s.db, q: tx})
	})
}

func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (user_id, category_id, amount, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.q.QueryRowContext(ctx, query, b.UserID, b.CategoryID, b.Amount, b.StartDate, b.EndDate).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Budget category already exists")
		}

		return fmt.Errorf("creating budget: %w", err)
	}

	return nil
}

func (s *Store) GetBudget(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*budget.Budget, error) {
	return database.FindOwned(ctx, s.q, Budgets, id, userID, filter)
}

func (s *Store) ListBudgets(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) ([]*budget.Budget, int, error) {
	return database.ListOwned(ctx, s.q, Budgets, userID, filter, page)
}

// UpdateBudget writes the category and period. The amount column is written
// only when withAmount is set; otherwise b.Amount is refreshed from the row.
func (s *Store) UpdateBudget(ctx context.Context, b *budget.Budget, withAmount bool) error {
	query := `
		UPDATE budgets
		SET category_id = $1, start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5 AND NOT is_deleted
		RETURNING amount, updated_at
	`
	args := []any{b.CategoryID, b.StartDate, b.EndDate, b.ID, b.UserID}

	if withAmount {
		query = `
			UPDATE budgets
			SET category_id = $1, start_date = $2, end_date = $3, amount = $4, updated_at = NOW()
			WHERE id = $5 AND user_id = $6 AND NOT is_deleted
			RETURNING amount, updated_at
		`
		args = []any{b.CategoryID, b.StartDate, b.EndDate, b.Amount, b.ID, b.UserID}
	}

	err := s.q.QueryRowContext(ctx, query, args...).Scan(&b.Amount, &b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.NotFound("Budget")
		}

		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Budget category already exists")
		}

		return fmt.Errorf("updating budget: %w", err)
	}

	return nil
}

func (s *Store) SetDeleted(ctx context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error {
	return database.SetDeleted(ctx, s.q, Budgets, id, userID, deleted, now)
}

func (s *Store) DeleteBudget(ctx context.Context, id, userID uuid.UUID) error {
	return database.DeleteOwned(ctx, s.q, Budgets, id, userID)
}

func (s *Store) FindCollision(ctx context.Context, userID, categoryID, exclude uuid.UUID) (lifecycle.Collision, error) {
	return database.FindCollision(ctx, s.q, Budgets, userID, "category_id", categoryID, exclude)
}

func (s *Store) CategoryActive(ctx context.Context, categoryID, userID uuid.UUID) error {
	_, err := database.FindOwned(ctx, s.q, categorystore.Categories, categoryID, userID, lifecycle.Active)
	return err
}

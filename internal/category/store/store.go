package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
)

var Categories = database.Table[*category.Category]{
	Name:    "categories",
	Entity:  "Category",
	Columns: `id, user_id, name, is_deleted, deleted_at, created_at, updated_at`,
	Scan:    scanCategory,
}

func scanCategory(s database.Scanner) (*category.Category, error) {
	var c category.Category

	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.IsDeleted, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	return &c, nil
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (user_id, name, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, c.UserID, c.Name).Scan(&c.ID, &c.CreatedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Category name already exists")
		}

		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*category.Category, error) {
	return database.FindOwned(ctx, s.db, Categories, id, userID, filter)
}

func (s *Store) ListCategories(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) ([]*category.Category, int, error) {
	return database.ListOwned(ctx, s.db, Categories, userID, filter, page)
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories SET name = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND NOT is_deleted
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, c.Name, c.ID, c.UserID).Scan(&c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.NotFound("Category")
		}

		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Category name already exists")
		}

		return fmt.Errorf("updating category: %w", err)
	}

	return nil
}

func (s *Store) SetDeleted(ctx context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error {
	return database.SetDeleted(ctx, s.db, Categories, id, userID, deleted, now)
}

func (s *Store) FindCollision(ctx context.Context, userID uuid.UUID, name string, exclude uuid.UUID) (lifecycle.Collision, error) {
	return database.FindCollision(ctx, s.db, Categories, userID, "name", name, exclude)
}

// DeleteCategory is refused by the foreign keys of budgets and transactions
// while either still references the category.
func (s *Store) DeleteCategory(ctx context.Context, id, userID uuid.UUID) error {
	return database.DeleteOwned(ctx, s.db, Categories, id, userID)
}

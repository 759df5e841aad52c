package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	categorystore "github.com/MrJamesThe3rd/pennywise/internal/category/store"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, userID uuid.UUID, note string) (*uuid.UUID, error) {
	query := `
		SELECT r.category_id
		FROM category_rules r
		JOIN categories c ON c.id = r.category_id AND NOT c.is_deleted
		WHERE r.user_id = $1 AND $2 ILIKE '%' || r.pattern || '%'
		ORDER BY LENGTH(r.pattern) DESC, r.created_at DESC
		LIMIT 1
	`

	var categoryID uuid.UUID

	err := s.db.QueryRowContext(ctx, query, userID, note).Scan(&categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("finding match: %w", err)
	}

	return &categoryID, nil
}

func (s *Store) CreateRule(ctx context.Context, r *matching.Rule) error {
	query := `
		INSERT INTO category_rules (user_id, pattern, category_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, r.UserID, r.Pattern, r.CategoryID).Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}

func (s *Store) ListRules(ctx context.Context, userID uuid.UUID) ([]*matching.Rule, error) {
	query := `
		SELECT id, user_id, pattern, category_id, created_at
		FROM category_rules
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []*matching.Rule

	for rows.Next() {
		var r matching.Rule
		if err := rows.Scan(&r.ID, &r.UserID, &r.Pattern, &r.CategoryID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rules = append(rules, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return rules, nil
}

func (s *Store) DeleteRule(ctx context.Context, id, userID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM category_rules WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	return database.ExpectOne(res, "Rule")
}

func (s *Store) CategoryActive(ctx context.Context, categoryID, userID uuid.UUID) error {
	_, err := database.FindOwned(ctx, s.db, categorystore.Categories, categoryID, userID, lifecycle.Active)
	return err
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
)

const selectGoalColumns = `id, user_id, name, target_amount, saved_amount, deadline, is_deleted, deleted_at, created_at, updated_at`

var Goals = database.Table[*goal.Goal]{
	Name:    "goals",
	Entity:  "Goal",
	Columns: selectGoalColumns,
	Scan:    scanGoal,
}

func scanGoal(s database.Scanner) (*goal.Goal, error) {
	var g goal.Goal

	if err := s.Scan(
		&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.SavedAmount, &g.Deadline,
		&g.IsDeleted, &g.DeletedAt, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}

	g.Deadline = g.Deadline.UTC()

	return &g, nil
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		INSERT INTO goals (user_id, name, target_amount, saved_amount, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, g.UserID, g.Name, g.TargetAmount, g.SavedAmount, g.Deadline).
		Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Goal name already exists")
		}

		return fmt.Errorf("creating goal: %w", err)
	}

	return nil
}

func (s *Store) GetGoal(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*goal.Goal, error) {
	return database.FindOwned(ctx, s.db, Goals, id, userID, filter)
}

func (s *Store) ListGoals(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) ([]*goal.Goal, int, error) {
	return database.ListOwned(ctx, s.db, Goals, userID, filter, page)
}

func (s *Store) UpdateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		UPDATE goals
		SET name = $1, target_amount = $2, deadline = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5 AND NOT is_deleted
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, g.Name, g.TargetAmount, g.Deadline, g.ID, g.UserID).Scan(&g.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.NotFound("Goal")
		}

		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Goal name already exists")
		}

		return fmt.Errorf("updating goal: %w", err)
	}

	return nil
}

func (s *Store) SetDeleted(ctx context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error {
	return database.SetDeleted(ctx, s.db, Goals, id, userID, deleted, now)
}

func (s *Store) FindCollision(ctx context.Context, userID uuid.UUID, name string, exclude uuid.UUID) (lifecycle.Collision, error) {
	return database.FindCollision(ctx, s.db, Goals, userID, "name", name, exclude)
}

func (s *Store) DeleteGoal(ctx context.Context, id, userID uuid.UUID) error {
	return database.DeleteParent(ctx, s.db, Goals, "goal_id", id, userID)
}

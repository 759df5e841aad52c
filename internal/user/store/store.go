package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/user"
)

const selectUserColumns = `id, username, email, password_hash, active, deleted_at, created_at, updated_at`

func scanUser(s database.Scanner) (*user.User, error) {
	var u user.User

	if err := s.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Active, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &u, nil
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, active, created_at)
		VALUES ($1, $2, $3, TRUE, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Email already exists")
		}

		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

func (s *Store) get(ctx context.Context, where string, arg any) (*user.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+selectUserColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.get(ctx, `id = $1 AND active`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.get(ctx, `email = $1`, email)
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, updated_at = NOW()
		WHERE id = $4 AND active
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.ID).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("User")
		}

		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Email already exists")
		}

		return fmt.Errorf("updating user: %w", err)
	}

	return nil
}

// SetActive only flips users currently in the opposite state.
func (s *Store) SetActive(ctx context.Context, id uuid.UUID, active bool, now time.Time) error {
	var deletedAt *time.Time
	if !active {
		deletedAt = &now
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET active = $1, deleted_at = $2, updated_at = NOW() WHERE id = $3 AND active = $4`,
		active, deletedAt, id, !active)
	if err != nil {
		return fmt.Errorf("updating user state: %w", err)
	}

	return database.ExpectOne(res, "User")
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return database.ExpectOne(res, "User")
}

func (s *Store) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var taken bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, exclude,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}

	return taken, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
)

// Scanner is satisfied by both *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Table describes how one owned entity is stored. Every table it names carries
// id, user_id, is_deleted, deleted_at and created_at columns.
type Table[T lifecycle.Ownable] struct {
	Name    string
	Entity  string
	Columns string
	Scan    func(Scanner) (T, error)
	// Key names the column unique among active rows. Empty means name.
	Key string
}

func (t Table[T]) key() string {
	if t.Key == "" {
		return "name"
	}

	return t.Key
}

// FindOwned loads one record and checks it belongs to userID and matches f.
// Absent, foreign and wrong-state rows all yield NotFound.
func FindOwned[T lifecycle.Ownable](ctx context.Context, q Querier, t Table[T], id, userID uuid.UUID, f lifecycle.Filter) (T, error) {
	var zero T

	query := `SELECT ` + t.Columns + ` FROM ` + t.Name + ` WHERE id = $1`

	v, err := t.Scan(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, apperr.NotFound(t.Entity)
		}

		return zero, fmt.Errorf("finding %s: %w", t.Name, err)
	}

	if !lifecycle.Owned(v, userID, f) {
		return zero, apperr.NotFound(t.Entity)
	}

	return v, nil
}

// ListOwned returns one page of the user's records in state f, newest first,
// together with the total count.
func ListOwned[T lifecycle.Ownable](ctx context.Context, q Querier, t Table[T], userID uuid.UUID, f lifecycle.Filter, p pagination.Params) ([]T, int, error) {
	where := ` WHERE user_id = $1`
	args := []any{userID}

	if f != lifecycle.Any {
		where += ` AND is_deleted = $2`

		args = append(args, f == lifecycle.Deleted)
	}

	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.Name+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", t.Name, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		t.Columns, t.Name, where, len(args)+1, len(args)+2)

	rows, err := q.QueryContext(ctx, query, append(args, p.Limit(), p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing %s: %w", t.Name, err)
	}
	defer rows.Close()

	var items []T

	for rows.Next() {
		v, err := t.Scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning %s: %w", t.Name, err)
		}

		items = append(items, v)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating %s: %w", t.Name, err)
	}

	return items, total, nil
}

// SetDeleted flips the lifecycle flag only when the row is currently in the
// opposite state, so repeating a soft delete or restore yields NotFound.
func SetDeleted[T lifecycle.Ownable](ctx context.Context, q Querier, t Table[T], id, userID uuid.UUID, deleted bool, now time.Time) error {
	var deletedAt *time.Time
	if deleted {
		deletedAt = &now
	}

	query := `UPDATE ` + t.Name + `
		SET is_deleted = $1, deleted_at = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4 AND is_deleted = $5`

	res, err := q.ExecContext(ctx, query, deleted, deletedAt, id, userID, !deleted)
	if err != nil {
		if IsUniqueViolation(err) {
			return apperr.Conflict(t.Entity + " " + t.key() + " already exists")
		}

		return fmt.Errorf("updating %s state: %w", t.Name, err)
	}

	return ExpectOne(res, t.Entity)
}

// DeleteOwned removes the row permanently regardless of its lifecycle state.
func DeleteOwned[T lifecycle.Ownable](ctx context.Context, q Querier, t Table[T], id, userID uuid.UUID) error {
	res, err := q.ExecContext(ctx, `DELETE FROM `+t.Name+` WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return apperr.Conflict("Cannot delete " + t.Entity + " with associated records")
		}

		return fmt.Errorf("deleting %s: %w", t.Name, err)
	}

	return ExpectOne(res, t.Entity)
}

// DeleteParent hard-deletes a wallet or goal that funds transactions. The
// row's advisory lock keeps a concurrent transaction create out between the
// check and the delete. Active transactions block the delete; soft-deleted
// ones go with the parent.
func DeleteParent[T lifecycle.Ownable](ctx context.Context, db *sql.DB, t Table[T], fk string, id, userID uuid.UUID) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := Lock(ctx, tx, id); err != nil {
			return err
		}

		if _, err := FindOwned(ctx, tx, t, id, userID, lifecycle.Any); err != nil {
			return err
		}

		var active bool

		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM transactions WHERE `+fk+` = $1 AND NOT is_deleted)`, id,
		).Scan(&active)
		if err != nil {
			return fmt.Errorf("checking %s transactions: %w", t.Name, err)
		}

		if active {
			return apperr.Conflict("Cannot delete " + strings.ToLower(t.Entity) + " with associated transactions")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE `+fk+` = $1 AND is_deleted`, id); err != nil {
			return fmt.Errorf("deleting %s transactions: %w", t.Name, err)
		}

		return DeleteOwned(ctx, tx, t, id, userID)
	})
}

// FindCollision looks up same-keyed siblings of a record about to be created
// or renamed. exclude skips the record itself on rename.
func FindCollision[T lifecycle.Ownable](ctx context.Context, q Querier, t Table[T], userID uuid.UUID, column string, value any, exclude uuid.UUID) (lifecycle.Collision, error) {
	query := `SELECT id, is_deleted FROM ` + t.Name + `
		WHERE user_id = $1 AND ` + column + ` = $2 AND id <> $3
		ORDER BY is_deleted, deleted_at DESC`

	rows, err := q.QueryContext(ctx, query, userID, value, exclude)
	if err != nil {
		return lifecycle.Collision{}, fmt.Errorf("checking %s %s: %w", t.Name, column, err)
	}
	defer rows.Close()

	var c lifecycle.Collision

	for rows.Next() {
		var (
			id      uuid.UUID
			deleted bool
		)

		if err := rows.Scan(&id, &deleted); err != nil {
			return lifecycle.Collision{}, fmt.Errorf("scanning %s collision: %w", t.Name, err)
		}

		switch {
		case !deleted && c.ActiveID == uuid.Nil:
			c.ActiveID = id
		case deleted && c.DeletedID == uuid.Nil:
			c.DeletedID = id
		}
	}

	if err := rows.Err(); err != nil {
		return lifecycle.Collision{}, fmt.Errorf("iterating %s collisions: %w", t.Name, err)
	}

	return c, nil
}

// ExpectOne maps an update that matched no row to NotFound.
func ExpectOne(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return apperr.NotFound(entity)
	}

	return nil
}

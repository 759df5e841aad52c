package store_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/goal/store"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
)

var goalColumns = []string{"id", "user_id", "name", "target_amount", "saved_amount", "deadline", "is_deleted", "deleted_at", "created_at", "updated_at"}

func TestStore_CreateGoal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	id := uuid.New()
	deadline := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO goals")).
		WithArgs(userID, "Bike", decimal.NewFromInt(1000000), decimal.Zero, deadline).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), time.Now()))

	g := &goal.Goal{UserID: userID, Name: "Bike", TargetAmount: decimal.NewFromInt(1000000), SavedAmount: decimal.Zero, Deadline: deadline}
	require.NoError(t, store.New(db).CreateGoal(context.Background(), g))

	assert.Equal(t, id, g.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetGoal_ForeignOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM goals WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(goalColumns).
			AddRow(id.String(), uuid.NewString(), "Bike", "100", "0", time.Now(), false, nil, time.Now(), nil))

	_, err = store.New(db).GetGoal(context.Background(), id, uuid.New(), lifecycle.Active)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestStore_ListGoals_Deleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	page := pagination.New(2, 1, pagination.DefaultPerPage)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM goals WHERE user_id = $1 AND is_deleted = $2")).
		WithArgs(userID, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM goals WHERE user_id = $1 AND is_deleted = $2 ORDER BY created_at DESC, id LIMIT $3 OFFSET $4")).
		WithArgs(userID, true, 1, 1).
		WillReturnRows(sqlmock.NewRows(goalColumns).
			AddRow(uuid.NewString(), userID.String(), "Trip", "500", "20", time.Now(), true, time.Now(), time.Now(), nil))

	gs, total, err := store.New(db).ListGoals(context.Background(), userID, lifecycle.Deleted, page)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, gs, 1)
	assert.Equal(t, "Trip", gs[0].Name)
	assert.True(t, gs[0].IsDeleted)
}

func TestStore_DeleteGoal_Blocked(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(database.LockKey(id)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM goals WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(goalColumns).
			AddRow(id.String(), userID.String(), "Bike", "100", "40", time.Now(), false, nil, time.Now(), nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM transactions WHERE goal_id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err = store.New(db).DeleteGoal(context.Background(), id, userID)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, e.Kind)
	assert.Equal(t, "Cannot delete goal with associated transactions", e.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package store_test

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/budget/store"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
)

var budgetColumns = []string{"id", "user_id", "category_id", "amount", "start_date", "end_date", "is_deleted", "deleted_at", "created_at", "updated_at"}

func TestFindActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	categoryID := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM budgets")).
		WithArgs(userID, categoryID).
		WillReturnRows(sqlmock.NewRows(budgetColumns).
			AddRow(id.String(), userID.String(), categoryID.String(), "500000.00",
				time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
				false, nil, time.Now(), nil))

	b, err := store.FindActive(context.Background(), db, userID, categoryID)
	require.NoError(t, err)
	assert.Equal(t, id, b.ID)
	assert.Equal(t, "500000", b.Amount.String())
}

func TestFindActive_None(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM budgets")).
		WillReturnRows(sqlmock.NewRows(budgetColumns))

	_, err = store.FindActive(context.Background(), db, uuid.New(), uuid.New())

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Budget not found", e.Message)
}

func TestStore_SetDeleted_RestoreClashes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE budgets")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = store.New(db).SetDeleted(context.Background(), uuid.New(), uuid.New(), false, time.Now())
	assert.EqualError(t, err, "Budget category already exists")
}

func TestStore_UpdateBudget(t *testing.T) {
	tests := []struct {
		name       string
		withAmount bool
		query      string
		args       func(b *budget.Budget) []driver.Value
		wantAmount string
	}{
		{
			name:  "DatesOnlyLeavesAmountAlone",
			query: "SET category_id = $1, start_date = $2, end_date = $3, updated_at = NOW()",
			args: func(b *budget.Budget) []driver.Value {
				return []driver.Value{b.CategoryID, b.StartDate, b.EndDate, b.ID, b.UserID}
			},
			wantAmount: "-7500",
		},
		{
			name:       "AmountWritten",
			withAmount: true,
			query:      "SET category_id = $1, start_date = $2, end_date = $3, amount = $4, updated_at = NOW()",
			args: func(b *budget.Budget) []driver.Value {
				return []driver.Value{b.CategoryID, b.StartDate, b.EndDate, b.Amount, b.ID, b.UserID}
			},
			wantAmount: "20000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			b := &budget.Budget{
				ID:         uuid.New(),
				UserID:     uuid.New(),
				CategoryID: uuid.New(),
				Amount:     decimal.NewFromInt(20000),
				StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			}

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
				WithArgs(database.LockKey(b.CategoryID)).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(regexp.QuoteMeta(tt.query)).
				WithArgs(tt.args(b)...).
				WillReturnRows(sqlmock.NewRows([]string{"amount", "updated_at"}).AddRow(tt.wantAmount+".00", time.Now()))
			mock.ExpectCommit()

			err = store.New(db).Locked(context.Background(), []uuid.UUID{b.CategoryID}, func(r budget.Repository) error {
				return r.UpdateBudget(context.Background(), b, tt.withAmount)
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, b.Amount.String())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_Locked_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	b := &budget.Budget{ID: uuid.New(), UserID: uuid.New(), CategoryID: uuid.New()}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(database.LockKey(b.CategoryID)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE budgets")).
		WillReturnRows(sqlmock.NewRows([]string{"amount", "updated_at"}))
	mock.ExpectRollback()

	err = store.New(db).Locked(context.Background(), []uuid.UUID{b.CategoryID}, func(r budget.Repository) error {
		return r.UpdateBudget(context.Background(), b, false)
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

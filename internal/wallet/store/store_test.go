package store_test

import (
	"context"
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
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet/store"
)

var walletColumns = []string{"id", "user_id", "name", "balance", "currency", "is_deleted", "deleted_at", "created_at", "updated_at"}

func TestStore_CreateWallet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	id := uuid.New()
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets")).
		WithArgs(userID, "Cash", decimal.RequireFromString("200000"), wallet.CurrencyVND).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), createdAt))

	w := &wallet.Wallet{UserID: userID, Name: "Cash", Balance: decimal.RequireFromString("200000"), Currency: wallet.CurrencyVND}
	require.NoError(t, store.New(db).CreateWallet(context.Background(), w))

	assert.Equal(t, id, w.ID)
	assert.True(t, w.CreatedAt.Equal(createdAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateWallet_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = store.New(db).CreateWallet(context.Background(), &wallet.Wallet{Name: "Cash", Currency: wallet.CurrencyVND})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestStore_GetWallet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(walletColumns).
			AddRow(id.String(), userID.String(), "Cash", "100000.00", "VND", false, nil, time.Now(), nil))

	w, err := store.New(db).GetWallet(context.Background(), id, userID, lifecycle.Active)
	require.NoError(t, err)
	assert.Equal(t, "Cash", w.Name)
	assert.Equal(t, wallet.CurrencyVND, w.Currency)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(100000)))
}

func TestStore_DeleteWallet(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()

	type testCase struct {
		name     string
		active   bool
		wantKind *apperr.Kind
	}

	tests := []testCase{
		{name: "NoActiveTransactions", active: false},
		{name: "BlockedByActiveTransactions", active: true, wantKind: new(apperr.KindConflict)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
				WithArgs(database.LockKey(id)).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE id = $1")).
				WithArgs(id).
				WillReturnRows(sqlmock.NewRows(walletColumns).
					AddRow(id.String(), userID.String(), "Cash", "0", "VND", true, time.Now(), time.Now(), nil))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
				WithArgs(id).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.active))

			if tt.wantKind == nil {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions WHERE wallet_id = $1 AND is_deleted")).
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM wallets WHERE id = $1 AND user_id = $2")).
					WithArgs(id, userID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err = store.New(db).DeleteWallet(context.Background(), id, userID)

			if tt.wantKind != nil {
				assert.Equal(t, *tt.wantKind, apperr.KindOf(err))
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

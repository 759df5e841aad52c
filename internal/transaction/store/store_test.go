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
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction/store"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
)

var transactionColumns = []string{
	"id", "user_id", "wallet_id", "goal_id", "category_id", "amount", "transaction_type", "note", "date",
	"is_deleted", "deleted_at", "created_at", "updated_at",
}

func TestStore_GetTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	id := uuid.New()
	goalID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(id.String(), userID.String(), nil, goalID.String(), nil, "250000.00", "Income", "bonus",
				time.Now(), false, nil, time.Now(), nil))

	got, err := store.New(db).GetTransaction(context.Background(), id, userID, lifecycle.Active)
	require.NoError(t, err)
	assert.Equal(t, transaction.Source{Kind: transaction.SourceGoal, ID: goalID}, got.Source)
	assert.Nil(t, got.CategoryID)
	assert.Equal(t, ledger.Income, got.Type)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(250000)))
}

func TestStore_UnitOfWork(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	walletID := uuid.New()
	categoryID := uuid.New()
	id := uuid.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(database.LockKey(walletID)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance = $1")).
		WithArgs(decimal.NewFromInt(100000), walletID, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(userID, walletID, nil, categoryID, decimal.NewFromInt(100000), ledger.Expense, "lunch", date).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), time.Now()))
	mock.ExpectCommit()

	tx, err := store.New(db).Begin(context.Background())
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, tx.Lock(ctx, walletID))
	require.NoError(t, tx.SaveWallet(ctx, &wallet.Wallet{ID: walletID, UserID: userID, Balance: decimal.NewFromInt(100000)}))

	tr := &transaction.Transaction{
		UserID:     userID,
		Source:     transaction.Source{Kind: transaction.SourceWallet, ID: walletID},
		CategoryID: &categoryID,
		Amount:     decimal.NewFromInt(100000),
		Type:       ledger.Expense,
		Note:       "lunch",
		Date:       date,
	}
	require.NoError(t, tx.CreateTransaction(ctx, tr))
	require.NoError(t, tx.Commit())

	assert.Equal(t, id, tr.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveWallet_Gone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := store.New(db).Begin(context.Background())
	require.NoError(t, err)

	err = tx.SaveWallet(context.Background(), &wallet.Wallet{ID: uuid.New(), UserID: uuid.New()})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

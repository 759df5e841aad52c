package transaction_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/cache"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	repo       *memRepo
	svc        *transaction.Service
	userID     uuid.UUID
	walletID   uuid.UUID
	goalID     uuid.UUID
	categoryID uuid.UUID
	budgetID   uuid.UUID
}

func newFixture(t *testing.T, balance string, policy ledger.BudgetPolicy) *fixture {
	t.Helper()

	f := &fixture{
		repo:       newMemRepo(),
		userID:     uuid.New(),
		walletID:   uuid.New(),
		goalID:     uuid.New(),
		categoryID: uuid.New(),
		budgetID:   uuid.New(),
	}

	f.repo.st.wallets[f.walletID] = wallet.Wallet{
		ID: f.walletID, UserID: f.userID, Name: "Cash", Balance: dec(balance), Currency: wallet.CurrencyVND,
	}
	f.repo.st.goals[f.goalID] = goal.Goal{
		ID: f.goalID, UserID: f.userID, Name: "Trip", TargetAmount: dec("1000000"), SavedAmount: dec("300000"),
	}
	f.repo.st.categories[f.categoryID] = category.Category{ID: f.categoryID, UserID: f.userID, Name: "Food"}
	f.repo.st.budgets[f.budgetID] = budget.Budget{
		ID: f.budgetID, UserID: f.userID, CategoryID: f.categoryID, Amount: dec("500000"),
	}

	f.svc = transaction.NewService(f.repo, ledger.NewEngine(policy, quiet), cache.Noop{}, quiet)

	return f
}

func (f *fixture) balance() decimal.Decimal { return f.repo.st.wallets[f.walletID].Balance }
func (f *fixture) saved() decimal.Decimal   { return f.repo.st.goals[f.goalID].SavedAmount }
func (f *fixture) budget() decimal.Decimal  { return f.repo.st.budgets[f.budgetID].Amount }

func (f *fixture) expense(amount string) transaction.CreateParams {
	return transaction.CreateParams{
		WalletID:   &f.walletID,
		CategoryID: &f.categoryID,
		Amount:     dec(amount),
		Type:       ledger.Expense,
	}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name        string
		balance     string
		policy      ledger.BudgetPolicy
		params      func(f *fixture) transaction.CreateParams
		wantKind    *apperr.Kind
		wantConfirm bool
		wantOverrun bool
		wantBalance string
		wantSaved   string
		wantBudget  string
	}

	tests := []testCase{
		{
			name:        "ExpenseOnEmptyWallet",
			balance:     "0",
			params:      func(f *fixture) transaction.CreateParams { return f.expense("100000") },
			wantKind:    new(apperr.KindInsufficientFunds),
			wantBalance: "0",
			wantBudget:  "500000",
		},
		{
			name:        "ExpenseWithinBalance",
			balance:     "200000",
			params:      func(f *fixture) transaction.CreateParams { return f.expense("100000") },
			wantBalance: "100000",
			wantBudget:  "400000",
		},
		{
			name:    "IncomeLeavesBudget",
			balance: "0",
			params: func(f *fixture) transaction.CreateParams {
				p := f.expense("50000")
				p.Type = ledger.Income

				return p
			},
			wantBalance: "50000",
			wantBudget:  "500000",
		},
		{
			name:        "SoftBudgetOverrunCommits",
			balance:     "900000",
			policy:      ledger.BudgetSoft,
			params:      func(f *fixture) transaction.CreateParams { return f.expense("600000") },
			wantOverrun: true,
			wantBalance: "300000",
			wantBudget:  "-100000",
		},
		{
			name:        "HardBudgetOverrunRejected",
			balance:     "900000",
			policy:      ledger.BudgetHard,
			params:      func(f *fixture) transaction.CreateParams { return f.expense("600000") },
			wantKind:    new(apperr.KindInsufficientFunds),
			wantBalance: "900000",
			wantBudget:  "500000",
		},
		{
			name:    "BothSources",
			balance: "200000",
			params: func(f *fixture) transaction.CreateParams {
				p := f.expense("1")
				p.GoalID = &f.goalID

				return p
			},
			wantKind:    new(apperr.KindValidation),
			wantBalance: "200000",
			wantBudget:  "500000",
		},
		{
			name:    "NoSource",
			balance: "200000",
			params: func(f *fixture) transaction.CreateParams {
				p := f.expense("1")
				p.WalletID = nil

				return p
			},
			wantKind:    new(apperr.KindValidation),
			wantBalance: "200000",
			wantBudget:  "500000",
		},
		{
			name:    "WalletWithoutCategory",
			balance: "200000",
			params: func(f *fixture) transaction.CreateParams {
				p := f.expense("1")
				p.CategoryID = nil

				return p
			},
			wantKind:    new(apperr.KindValidation),
			wantBalance: "200000",
			wantBudget:  "500000",
		},
		{
			name:    "FractionalAmountInVND",
			balance: "200000",
			params: func(f *fixture) transaction.CreateParams {
				return f.expense("10.50")
			},
			wantKind:    new(apperr.KindValidation),
			wantBalance: "200000",
			wantBudget:  "500000",
		},
		{
			name:    "GoalIncomeSubCent",
			balance: "0",
			params: func(f *fixture) transaction.CreateParams {
				return transaction.CreateParams{GoalID: &f.goalID, Amount: dec("0.004"), Type: ledger.Income, Confirm: true}
			},
			wantKind:    new(apperr.KindValidation),
			wantBalance: "0",
			wantSaved:   "300000",
			wantBudget:  "500000",
		},
		{
			name:    "GoalIncomeThreeDecimals",
			balance: "0",
			params: func(f *fixture) transaction.CreateParams {
				return transaction.CreateParams{GoalID: &f.goalID, Amount: dec("1.004"), Type: ledger.Income, Confirm: true}
			},
			wantKind:    new(apperr.KindValidation),
			wantBalance: "0",
			wantSaved:   "300000",
			wantBudget:  "500000",
		},
		{
			name:    "GoalIncomeOverflow",
			balance: "0",
			params: func(f *fixture) transaction.CreateParams {
				return transaction.CreateParams{GoalID: &f.goalID, Amount: dec("10000000000000"), Type: ledger.Income, Confirm: true}
			},
			wantKind:    new(apperr.KindValidation),
			wantBalance: "0",
			wantSaved:   "300000",
			wantBudget:  "500000",
		},
		{
			name:    "UnknownCategory",
			balance: "200000",
			params: func(f *fixture) transaction.CreateParams {
				p := f.expense("1")
				p.CategoryID = new(uuid.New())

				return p
			},
			wantKind:    new(apperr.KindNotFound),
			wantBalance: "200000",
			wantBudget:  "500000",
		},
		{
			name:    "GoalNeedsConfirmation",
			balance: "0",
			params: func(f *fixture) transaction.CreateParams {
				return transaction.CreateParams{GoalID: &f.goalID, Amount: dec("100000"), Type: ledger.Income}
			},
			wantConfirm: true,
			wantBalance: "0",
			wantSaved:   "300000",
			wantBudget:  "500000",
		},
		{
			name:    "ConfirmedGoalIncome",
			balance: "0",
			params: func(f *fixture) transaction.CreateParams {
				return transaction.CreateParams{GoalID: &f.goalID, Amount: dec("100000"), Type: ledger.Income, Confirm: true}
			},
			wantBalance: "0",
			wantSaved:   "400000",
			wantBudget:  "500000",
		},
		{
			name:    "ConfirmedGoalOverdraw",
			balance: "0",
			params: func(f *fixture) transaction.CreateParams {
				return transaction.CreateParams{GoalID: &f.goalID, Amount: dec("300000.01"), Type: ledger.Expense, Confirm: true}
			},
			wantKind:    new(apperr.KindInsufficientFunds),
			wantBalance: "0",
			wantSaved:   "300000",
			wantBudget:  "500000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := tt.policy
			if policy == "" {
				policy = ledger.BudgetSoft
			}

			f := newFixture(t, tt.balance, policy)

			res, err := f.svc.Create(context.Background(), f.userID, tt.params(f))

			if tt.wantKind != nil {
				require.Error(t, err)
				assert.Equal(t, *tt.wantKind, apperr.KindOf(err))
				assert.Empty(t, f.repo.st.transactions)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantConfirm, res.RequiresConfirmation)
				assert.Equal(t, tt.wantOverrun, res.BudgetOverrun)

				if tt.wantConfirm {
					assert.Nil(t, res.Transaction)
					assert.Empty(t, f.repo.st.transactions)
				} else {
					require.NotNil(t, res.Transaction)
					assert.Contains(t, f.repo.st.transactions, res.Transaction.ID)
				}
			}

			assert.Equal(t, tt.wantBalance, f.balance().String())
			assert.Equal(t, tt.wantBudget, f.budget().String())

			if tt.wantSaved != "" {
				assert.Equal(t, tt.wantSaved, f.saved().String())
			}
		})
	}
}

func TestService_Create_MissingBudget(t *testing.T) {
	f := newFixture(t, "200000", ledger.BudgetSoft)
	delete(f.repo.st.budgets, f.budgetID)

	_, err := f.svc.Create(context.Background(), f.userID, f.expense("100000"))

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Budget not found", e.Message)
	assert.Equal(t, "200000", f.balance().String())
}

func TestService_Create_StoreFailureRollsBack(t *testing.T) {
	f := newFixture(t, "200000", ledger.BudgetSoft)
	f.repo.failCreate = true

	_, err := f.svc.Create(context.Background(), f.userID, f.expense("100000"))
	assert.Equal(t, apperr.KindStore, apperr.KindOf(err))
	assert.Equal(t, "200000", f.balance().String())
	assert.Equal(t, "500000", f.budget().String())
	assert.Zero(t, f.repo.commits)
}

func TestService_SoftDeleteRestoreDelete(t *testing.T) {
	f := newFixture(t, "200000", ledger.BudgetSoft)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.userID, f.expense("100000"))
	require.NoError(t, err)

	id := res.Transaction.ID

	require.NoError(t, f.svc.SoftDelete(ctx, id, f.userID))
	assert.Equal(t, "200000", f.balance().String())
	assert.Equal(t, "500000", f.budget().String())

	err = f.svc.SoftDelete(ctx, id, f.userID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Restore(ctx, id, f.userID)
	require.NoError(t, err)
	assert.Equal(t, "100000", f.balance().String())
	assert.Equal(t, "400000", f.budget().String())

	_, err = f.svc.Restore(ctx, id, f.userID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, f.svc.Delete(ctx, id, f.userID))
	assert.Equal(t, "200000", f.balance().String())
	assert.Equal(t, "500000", f.budget().String())
	assert.Empty(t, f.repo.st.transactions)
}

func TestService_Delete_AlreadySoftDeletedIsNotReversedTwice(t *testing.T) {
	f := newFixture(t, "200000", ledger.BudgetSoft)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.userID, f.expense("100000"))
	require.NoError(t, err)

	require.NoError(t, f.svc.SoftDelete(ctx, res.Transaction.ID, f.userID))
	require.NoError(t, f.svc.Delete(ctx, res.Transaction.ID, f.userID))
	assert.Equal(t, "200000", f.balance().String())
	assert.Equal(t, "500000", f.budget().String())
}

func TestService_Restore_InsufficientFunds(t *testing.T) {
	f := newFixture(t, "200000", ledger.BudgetSoft)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.userID, f.expense("150000"))
	require.NoError(t, err)
	require.NoError(t, f.svc.SoftDelete(ctx, first.Transaction.ID, f.userID))

	_, err = f.svc.Create(ctx, f.userID, f.expense("100000"))
	require.NoError(t, err)

	_, err = f.svc.Restore(ctx, first.Transaction.ID, f.userID)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientFunds))
	assert.Equal(t, "100000", f.balance().String())
	assert.True(t, f.repo.st.transactions[first.Transaction.ID].IsDeleted)
}

func TestService_WalletSoftDeleteKeepsBalance(t *testing.T) {
	f := newFixture(t, "200000", ledger.BudgetSoft)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.userID, f.expense("100000"))
	require.NoError(t, err)

	w := f.repo.st.wallets[f.walletID]
	require.NoError(t, w.SoftDelete(time.Now()))
	f.repo.st.wallets[f.walletID] = w

	assert.Equal(t, "100000", f.balance().String())

	// Reversal still reaches the soft-deleted wallet.
	require.NoError(t, f.svc.SoftDelete(ctx, res.Transaction.ID, f.userID))
	assert.Equal(t, "200000", f.balance().String())

	// Re-applying needs an active wallet.
	_, err = f.svc.Restore(ctx, res.Transaction.ID, f.userID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("AmountChangeIsNetted", func(t *testing.T) {
		f := newFixture(t, "200000", ledger.BudgetSoft)

		res, err := f.svc.Create(ctx, f.userID, f.expense("100000"))
		require.NoError(t, err)

		// 200000 would fail against the post-apply balance of 100000 but the
		// current effect is reversed first.
		_, err = f.svc.Update(ctx, res.Transaction.ID, f.userID, transaction.UpdateParams{Amount: new(dec("200000"))})
		require.NoError(t, err)
		assert.Equal(t, "0", f.balance().String())
		assert.Equal(t, "300000", f.budget().String())
	})

	t.Run("UnchangedIsNoop", func(t *testing.T) {
		f := newFixture(t, "200000", ledger.BudgetSoft)

		res, err := f.svc.Create(ctx, f.userID, f.expense("100000"))
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, res.Transaction.ID, f.userID, transaction.UpdateParams{Note: new("lunch")})
		require.NoError(t, err)
		assert.Equal(t, "100000", f.balance().String())
		assert.Equal(t, "400000", f.budget().String())
		assert.Equal(t, "lunch", f.repo.st.transactions[res.Transaction.ID].Note)
	})

	t.Run("FailureLeavesOriginalState", func(t *testing.T) {
		f := newFixture(t, "200000", ledger.BudgetSoft)

		res, err := f.svc.Create(ctx, f.userID, f.expense("100000"))
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, res.Transaction.ID, f.userID, transaction.UpdateParams{Amount: new(dec("200001"))})
		assert.True(t, apperr.Is(err, apperr.KindInsufficientFunds))
		assert.Equal(t, "100000", f.balance().String())
		assert.Equal(t, "400000", f.budget().String())
		assert.True(t, f.repo.st.transactions[res.Transaction.ID].Amount.Equal(dec("100000")))
	})

	t.Run("MoveToGoalNeedsConfirmation", func(t *testing.T) {
		f := newFixture(t, "200000", ledger.BudgetSoft)

		res, err := f.svc.Create(ctx, f.userID, f.expense("100000"))
		require.NoError(t, err)

		patch := transaction.UpdateParams{GoalID: &f.goalID}

		out, err := f.svc.Update(ctx, res.Transaction.ID, f.userID, patch)
		require.NoError(t, err)
		assert.True(t, out.RequiresConfirmation)
		assert.Equal(t, "100000", f.balance().String())

		patch.Confirm = true

		out, err = f.svc.Update(ctx, res.Transaction.ID, f.userID, patch)
		require.NoError(t, err)
		assert.False(t, out.RequiresConfirmation)
		assert.Equal(t, "200000", f.balance().String())
		assert.Equal(t, "200000", f.saved().String())
		assert.Equal(t, "400000", f.budget().String())
	})

	t.Run("TypeFlip", func(t *testing.T) {
		f := newFixture(t, "200000", ledger.BudgetSoft)

		res, err := f.svc.Create(ctx, f.userID, f.expense("100000"))
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, res.Transaction.ID, f.userID, transaction.UpdateParams{Type: new(ledger.Income)})
		require.NoError(t, err)
		assert.Equal(t, "300000", f.balance().String())
		assert.Equal(t, "500000", f.budget().String())
	})

	t.Run("OtherUsersTransaction", func(t *testing.T) {
		f := newFixture(t, "200000", ledger.BudgetSoft)

		res, err := f.svc.Create(ctx, f.userID, f.expense("100000"))
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, res.Transaction.ID, uuid.New(), transaction.UpdateParams{Note: new("x")})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestService_Create_InvalidatesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, "200000", ledger.BudgetSoft)
	c := cache.NewMockCache(ctrl)
	c.EXPECT().Delete(gomock.Any(), cache.Key(cache.EntityWalletBalance, f.walletID)).Return(nil)

	svc := transaction.NewService(f.repo, ledger.NewEngine(ledger.BudgetSoft, quiet), c, quiet)

	_, err := svc.Create(context.Background(), f.userID, f.expense("100000"))
	require.NoError(t, err)
}

func TestService_Create_LocksSourceAndCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	walletID := uuid.New()
	categoryID := uuid.New()

	repo := transaction.NewMockRepository(ctrl)
	tx := transaction.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Lock(gomock.Any(), walletID, categoryID).Return(nil)
	tx.EXPECT().GetWallet(gomock.Any(), walletID, userID, lifecycle.Any).Return(nil, apperr.NotFound("Wallet"))
	tx.EXPECT().Rollback().Return(nil)

	svc := transaction.NewService(repo, ledger.NewEngine(ledger.BudgetSoft, quiet), cache.Noop{}, quiet)

	_, err := svc.Create(context.Background(), userID, transaction.CreateParams{
		WalletID:   &walletID,
		CategoryID: &categoryID,
		Amount:     dec("1"),
		Type:       ledger.Expense,
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_Statement(t *testing.T) {
	f := newFixture(t, "1000000", ledger.BudgetSoft)
	ctx := context.Background()

	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, day := range []int{1, 15, 31} {
		p := f.expense("10000")
		p.Date = new(march.AddDate(0, 0, day-1))
		p.Note = []string{"a", "b", "c"}[i]

		_, err := f.svc.Create(ctx, f.userID, p)
		require.NoError(t, err)
	}

	ts, err := f.svc.Statement(ctx, f.userID, f.walletID, march, march.AddDate(0, 0, 15))
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, "a", ts[0].Note)
	assert.Equal(t, "b", ts[1].Note)

	_, err = f.svc.Statement(ctx, f.userID, f.walletID, march, march)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Statement(ctx, uuid.New(), f.walletID, march, march.AddDate(0, 1, 0))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

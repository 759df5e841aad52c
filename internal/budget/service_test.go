package budget_test

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
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestService_Create(t *testing.T) {
	userID := uuid.New()
	categoryID := uuid.New()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	today := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name      string
		params    budget.CreateParams
		setupMock func(m *budget.MockRepository)
		wantKind  *apperr.Kind
		verify    func(t *testing.T, b *budget.Budget)
	}

	tests := []testCase{
		{
			name:   "DefaultPeriod",
			params: budget.CreateParams{CategoryID: categoryID, Amount: decimal.NewFromInt(500000)},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().CategoryActive(gomock.Any(), categoryID, userID).Return(nil)
				m.EXPECT().FindCollision(gomock.Any(), userID, categoryID, uuid.Nil).Return(lifecycle.Collision{}, nil)
				m.EXPECT().CreateBudget(gomock.Any(), gomock.Any()).Return(nil)
			},
			verify: func(t *testing.T, b *budget.Budget) {
				assert.True(t, b.StartDate.Equal(today))
				assert.True(t, b.EndDate.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
			},
		},
		{
			name: "EndNotAfterStart",
			params: budget.CreateParams{
				CategoryID: categoryID,
				Amount:     decimal.NewFromInt(1),
				StartDate:  new(today),
				EndDate:    new(today),
			},
			wantKind: new(apperr.KindValidation),
		},
		{
			name:     "AmountThreeDecimals",
			params:   budget.CreateParams{CategoryID: categoryID, Amount: decimal.RequireFromString("10.005")},
			wantKind: new(apperr.KindValidation),
		},
		{
			name:     "AmountOverflow",
			params:   budget.CreateParams{CategoryID: categoryID, Amount: decimal.New(1, 13)},
			wantKind: new(apperr.KindValidation),
		},
		{
			name:     "MissingCategory",
			params:   budget.CreateParams{Amount: decimal.NewFromInt(1)},
			wantKind: new(apperr.KindValidation),
		},
		{
			name:   "UnknownCategory",
			params: budget.CreateParams{CategoryID: categoryID, Amount: decimal.NewFromInt(1)},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().CategoryActive(gomock.Any(), categoryID, userID).Return(apperr.NotFound("Category"))
			},
			wantKind: new(apperr.KindNotFound),
		},
		{
			name:   "SecondActiveBudgetForCategory",
			params: budget.CreateParams{CategoryID: categoryID, Amount: decimal.NewFromInt(1), Force: true},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().CategoryActive(gomock.Any(), categoryID, userID).Return(nil)
				m.EXPECT().FindCollision(gomock.Any(), userID, categoryID, uuid.Nil).
					Return(lifecycle.Collision{ActiveID: uuid.New()}, nil)
			},
			wantKind: new(apperr.KindConflict),
		},
		{
			name:   "DeletedBudgetSuggestsRestore",
			params: budget.CreateParams{CategoryID: categoryID, Amount: decimal.NewFromInt(1)},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().CategoryActive(gomock.Any(), categoryID, userID).Return(nil)
				m.EXPECT().FindCollision(gomock.Any(), userID, categoryID, uuid.Nil).
					Return(lifecycle.Collision{DeletedID: uuid.New()}, nil)
			},
			wantKind: new(apperr.KindConflict),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := budget.NewService(repo, quiet)
			svc.SetClock(func() time.Time { return now })

			got, err := svc.Create(context.Background(), userID, tt.params)

			if tt.wantKind != nil {
				assert.Equal(t, *tt.wantKind, apperr.KindOf(err))
				return
			}

			require.NoError(t, err)

			if tt.verify != nil {
				tt.verify(t, got)
			}
		})
	}
}

func lockedRepo(m *budget.MockRepository, ids ...uuid.UUID) {
	m.EXPECT().Locked(gomock.Any(), ids, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ []uuid.UUID, fn func(budget.Repository) error) error {
			return fn(m)
		})
}

func TestService_Update(t *testing.T) {
	userID := uuid.New()
	budgetID := uuid.New()
	categoryID := uuid.New()
	otherCategoryID := uuid.New()

	current := func() *budget.Budget {
		return &budget.Budget{
			ID:         budgetID,
			UserID:     userID,
			CategoryID: categoryID,
			Amount:     decimal.NewFromInt(-5000),
			StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		}
	}

	end := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name      string
		params    budget.UpdateParams
		setupMock func(m *budget.MockRepository)
		wantKind  *apperr.Kind
		verify    func(t *testing.T, b *budget.Budget)
	}

	tests := []testCase{
		{
			name:   "DatesOnlyKeepsOverrunAmount",
			params: budget.UpdateParams{EndDate: &end},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().GetBudget(gomock.Any(), budgetID, userID, lifecycle.Active).Return(current(), nil).Times(2)
				lockedRepo(m, categoryID)
				m.EXPECT().UpdateBudget(gomock.Any(), gomock.Any(), false).Return(nil)
			},
			verify: func(t *testing.T, b *budget.Budget) {
				assert.True(t, b.EndDate.Equal(end))
				assert.True(t, b.Amount.Equal(decimal.NewFromInt(-5000)))
			},
		},
		{
			name:   "AmountIsWritten",
			params: budget.UpdateParams{Amount: new(decimal.NewFromInt(20000))},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().GetBudget(gomock.Any(), budgetID, userID, lifecycle.Active).Return(current(), nil).Times(2)
				lockedRepo(m, categoryID)
				m.EXPECT().UpdateBudget(gomock.Any(), gomock.Any(), true).Return(nil)
			},
			verify: func(t *testing.T, b *budget.Budget) {
				assert.True(t, b.Amount.Equal(decimal.NewFromInt(20000)))
			},
		},
		{
			name:   "CategoryChangeLocksBoth",
			params: budget.UpdateParams{CategoryID: &otherCategoryID},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().GetBudget(gomock.Any(), budgetID, userID, lifecycle.Active).Return(current(), nil).Times(2)
				lockedRepo(m, categoryID, otherCategoryID)
				m.EXPECT().CategoryActive(gomock.Any(), otherCategoryID, userID).Return(nil)
				m.EXPECT().FindCollision(gomock.Any(), userID, otherCategoryID, budgetID).Return(lifecycle.Collision{}, nil)
				m.EXPECT().UpdateBudget(gomock.Any(), gomock.Any(), false).Return(nil)
			},
			verify: func(t *testing.T, b *budget.Budget) {
				assert.Equal(t, otherCategoryID, b.CategoryID)
			},
		},
		{
			name:   "CategoryMovedMeanwhile",
			params: budget.UpdateParams{EndDate: &end},
			setupMock: func(m *budget.MockRepository) {
				moved := current()
				moved.CategoryID = otherCategoryID

				gomock.InOrder(
					m.EXPECT().GetBudget(gomock.Any(), budgetID, userID, lifecycle.Active).Return(current(), nil),
					m.EXPECT().GetBudget(gomock.Any(), budgetID, userID, lifecycle.Active).Return(moved, nil),
				)
				lockedRepo(m, categoryID)
			},
			wantKind: new(apperr.KindConflict),
		},
		{
			name:   "AmountThreeDecimals",
			params: budget.UpdateParams{Amount: new(decimal.RequireFromString("1.005"))},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().GetBudget(gomock.Any(), budgetID, userID, lifecycle.Active).Return(current(), nil).Times(2)
				lockedRepo(m, categoryID)
			},
			wantKind: new(apperr.KindValidation),
		},
		{
			name:   "NotFound",
			params: budget.UpdateParams{EndDate: &end},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().GetBudget(gomock.Any(), budgetID, userID, lifecycle.Active).Return(nil, apperr.NotFound("Budget"))
			},
			wantKind: new(apperr.KindNotFound),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := budget.NewService(repo, quiet).Update(context.Background(), budgetID, userID, tt.params)

			if tt.wantKind != nil {
				assert.Equal(t, *tt.wantKind, apperr.KindOf(err))
				return
			}

			require.NoError(t, err)
			tt.verify(t, got)
		})
	}
}

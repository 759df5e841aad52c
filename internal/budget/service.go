package budget

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
	"github.com/MrJamesThe3rd/pennywise/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*Budget, error)
	ListBudgets(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) ([]*Budget, int, error)
	// UpdateBudget writes amount only when withAmount is set.
	UpdateBudget(ctx context.Context, b *Budget, withAmount bool) error
	SetDeleted(ctx context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error
	DeleteBudget(ctx context.Context, id, userID uuid.UUID) error
	FindCollision(ctx context.Context, userID, categoryID, exclude uuid.UUID) (lifecycle.Collision, error)
	// CategoryActive returns NotFound unless the category exists, is active and belongs to userID.
	CategoryActive(ctx context.Context, categoryID, userID uuid.UUID) error
	// Locked runs fn with a repository bound to one store transaction holding
	// the advisory locks of ids. It commits when fn returns nil.
	Locked(ctx context.Context, ids []uuid.UUID, fn func(r Repository) error) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

type CreateParams struct {
	CategoryID uuid.UUID
	Amount     decimal.Decimal
	// StartDate defaults to today, EndDate to StartDate plus DefaultPeriod.
	StartDate *time.Time
	EndDate   *time.Time
	Force     bool
}

type UpdateParams struct {
	CategoryID *uuid.UUID
	Amount     *decimal.Decimal
	StartDate  *time.Time
	EndDate    *time.Time
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Budget, error) {
	start := validate.Day(s.now())
	if params.StartDate != nil {
		start = validate.Day(*params.StartDate)
	}

	end := start.Add(DefaultPeriod)
	if params.EndDate != nil {
		end = validate.Day(*params.EndDate)
	}

	err := validate.New().
		Check(params.CategoryID != uuid.Nil, "category_id is required").
		Positive("amount", params.Amount).
		Money("amount", params.Amount).
		After(end, start, "end_date must be after start_date").
		Err()
	if err != nil {
		return nil, err
	}

	if err := s.repo.CategoryActive(ctx, params.CategoryID, userID); err != nil {
		return nil, err
	}

	collision, err := s.repo.FindCollision(ctx, userID, params.CategoryID, uuid.Nil)
	if err != nil {
		return nil, err
	}

	decision := lifecycle.ResolveCreate(lifecycle.Suggest, collision, params.Force)
	if err := decision.ErrOn("Budget", "category", collision); err != nil {
		s.log.Warn("budget create rejected", "user_id", userID, "category_id", params.CategoryID, "decision", decision)
		return nil, err
	}

	b := &Budget{
		UserID:     userID,
		CategoryID: params.CategoryID,
		Amount:     params.Amount,
		StartDate:  start,
		EndDate:    end,
	}
	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info("budget created", "user_id", userID, "budget_id", b.ID, "category_id", b.CategoryID)

	return b, nil
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*Budget, error) {
	return s.repo.GetBudget(ctx, id, userID, lifecycle.Active)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Result[*Budget], error) {
	return s.list(ctx, userID, lifecycle.Active, page)
}

func (s *Service) ListDeleted(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Result[*Budget], error) {
	return s.list(ctx, userID, lifecycle.Deleted, page)
}

func (s *Service) list(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) (pagination.Result[*Budget], error) {
	bs, total, err := s.repo.ListBudgets(ctx, userID, filter, page)
	if err != nil {
		return pagination.Result[*Budget]{}, err
	}

	return pagination.NewResult(bs, page, total), nil
}

// Update patches the budget. Setting Amount overwrites the remaining allowance
// as-is; expenses already recorded are not replayed against it. The write runs
// under the category locks the ledger takes, so an expense recorded meanwhile
// is never lost.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, params UpdateParams) (*Budget, error) {
	cur, err := s.repo.GetBudget(ctx, id, userID, lifecycle.Active)
	if err != nil {
		return nil, err
	}

	ids := []uuid.UUID{cur.CategoryID}
	if params.CategoryID != nil {
		ids = append(ids, *params.CategoryID)
	}

	var b *Budget

	err = s.repo.Locked(ctx, ids, func(r Repository) error {
		b, err = r.GetBudget(ctx, id, userID, lifecycle.Active)
		if err != nil {
			return err
		}

		if b.CategoryID != cur.CategoryID {
			return apperr.Conflict("Budget was changed concurrently, please retry")
		}

		return s.patch(ctx, r, b, params)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("budget updated", "user_id", userID, "budget_id", id)

	return b, nil
}

func (s *Service) patch(ctx context.Context, r Repository, b *Budget, params UpdateParams) error {
	v := validate.New()

	if params.Amount != nil {
		v.Positive("amount", *params.Amount).Money("amount", *params.Amount)
		b.Amount = *params.Amount
	}

	if params.StartDate != nil {
		b.StartDate = validate.Day(*params.StartDate)
	}

	if params.EndDate != nil {
		b.EndDate = validate.Day(*params.EndDate)
	}

	v.After(b.EndDate, b.StartDate, "end_date must be after start_date")

	if err := v.Err(); err != nil {
		return err
	}

	if params.CategoryID != nil && *params.CategoryID != b.CategoryID {
		if err := r.CategoryActive(ctx, *params.CategoryID, b.UserID); err != nil {
			return err
		}

		collision, err := r.FindCollision(ctx, b.UserID, *params.CategoryID, b.ID)
		if err != nil {
			return err
		}

		if collision.ActiveID != uuid.Nil {
			return lifecycle.DecisionDuplicate.ErrOn("Budget", "category", collision)
		}

		b.CategoryID = *params.CategoryID
	}

	return r.UpdateBudget(ctx, b, params.Amount != nil)
}

func (s *Service) SoftDelete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.SetDeleted(ctx, id, userID, true, s.now()); err != nil {
		return err
	}

	s.log.Info("budget soft deleted", "user_id", userID, "budget_id", id)

	return nil
}

// Restore fails with a conflict when another budget for the same category has
// become active in the meantime.
func (s *Service) Restore(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.SetDeleted(ctx, id, userID, false, s.now()); err != nil {
		return err
	}

	s.log.Info("budget restored", "user_id", userID, "budget_id", id)

	return nil
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.DeleteBudget(ctx, id, userID); err != nil {
		return err
	}

	s.log.Info("budget deleted", "user_id", userID, "budget_id", id)

	return nil
}

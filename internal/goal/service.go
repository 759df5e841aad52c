package goal

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/cache"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
	"github.com/MrJamesThe3rd/pennywise/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=goal
type Repository interface {
	CreateGoal(ctx context.Context, g *Goal) error
	GetGoal(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*Goal, error)
	ListGoals(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) ([]*Goal, int, error)
	UpdateGoal(ctx context.Context, g *Goal) error
	SetDeleted(ctx context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error
	// DeleteGoal fails with a conflict while active transactions reference the goal.
	DeleteGoal(ctx context.Context, id, userID uuid.UUID) error
	FindCollision(ctx context.Context, userID uuid.UUID, name string, exclude uuid.UUID) (lifecycle.Collision, error)
}

type Service struct {
	repo  Repository
	cache cache.Cache
	log   *slog.Logger
	now   func() time.Time
}

func NewService(repo Repository, c cache.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, log: log, now: time.Now}
}

type CreateParams struct {
	Name         string
	TargetAmount decimal.Decimal
	SavedAmount  decimal.Decimal
	// Deadline defaults to today when nil.
	Deadline *time.Time
	Force    bool
}

type UpdateParams struct {
	Name         *string
	TargetAmount *decimal.Decimal
	Deadline     *time.Time
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Goal, error) {
	today := validate.Day(s.now())

	deadline := today
	if params.Deadline != nil {
		deadline = validate.Day(*params.Deadline)
	}

	err := validate.New().
		Required("name", params.Name).
		MaxLen("name", params.Name, 100).
		Positive("target_amount", params.TargetAmount).
		Money("target_amount", params.TargetAmount).
		NonNegative("saved_amount", params.SavedAmount).
		Money("saved_amount", params.SavedAmount).
		NotBefore(deadline, today, "deadline must not be in the past").
		Err()
	if err != nil {
		return nil, err
	}

	collision, err := s.repo.FindCollision(ctx, userID, params.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	decision := lifecycle.ResolveCreate(lifecycle.Suggest, collision, params.Force)
	if err := decision.Err("Goal", collision); err != nil {
		s.log.Warn("goal create rejected", "user_id", userID, "name", params.Name, "decision", decision)
		return nil, err
	}

	g := &Goal{
		UserID:       userID,
		Name:         params.Name,
		TargetAmount: params.TargetAmount,
		SavedAmount:  params.SavedAmount,
		Deadline:     deadline,
	}
	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return nil, err
	}

	s.log.Info("goal created", "user_id", userID, "goal_id", g.ID)

	return g, nil
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*Goal, error) {
	return s.repo.GetGoal(ctx, id, userID, lifecycle.Active)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Result[*Goal], error) {
	return s.list(ctx, userID, lifecycle.Active, page)
}

func (s *Service) ListDeleted(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Result[*Goal], error) {
	return s.list(ctx, userID, lifecycle.Deleted, page)
}

func (s *Service) list(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) (pagination.Result[*Goal], error) {
	gs, total, err := s.repo.ListGoals(ctx, userID, filter, page)
	if err != nil {
		return pagination.Result[*Goal]{}, err
	}

	return pagination.NewResult(gs, page, total), nil
}

func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, params UpdateParams) (*Goal, error) {
	g, err := s.repo.GetGoal(ctx, id, userID, lifecycle.Active)
	if err != nil {
		return nil, err
	}

	v := validate.New()

	if params.Name != nil {
		v.Required("name", *params.Name).MaxLen("name", *params.Name, 100)
	}

	if params.TargetAmount != nil {
		v.Positive("target_amount", *params.TargetAmount).Money("target_amount", *params.TargetAmount)
		g.TargetAmount = *params.TargetAmount
	}

	if params.Deadline != nil {
		v.NotBefore(*params.Deadline, s.now(), "deadline must not be in the past")
		g.Deadline = validate.Day(*params.Deadline)
	}

	if err := v.Err(); err != nil {
		return nil, err
	}

	if params.Name != nil && *params.Name != g.Name {
		collision, err := s.repo.FindCollision(ctx, userID, *params.Name, g.ID)
		if err != nil {
			return nil, err
		}

		if collision.ActiveID != uuid.Nil {
			return nil, lifecycle.DecisionDuplicate.Err("Goal", collision)
		}

		g.Name = *params.Name
	}

	if err := s.repo.UpdateGoal(ctx, g); err != nil {
		return nil, err
	}

	s.invalidate(ctx, g.ID)

	return g, nil
}

// SoftDelete hides the goal without touching the transactions funded by it.
func (s *Service) SoftDelete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.SetDeleted(ctx, id, userID, true, s.now()); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.log.Info("goal soft deleted", "user_id", userID, "goal_id", id)

	return nil
}

func (s *Service) Restore(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.SetDeleted(ctx, id, userID, false, s.now()); err != nil {
		return err
	}

	s.log.Info("goal restored", "user_id", userID, "goal_id", id)

	return nil
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.DeleteGoal(ctx, id, userID); err != nil {
		s.log.Warn("goal delete rejected", "user_id", userID, "goal_id", id, "error", err)
		return err
	}

	s.invalidate(ctx, id)
	s.log.Info("goal deleted", "user_id", userID, "goal_id", id)

	return nil
}

// Status serves the goal's progress through the cache. Cached entries are only
// trusted for the day they were computed on.
func (s *Service) Status(ctx context.Context, id, userID uuid.UUID) (*Status, error) {
	today := validate.Day(s.now())
	key := cache.Key(cache.EntityGoalStatus, id)

	var cached struct {
		Day    time.Time `json:"day"`
		Status Status    `json:"status"`
	}

	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read goal status cache", "goal_id", id, "error", err)
	}

	if hit && cached.Status.UserID == userID && cached.Day.Equal(today) {
		return &cached.Status, nil
	}

	g, err := s.repo.GetGoal(ctx, id, userID, lifecycle.Active)
	if err != nil {
		return nil, err
	}

	st, err := Progress(g.TargetAmount, g.SavedAmount, g.Deadline, today)
	if err != nil {
		return nil, err
	}

	st.GoalID = g.ID
	st.UserID = g.UserID
	st.Name = g.Name

	cached.Day = today
	cached.Status = st

	if err := s.cache.Set(ctx, key, cached); err != nil {
		s.log.Warn("failed to write goal status cache", "goal_id", id, "error", err)
	}

	return &st, nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.Key(cache.EntityGoalStatus, id)); err != nil {
		s.log.Warn("failed to invalidate goal status cache", "goal_id", id, "error", err)
	}
}

package category

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
	"github.com/MrJamesThe3rd/pennywise/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) ([]*Category, int, error)
	UpdateCategory(ctx context.Context, c *Category) error
	SetDeleted(ctx context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error
	DeleteCategory(ctx context.Context, id, userID uuid.UUID) error
	FindCollision(ctx context.Context, userID uuid.UUID, name string, exclude uuid.UUID) (lifecycle.Collision, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Create adds a category. A soft-deleted category with the same name is
// restored instead, in which case restored is true and the original id is kept.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string) (c *Category, restored bool, err error) {
	err = validate.New().
		Required("name", name).
		MaxLen("name", name, 100).
		Err()
	if err != nil {
		return nil, false, err
	}

	collision, err := s.repo.FindCollision(ctx, userID, name, uuid.Nil)
	if err != nil {
		return nil, false, err
	}

	decision := lifecycle.ResolveCreate(lifecycle.AutoRestore, collision, false)

	switch decision {
	case lifecycle.DecisionRestore:
		if err := s.repo.SetDeleted(ctx, collision.DeletedID, userID, false, s.now()); err != nil {
			return nil, false, err
		}

		c, err := s.repo.GetCategory(ctx, collision.DeletedID, userID, lifecycle.Active)
		if err != nil {
			return nil, false, err
		}

		s.log.Info("category restored on create", "user_id", userID, "category_id", c.ID)

		return c, true, nil
	case lifecycle.DecisionCreate:
	default:
		return nil, false, decision.Err("Category", collision)
	}

	c = &Category{UserID: userID, Name: name}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, false, err
	}

	s.log.Info("category created", "user_id", userID, "category_id", c.ID)

	return c, false, nil
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id, userID, lifecycle.Active)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Result[*Category], error) {
	return s.list(ctx, userID, lifecycle.Active, page)
}

func (s *Service) ListDeleted(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Result[*Category], error) {
	return s.list(ctx, userID, lifecycle.Deleted, page)
}

func (s *Service) list(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) (pagination.Result[*Category], error) {
	cs, total, err := s.repo.ListCategories(ctx, userID, filter, page)
	if err != nil {
		return pagination.Result[*Category]{}, err
	}

	return pagination.NewResult(cs, page, total), nil
}

func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, name string) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id, userID, lifecycle.Active)
	if err != nil {
		return nil, err
	}

	if err := validate.New().Required("name", name).MaxLen("name", name, 100).Err(); err != nil {
		return nil, err
	}

	if name == c.Name {
		return c, nil
	}

	collision, err := s.repo.FindCollision(ctx, userID, name, c.ID)
	if err != nil {
		return nil, err
	}

	if collision.ActiveID != uuid.Nil {
		return nil, lifecycle.DecisionDuplicate.Err("Category", collision)
	}

	c.Name = name
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) SoftDelete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.SetDeleted(ctx, id, userID, true, s.now()); err != nil {
		return err
	}

	s.log.Info("category soft deleted", "user_id", userID, "category_id", id)

	return nil
}

func (s *Service) Restore(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.SetDeleted(ctx, id, userID, false, s.now()); err != nil {
		return err
	}

	s.log.Info("category restored", "user_id", userID, "category_id", id)

	return nil
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id, userID); err != nil {
		s.log.Warn("category delete rejected", "user_id", userID, "category_id", id, "error", err)
		return err
	}

	s.log.Info("category deleted", "user_id", userID, "category_id", id)

	return nil
}

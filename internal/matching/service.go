package matching

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the category of the longest pattern contained in note,
	// or nil when no rule applies. Rules pointing at deleted categories are ignored.
	FindMatch(ctx context.Context, userID uuid.UUID, note string) (*uuid.UUID, error)
	CreateRule(ctx context.Context, r *Rule) error
	ListRules(ctx context.Context, userID uuid.UUID) ([]*Rule, error)
	DeleteRule(ctx context.Context, id, userID uuid.UUID) error
	CategoryActive(ctx context.Context, categoryID, userID uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest finds the category a note should be filed under. It returns nil
// when nothing matches.
func (s *Service) Suggest(ctx context.Context, userID uuid.UUID, note string) (*uuid.UUID, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, nil
	}

	return s.repo.FindMatch(ctx, userID, note)
}

// Learn remembers that notes containing pattern belong to categoryID.
func (s *Service) Learn(ctx context.Context, userID uuid.UUID, pattern string, categoryID uuid.UUID) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)

	err := validate.New().
		Required("pattern", pattern).
		MaxLen("pattern", pattern, 255).
		Check(categoryID != uuid.Nil, "category_id is required").
		Err()
	if err != nil {
		return nil, err
	}

	if err := s.repo.CategoryActive(ctx, categoryID, userID); err != nil {
		return nil, err
	}

	r := &Rule{UserID: userID, Pattern: pattern, CategoryID: categoryID}
	if err := s.repo.CreateRule(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Rule, error) {
	return s.repo.ListRules(ctx, userID)
}

func (s *Service) Forget(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.DeleteRule(ctx, id, userID)
}

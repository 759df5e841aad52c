package wallet

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

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=wallet
type Repository interface {
	CreateWallet(ctx context.Context, w *Wallet) error
	GetWallet(ctx context.Context, id, userID uuid.UUID, filter lifecycle.Filter) (*Wallet, error)
	ListWallets(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) ([]*Wallet, int, error)
	UpdateWallet(ctx context.Context, w *Wallet) error
	SetDeleted(ctx context.Context, id, userID uuid.UUID, deleted bool, now time.Time) error
	// DeleteWallet fails with a conflict while active transactions reference the wallet.
	DeleteWallet(ctx context.Context, id, userID uuid.UUID) error
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
	Name     string
	Balance  decimal.Decimal
	Currency string
	// Force creates a new wallet even when a deleted one carries the same name.
	Force bool
}

type UpdateParams struct {
	Name     *string
	Currency *string
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Wallet, error) {
	cur := CurrencyVND

	if params.Currency != "" {
		c, err := ParseCurrency(params.Currency)
		if err != nil {
			return nil, err
		}

		cur = c
	}

	err := validate.New().
		Required("name", params.Name).
		MaxLen("name", params.Name, 100).
		NonNegative("balance", params.Balance).
		Money("balance", params.Balance).
		Check(cur.Fits(params.Balance), "balance has too many decimal places for "+string(cur)).
		Err()
	if err != nil {
		return nil, err
	}

	collision, err := s.repo.FindCollision(ctx, userID, params.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	decision := lifecycle.ResolveCreate(lifecycle.Suggest, collision, params.Force)
	if err := decision.Err("Wallet", collision); err != nil {
		s.log.Warn("wallet create rejected", "user_id", userID, "name", params.Name, "decision", decision)
		return nil, err
	}

	w := &Wallet{
		UserID:   userID,
		Name:     params.Name,
		Balance:  params.Balance,
		Currency: cur,
	}
	if err := s.repo.CreateWallet(ctx, w); err != nil {
		return nil, err
	}

	s.log.Info("wallet created", "user_id", userID, "wallet_id", w.ID)

	return w, nil
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*Wallet, error) {
	return s.repo.GetWallet(ctx, id, userID, lifecycle.Active)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Result[*Wallet], error) {
	return s.list(ctx, userID, lifecycle.Active, page)
}

func (s *Service) ListDeleted(ctx context.Context, userID uuid.UUID, page pagination.Params) (pagination.Result[*Wallet], error) {
	return s.list(ctx, userID, lifecycle.Deleted, page)
}

func (s *Service) list(ctx context.Context, userID uuid.UUID, filter lifecycle.Filter, page pagination.Params) (pagination.Result[*Wallet], error) {
	ws, total, err := s.repo.ListWallets(ctx, userID, filter, page)
	if err != nil {
		return pagination.Result[*Wallet]{}, err
	}

	return pagination.NewResult(ws, page, total), nil
}

func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, params UpdateParams) (*Wallet, error) {
	w, err := s.repo.GetWallet(ctx, id, userID, lifecycle.Active)
	if err != nil {
		return nil, err
	}

	v := validate.New()

	if params.Name != nil {
		v.Required("name", *params.Name).MaxLen("name", *params.Name, 100)
	}

	if params.Currency != nil {
		c, err := ParseCurrency(*params.Currency)
		if err != nil {
			return nil, err
		}

		v.Check(c.Fits(w.Balance), "balance has too many decimal places for "+string(c))
		w.Currency = c
	}

	if err := v.Err(); err != nil {
		return nil, err
	}

	if params.Name != nil && *params.Name != w.Name {
		collision, err := s.repo.FindCollision(ctx, userID, *params.Name, w.ID)
		if err != nil {
			return nil, err
		}

		if collision.ActiveID != uuid.Nil {
			return nil, lifecycle.DecisionDuplicate.Err("Wallet", collision)
		}

		w.Name = *params.Name
	}

	if err := s.repo.UpdateWallet(ctx, w); err != nil {
		return nil, err
	}

	s.invalidate(ctx, w.ID)

	return w, nil
}

// SoftDelete hides the wallet. Its transactions keep their effect on the
// balance; only deleting a transaction reverses it.
func (s *Service) SoftDelete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.SetDeleted(ctx, id, userID, true, s.now()); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.log.Info("wallet soft deleted", "user_id", userID, "wallet_id", id)

	return nil
}

func (s *Service) Restore(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.SetDeleted(ctx, id, userID, false, s.now()); err != nil {
		return err
	}

	s.log.Info("wallet restored", "user_id", userID, "wallet_id", id)

	return nil
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.DeleteWallet(ctx, id, userID); err != nil {
		s.log.Warn("wallet delete rejected", "user_id", userID, "wallet_id", id, "error", err)
		return err
	}

	s.invalidate(ctx, id)
	s.log.Info("wallet deleted", "user_id", userID, "wallet_id", id)

	return nil
}

// Balance serves the wallet's balance through the cache. Entries are dropped
// whenever a transaction or lifecycle change touches the wallet.
func (s *Service) Balance(ctx context.Context, id, userID uuid.UUID) (*Balance, error) {
	key := cache.Key(cache.EntityWalletBalance, id)

	var cached Balance

	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read balance cache", "wallet_id", id, "error", err)
	}

	if hit && cached.UserID == userID {
		return &cached, nil
	}

	w, err := s.repo.GetWallet(ctx, id, userID, lifecycle.Active)
	if err != nil {
		return nil, err
	}

	b := &Balance{WalletID: w.ID, UserID: w.UserID, Balance: w.Balance, Currency: w.Currency}
	if err := s.cache.Set(ctx, key, b); err != nil {
		s.log.Warn("failed to write balance cache", "wallet_id", id, "error", err)
	}

	return b, nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.Key(cache.EntityWalletBalance, id)); err != nil {
		s.log.Warn("failed to invalidate balance cache", "wallet_id", id, "error", err)
	}
}

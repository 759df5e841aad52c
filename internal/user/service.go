package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
	"github.com/MrJamesThe3rd/pennywise/internal/validate"
)

var errBadCredentials = apperr.Auth("Invalid email or password")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	// GetUser returns active users only.
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	// GetUserByEmail returns the user in any state.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	SetActive(ctx context.Context, id uuid.UUID, active bool, now time.Time) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
}

type TokenIssuer interface {
	Issue(userID uuid.UUID) (auth.Token, error)
}

type Service struct {
	repo          Repository
	tokens        TokenIssuer
	restoreWindow time.Duration
	log           *slog.Logger
	now           func() time.Time
	cost          int
}

func NewService(repo Repository, tokens TokenIssuer, restoreWindow time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		tokens:        tokens,
		restoreWindow: restoreWindow,
		log:           log,
		now:           time.Now,
		cost:          bcrypt.DefaultCost,
	}
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
}

type UpdateParams struct {
	Username    *string
	Email       *string
	Password    *string
	OldPassword *string
}

type Session struct {
	Token auth.Token
	User  *User
	// Restored is set when the login brought a soft-deleted account back.
	Restored bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(h), nil
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	email := normalizeEmail(params.Email)

	err := validate.New().
		Required("username", params.Username).
		MaxLen("username", params.Username, 100).
		Required("email", email).
		Email("email", email).
		Password("password", params.Password).
		Err()
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailTaken(ctx, email, uuid.Nil)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, apperr.Conflict("Email already exists")
	}

	h, err := s.hash(params.Password)
	if err != nil {
		return nil, err
	}

	u := &User{Username: params.Username, Email: email, PasswordHash: h, Active: true}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", u.ID)

	return u, nil
}

// Login checks the credentials and issues a token. A soft-deleted account is
// restored when the restore window has not yet closed.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, errBadCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errBadCredentials
		}

		return nil, fmt.Errorf("comparing password: %w", err)
	}

	var restored bool

	if !u.Active {
		now := s.now()
		if u.DeletedAt == nil || !lifecycle.RestoreWindowOpen(*u.DeletedAt, now, s.restoreWindow) {
			s.log.Warn("login to closed account", "user_id", u.ID)
			return nil, apperr.Auth("Account has been deleted")
		}

		if err := s.repo.SetActive(ctx, u.ID, true, now); err != nil {
			return nil, err
		}

		u.Active = true
		u.DeletedAt = nil
		restored = true

		s.log.Info("user restored on login", "user_id", u.ID)
	}

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}

	return &Session{Token: tok, User: u, Restored: restored}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// CheckActive fails with an auth error once the account is soft deleted or
// removed. Tokens issued before the deletion stop working with it.
func (s *Service) CheckActive(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Auth("Account is deactivated")
		}

		return err
	}

	return nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	v := validate.New()

	if params.Username != nil {
		v.Required("username", *params.Username).MaxLen("username", *params.Username, 100)
		u.Username = *params.Username
	}

	var email string

	if params.Email != nil {
		email = normalizeEmail(*params.Email)
		v.Email("email", email)
	}

	if params.Password != nil {
		v.Password("password", *params.Password).
			Check(params.OldPassword != nil, "old_password is required to change the password")
	}

	if err := v.Err(); err != nil {
		return nil, err
	}

	if params.Email != nil && email != u.Email {
		taken, err := s.repo.EmailTaken(ctx, email, u.ID)
		if err != nil {
			return nil, err
		}

		if taken {
			return nil, apperr.Conflict("Email already exists")
		}

		u.Email = email
	}

	if params.Password != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(*params.OldPassword)); err != nil {
			return nil, apperr.Auth("Old password is incorrect")
		}

		h, err := s.hash(*params.Password)
		if err != nil {
			return nil, err
		}

		u.PasswordHash = h
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetActive(ctx, id, false, s.now()); err != nil {
		return err
	}

	s.log.Info("user soft deleted", "user_id", id)

	return nil
}

// Delete removes the account and, through the schema's cascades, everything it owns.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.log.Info("user deleted", "user_id", id)

	return nil
}

package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/user"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const window = 30 * 24 * time.Hour

func hashed(t *testing.T, password string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(h)
}

func newService(ctrl *gomock.Controller) (*user.Service, *user.MockRepository, *user.MockTokenIssuer) {
	repo := user.NewMockRepository(ctrl)
	tokens := user.NewMockTokenIssuer(ctrl)

	svc := user.NewService(repo, tokens, window, quiet)
	svc.UseMinCost()

	return svc, repo, tokens
}

func TestService_Register(t *testing.T) {
	type testCase struct {
		name      string
		params    user.RegisterParams
		setupMock func(m *user.MockRepository)
		wantKind  *apperr.Kind
	}

	valid := user.RegisterParams{Username: "ann", Email: " Ann@Example.com ", Password: "Secret#123"}

	tests := []testCase{
		{
			name:   "Success",
			params: valid,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().EmailTaken(gomock.Any(), "ann@example.com", uuid.Nil).Return(false, nil)
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *user.User) error {
						assert.NotEqual(t, "Secret#123", u.PasswordHash)
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Secret#123")))

						return nil
					})
			},
		},
		{
			name:     "WeakPassword",
			params:   user.RegisterParams{Username: "ann", Email: "ann@example.com", Password: "password"},
			wantKind: new(apperr.KindValidation),
		},
		{
			name:     "BadEmail",
			params:   user.RegisterParams{Username: "ann", Email: "ann.example.com", Password: "Secret#123"},
			wantKind: new(apperr.KindValidation),
		},
		{
			name:   "DuplicateEmail",
			params: valid,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().EmailTaken(gomock.Any(), "ann@example.com", uuid.Nil).Return(true, nil)
			},
			wantKind: new(apperr.KindConflict),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, repo, _ := newService(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			u, err := svc.Register(context.Background(), tt.params)

			if tt.wantKind != nil {
				assert.Equal(t, *tt.wantKind, apperr.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ann@example.com", u.Email)
			assert.True(t, u.Active)
		})
	}
}

func TestService_Login(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.New()
	hash := hashed(t, "Secret#123")

	type testCase struct {
		name         string
		user         *user.User
		password     string
		setupMock    func(m *user.MockRepository, tk *user.MockTokenIssuer)
		wantKind     *apperr.Kind
		wantRestored bool
	}

	tests := []testCase{
		{
			name:     "Active",
			user:     &user.User{ID: id, PasswordHash: hash, Active: true},
			password: "Secret#123",
			setupMock: func(_ *user.MockRepository, tk *user.MockTokenIssuer) {
				tk.EXPECT().Issue(id).Return(auth.Token{Value: "tok", ExpiresIn: time.Minute}, nil)
			},
		},
		{
			name:     "WrongPassword",
			user:     &user.User{ID: id, PasswordHash: hash, Active: true},
			password: "Secret#124",
			wantKind: new(apperr.KindAuth),
		},
		{
			name:     "RestoredWithinWindow",
			user:     &user.User{ID: id, PasswordHash: hash, DeletedAt: new(now.Add(-29 * 24 * time.Hour))},
			password: "Secret#123",
			setupMock: func(m *user.MockRepository, tk *user.MockTokenIssuer) {
				m.EXPECT().SetActive(gomock.Any(), id, true, now).Return(nil)
				tk.EXPECT().Issue(id).Return(auth.Token{Value: "tok"}, nil)
			},
			wantRestored: true,
		},
		{
			name:     "WindowClosed",
			user:     &user.User{ID: id, PasswordHash: hash, DeletedAt: new(now.Add(-31 * 24 * time.Hour))},
			password: "Secret#123",
			wantKind: new(apperr.KindAuth),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, repo, tokens := newService(ctrl)
			svc.SetClock(func() time.Time { return now })

			repo.EXPECT().GetUserByEmail(gomock.Any(), "ann@example.com").Return(tt.user, nil)

			if tt.setupMock != nil {
				tt.setupMock(repo, tokens)
			}

			sess, err := svc.Login(context.Background(), "ann@example.com", tt.password)

			if tt.wantKind != nil {
				assert.Equal(t, *tt.wantKind, apperr.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRestored, sess.Restored)
			assert.True(t, sess.User.Active)
		})
	}
}

func TestService_Login_UnknownEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newService(ctrl)
	repo.EXPECT().GetUserByEmail(gomock.Any(), "nobody@example.com").Return(nil, apperr.NotFound("User"))

	_, err := svc.Login(context.Background(), "nobody@example.com", "x")
	assert.EqualError(t, err, "Invalid email or password")
}

func TestService_CheckActive(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		getErr   error
		wantKind *apperr.Kind
	}{
		{name: "Active"},
		{name: "SoftDeleted", getErr: apperr.NotFound("User"), wantKind: new(apperr.KindAuth)},
		{name: "StoreDown", getErr: apperr.Store("getting user", assert.AnError), wantKind: new(apperr.KindStore)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, repo, _ := newService(ctrl)

			var u *user.User
			if tt.getErr == nil {
				u = &user.User{ID: id, Active: true}
			}

			repo.EXPECT().GetUser(gomock.Any(), id).Return(u, tt.getErr)

			err := svc.CheckActive(context.Background(), id)

			if tt.wantKind == nil {
				assert.NoError(t, err)
				return
			}

			assert.Equal(t, *tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestService_Update_PasswordNeedsOldPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	svc, repo, _ := newService(ctrl)

	repo.EXPECT().GetUser(gomock.Any(), id).
		Return(&user.User{ID: id, PasswordHash: hashed(t, "Secret#123"), Active: true}, nil).Times(2)

	_, err := svc.Update(context.Background(), id, user.UpdateParams{Password: new("Better#456")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Update(context.Background(), id, user.UpdateParams{Password: new("Better#456"), OldPassword: new("nope")})
	assert.True(t, apperr.Is(err, apperr.KindAuth))
}

package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/auth"
)

func TestGateway_RoundTrip(t *testing.T) {
	g := auth.NewGateway("secret", 30*time.Minute)
	userID := uuid.New()

	tok, err := g.Issue(userID)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, tok.ExpiresIn)

	got, err := g.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestGateway_Rejects(t *testing.T) {
	g := auth.NewGateway("secret", 30*time.Minute)
	userID := uuid.New()

	tok, err := g.Issue(userID)
	require.NoError(t, err)

	type testCase struct {
		name  string
		token string
		gw    func() *auth.Gateway
	}

	tests := []testCase{
		{
			name:  "Garbage",
			token: "not-a-token",
			gw:    func() *auth.Gateway { return g },
		},
		{
			name:  "WrongSecret",
			token: tok.Value,
			gw:    func() *auth.Gateway { return auth.NewGateway("other", time.Minute) },
		},
		{
			name:  "Expired",
			token: tok.Value,
			gw: func() *auth.Gateway {
				late := auth.NewGateway("secret", 30*time.Minute)
				late.SetClock(func() time.Time { return time.Now().Add(time.Hour) })

				return late
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.gw().Parse(tt.token)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindAuth))
		})
	}
}

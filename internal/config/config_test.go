package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/config"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Auth.TTL)
	assert.Equal(t, 720*time.Hour, cfg.Auth.RestoreWindow)
	assert.Equal(t, ledger.BudgetSoft, cfg.Ledger.BudgetPolicy)
	assert.Equal(t, 10, cfg.Ledger.PageSize)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Empty(t, cfg.Cache.RedisAddr)
	assert.Equal(t, "postgres://postgres:@localhost:5432/pennywise?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Invalid(t *testing.T) {
	type testCase struct {
		name string
		env  map[string]string
	}

	tests := []testCase{
		{name: "MissingSecret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "UnknownPolicy", env: map[string]string{"JWT_SECRET": "s", "BUDGET_POLICY": "strict"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

// Package cache provides the read-through cache in front of derived read
// models (wallet balances, goal status).
package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Entity string

const (
	EntityWalletBalance Entity = "wallet_balance"
	EntityGoalStatus    Entity = "goal_status"
)

// Key builds the cache key for one record's derived value.
func Key(entity Entity, id uuid.UUID) string {
	return fmt.Sprintf("pennywise:%s:%s", entity, id)
}

//go:generate mockgen -source=cache.go -destination=cache_mock.go -package=cache
type Cache interface {
	// Get decodes the cached value into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

// Noop is used when no cache backend is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, any) error         { return nil }
func (Noop) Delete(context.Context, ...string) error        { return nil }

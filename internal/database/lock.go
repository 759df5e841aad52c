package database

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/google/uuid"
)

// LockKey hashes an entity id into a Postgres advisory lock key.
func LockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(id[:])

	return int64(h.Sum64())
}

// Lock takes transaction-scoped advisory locks on every id, in a stable order
// so that two operations touching the same records cannot deadlock. Nil and
// repeated ids are skipped.
func Lock(ctx context.Context, q Querier, ids ...uuid.UUID) error {
	keys := slices.Clone(ids)
	slices.SortFunc(keys, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	keys = slices.Compact(keys)

	for _, id := range keys {
		if id == uuid.Nil {
			continue
		}

		if _, err := q.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", LockKey(id)); err != nil {
			return fmt.Errorf("acquiring lock: %w", err)
		}
	}

	return nil
}

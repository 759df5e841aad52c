package matching

import (
	"time"

	"github.com/google/uuid"
)

// Rule files any transaction whose note contains Pattern under CategoryID.
// Matching is case-insensitive.
type Rule struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Pattern    string
	CategoryID uuid.UUID
	CreatedAt  time.Time
}

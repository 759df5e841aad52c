package goal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
)

// Goal is a savings target. SavedAmount is maintained by the ledger and is
// never written directly after creation.
type Goal struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	TargetAmount decimal.Decimal
	SavedAmount  decimal.Decimal
	Deadline     time.Time
	lifecycle.State
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (g *Goal) OwnerID() uuid.UUID { return g.UserID }

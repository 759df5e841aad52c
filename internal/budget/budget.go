package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
)

// DefaultPeriod is the length of a budget created without an end date.
const DefaultPeriod = 30 * 24 * time.Hour

// Budget caps spending in one category. Amount is the remaining allowance and
// is decremented by expense transactions.
type Budget struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CategoryID uuid.UUID
	Amount     decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
	lifecycle.State
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (b *Budget) OwnerID() uuid.UUID { return b.UserID }

package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
)

type SourceKind string

const (
	SourceWallet SourceKind = "wallet"
	SourceGoal   SourceKind = "goal"
)

// Source is the wallet or goal a transaction draws from or adds to.
type Source struct {
	Kind SourceKind
	ID   uuid.UUID
}

// NewSource requires exactly one of walletID and goalID.
func NewSource(walletID, goalID *uuid.UUID) (Source, error) {
	switch {
	case walletID != nil && goalID != nil:
		return Source{}, apperr.Validation("Only one of wallet_id or goal_id may be set")
	case walletID != nil:
		return Source{Kind: SourceWallet, ID: *walletID}, nil
	case goalID != nil:
		return Source{Kind: SourceGoal, ID: *goalID}, nil
	default:
		return Source{}, apperr.Validation("Either wallet_id or goal_id is required")
	}
}

func (s Source) WalletID() *uuid.UUID {
	if s.Kind != SourceWallet {
		return nil
	}

	return &s.ID
}

func (s Source) GoalID() *uuid.UUID {
	if s.Kind != SourceGoal {
		return nil
	}

	return &s.ID
}

type Transaction struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Source     Source
	CategoryID *uuid.UUID
	Amount     decimal.Decimal
	Type       ledger.Type
	Note       string
	Date       time.Time
	lifecycle.State
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (t *Transaction) OwnerID() uuid.UUID { return t.UserID }

func (t *Transaction) Entry() ledger.Entry {
	return ledger.Entry{Type: t.Type, Amount: t.Amount}
}

// ledgerIDs lists every record whose advisory lock guards t's effect.
func (t *Transaction) ledgerIDs() []uuid.UUID {
	ids := []uuid.UUID{t.Source.ID}
	if t.CategoryID != nil {
		ids = append(ids, *t.CategoryID)
	}

	return ids
}

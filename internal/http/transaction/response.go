package transaction

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type transactionResponse struct {
	ID              uuid.UUID   `json:"id"`
	WalletID        *uuid.UUID  `json:"wallet_id"`
	GoalID          *uuid.UUID  `json:"goal_id"`
	CategoryID      *uuid.UUID  `json:"category_id"`
	Amount          json.Number `json:"amount"`
	TransactionType ledger.Type `json:"transaction_type"`
	Note            string      `json:"note"`
	Date            time.Time   `json:"date"`
	IsDeleted       bool        `json:"is_deleted"`
	DeletedAt       *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       *time.Time  `json:"updated_at,omitempty"`
}

func toResponse(t *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:              t.ID,
		WalletID:        t.Source.WalletID(),
		GoalID:          t.Source.GoalID(),
		CategoryID:      t.CategoryID,
		Amount:          respond.Money(t.Amount),
		TransactionType: t.Type,
		Note:            t.Note,
		Date:            t.Date,
		IsDeleted:       t.IsDeleted,
		DeletedAt:       t.DeletedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

type conflictResponse struct {
	Row      int                 `json:"row"`
	Incoming transactionResponse `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

func toConflicts(cs []transaction.Conflict) []conflictResponse {
	out := make([]conflictResponse, len(cs))
	for i, c := range cs {
		out[i] = conflictResponse{Row: c.Row, Incoming: toResponse(c.Incoming), Existing: toResponse(c.Existing)}
	}

	return out
}

func toList(ts []*transaction.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(ts))
	for i, t := range ts {
		out[i] = toResponse(t)
	}

	return out
}

package wallet

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
)

type walletResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Balance   json.Number `json:"balance"`
	Currency  string      `json:"currency"`
	IsDeleted bool        `json:"is_deleted"`
	DeletedAt *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

func toResponse(w *wallet.Wallet) walletResponse {
	return walletResponse{
		ID:        w.ID,
		Name:      w.Name,
		Balance:   respond.Money(w.Balance),
		Currency:  string(w.Currency),
		IsDeleted: w.IsDeleted,
		DeletedAt: w.DeletedAt,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

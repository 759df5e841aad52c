package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/lifecycle"
)

type Currency string

const (
	CurrencyVND Currency = "VND"
	CurrencyUSD Currency = "USD"
	CurrencyCNY Currency = "CNY"
	CurrencyKRW Currency = "KRW"
)

var supported = map[Currency]bool{
	CurrencyVND: true,
	CurrencyUSD: true,
	CurrencyCNY: true,
	CurrencyKRW: true,
}

// ParseCurrency accepts an ISO 4217 code from the supported set.
func ParseCurrency(s string) (Currency, error) {
	unit, err := currency.ParseISO(s)
	if err != nil {
		return "", apperr.Validation("Invalid currency")
	}

	c := Currency(unit.String())
	if !supported[c] {
		return "", apperr.Validation("Invalid currency")
	}

	return c, nil
}

// Scale is the number of minor-unit digits amounts in c may carry.
func (c Currency) Scale() int32 {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return 2
	}

	scale, _ := currency.Standard.Rounding(unit)

	return int32(scale)
}

// Fits reports whether d has no more decimal places than c allows.
func (c Currency) Fits(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(c.Scale()))
}

// Wallet is a funding source whose balance is maintained by the ledger.
type Wallet struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Name     string
	Balance  decimal.Decimal
	Currency Currency
	lifecycle.State
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (w *Wallet) OwnerID() uuid.UUID { return w.UserID }

// Balance is the cached read model served by the balance endpoint.
type Balance struct {
	WalletID uuid.UUID       `json:"wallet_id"`
	UserID   uuid.UUID       `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency Currency        `json:"currency"`
}

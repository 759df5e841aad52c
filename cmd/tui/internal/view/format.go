package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
)

const dbTimeout = 5 * time.Second

var hundred = decimal.NewFromInt(100)

// listPage is large enough that one page covers a personal account.
var listPage = pagination.New(1, pagination.MaxPerPage, pagination.MaxPerPage)

func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

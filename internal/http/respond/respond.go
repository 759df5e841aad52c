// Package respond writes the JSON envelope every endpoint answers with:
// {"message": ..., "status_code": ..., <payload>}.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/pagination"
)

// Payload holds the fields merged next to message and status_code.
type Payload map[string]any

func JSON(w http.ResponseWriter, status int, message string, payload Payload) {
	body := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}

	body["message"] = message
	body["status_code"] = status

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error maps err onto its status. Store failures are logged and answered with
// "An error occurred while <op>" so driver text never reaches the client.
func Error(w http.ResponseWriter, r *http.Request, op string, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindStore {
		slog.ErrorContext(r.Context(), "request failed", "op", op, "error", err)
		JSON(w, http.StatusInternalServerError, "An error occurred while "+op, nil)

		return
	}

	JSON(w, e.Kind.Status(), e.Message, Payload(e.Payload))
}

// Money renders d as a JSON number without a float round trip.
func Money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// List writes a paginated result after converting each item with fn.
func List[T, U any](w http.ResponseWriter, message string, res pagination.Result[T], fn func(T) U) {
	page := pagination.Map(res, fn)

	JSON(w, http.StatusOK, message, Payload{
		"items":       page.Items,
		"page":        page.Page,
		"per_page":    page.PerPage,
		"total_pages": page.TotalPages,
		"total_items": page.TotalItems,
	})
}

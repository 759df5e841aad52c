package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/http/middleware"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	WalletID  uuid.UUID     `json:"wallet_id" validate:"required"`
	StartDate *respond.Date `json:"start_date" validate:"required"`
	EndDate   *respond.Date `json:"end_date" validate:"required"`
}

func (h *Handler) load(r *http.Request) (*export.Export, error) {
	var req exportRequest
	if err := respond.Decode(r, &req); err != nil {
		return nil, err
	}

	if req.EndDate.Before(req.StartDate.Time) {
		return nil, apperr.Validation("End date must be after start date")
	}

	return h.svc.Export(r.Context(), middleware.UserID(r.Context()), req.WalletID, req.StartDate.Time, req.EndDate.Time)
}

type lineResponse struct {
	ID     uuid.UUID   `json:"id"`
	Date   string      `json:"date"`
	Note   string      `json:"note"`
	Amount json.Number `json:"amount"`
	Type   string      `json:"transaction_type"`
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	const op = "exporting transactions"

	e, err := h.load(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	lines := make([]lineResponse, len(e.Transactions))
	for i, t := range e.Transactions {
		lines[i] = lineResponse{
			ID:     t.ID,
			Date:   t.Date.Format(time.DateOnly),
			Note:   t.Note,
			Amount: respond.Money(t.Amount),
			Type:   string(t.Type),
		}
	}

	respond.JSON(w, http.StatusOK, "Statement exported successfully", respond.Payload{
		"wallet_id":    e.WalletID,
		"transactions": lines,
		"income":       respond.Money(e.Income),
		"expense":      respond.Money(e.Expense),
		"net":          respond.Money(e.Net()),
		"summary":      e.Summary(),
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	e, err := h.load(r)
	if err != nil {
		respond.Error(w, r, "exporting transactions", err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"statement_%s_%s.zip\"",
			e.From.Format("20060102"), e.To.Format("20060102")))

	if err := e.WriteZip(w); err != nil {
		slog.ErrorContext(r.Context(), "failed to write statement zip", "error", err)
	}
}

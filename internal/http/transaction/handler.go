package transaction

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/http/middleware"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

const confirmMessage = "You are using money from your savings goal. Are you sure you want to continue?"

type Handler struct {
	svc      *transaction.Service
	importer Importer
	perPage  int
}

func NewHandler(svc *transaction.Service, importer Importer, perPage int) *Handler {
	return &Handler{svc: svc, importer: importer, perPage: perPage}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/import", h.importStatement)
	r.Get("/", h.list)
	r.Get("/deleted", h.listDeleted)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/soft_delete", h.softDelete)
	r.Patch("/{id}/restore", h.restore)
}

type createRequest struct {
	WalletID        *uuid.UUID       `json:"wallet_id"`
	GoalID          *uuid.UUID       `json:"goal_id"`
	CategoryID      *uuid.UUID       `json:"category_id"`
	Amount          *decimal.Decimal `json:"amount" validate:"required"`
	TransactionType ledger.Type      `json:"transaction_type" validate:"required"`
	Note            string           `json:"note" validate:"max=255"`
	Date            *respond.Date    `json:"date"`
	Confirm         bool             `json:"confirm"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	const op = "creating transaction"

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	res, err := h.svc.Create(r.Context(), middleware.UserID(r.Context()), transaction.CreateParams{
		WalletID:   req.WalletID,
		GoalID:     req.GoalID,
		CategoryID: req.CategoryID,
		Amount:     *req.Amount,
		Type:       req.TransactionType,
		Note:       req.Note,
		Date:       req.Date.Ptr(),
		Confirm:    req.Confirm,
	})
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	writeResult(w, http.StatusCreated, "Transaction created successfully", res)
}

// writeResult answers a ledger operation, asking for confirmation when the
// service refused to touch a goal without it.
func writeResult(w http.ResponseWriter, status int, message string, res *transaction.Result) {
	if res.RequiresConfirmation {
		respond.JSON(w, http.StatusOK, confirmMessage, respond.Payload{"requires_confirmation": true})
		return
	}

	respond.JSON(w, status, message, respond.Payload{
		"transaction":    toResponse(res.Transaction),
		"budget_overrun": res.BudgetOverrun,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context(), middleware.UserID(r.Context()), respond.Page(r, h.perPage))
	if err != nil {
		respond.Error(w, r, "retrieving transactions", err)
		return
	}

	respond.List(w, "Transactions retrieved successfully", res, toResponse)
}

func (h *Handler) listDeleted(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListDeleted(r.Context(), middleware.UserID(r.Context()), respond.Page(r, h.perPage))
	if err != nil {
		respond.Error(w, r, "retrieving deleted transactions", err)
		return
	}

	respond.List(w, "Deleted transactions retrieved successfully", res, toResponse)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	const op = "retrieving transaction"

	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	t, err := h.svc.Get(r.Context(), id, middleware.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Transaction retrieved successfully", respond.Payload{"transaction": toResponse(t)})
}

type updateRequest struct {
	WalletID        *uuid.UUID       `json:"wallet_id"`
	GoalID          *uuid.UUID       `json:"goal_id"`
	CategoryID      *uuid.UUID       `json:"category_id"`
	Amount          *decimal.Decimal `json:"amount"`
	TransactionType *ledger.Type     `json:"transaction_type"`
	Note            *string          `json:"note" validate:"omitempty,max=255"`
	Date            *respond.Date    `json:"date"`
	Confirm         bool             `json:"confirm"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	const op = "updating transaction"

	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	res, err := h.svc.Update(r.Context(), id, middleware.UserID(r.Context()), transaction.UpdateParams{
		WalletID:   req.WalletID,
		GoalID:     req.GoalID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Type:       req.TransactionType,
		Note:       req.Note,
		Date:       req.Date.Ptr(),
		Confirm:    req.Confirm,
	})
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	writeResult(w, http.StatusOK, "Transaction updated successfully", res)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	const op = "restoring transaction"

	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	res, err := h.svc.Restore(r.Context(), id, middleware.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	writeResult(w, http.StatusOK, "Transaction restored successfully", res)
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "soft deleting transaction", "Transaction soft deleted successfully", h.svc.SoftDelete)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "deleting transaction", "Transaction deleted successfully", h.svc.Delete)
}

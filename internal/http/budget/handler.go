package budget

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/http/middleware"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
)

type Handler struct {
	svc     *budget.Service
	perPage int
}

func NewHandler(svc *budget.Service, perPage int) *Handler {
	return &Handler{svc: svc, perPage: perPage}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/deleted", h.listDeleted)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/soft_delete", h.softDelete)
	r.Patch("/{id}/restore", h.restore)
}

type budgetResponse struct {
	ID         uuid.UUID   `json:"id"`
	CategoryID uuid.UUID   `json:"category_id"`
	Amount     json.Number `json:"amount"`
	StartDate  string      `json:"start_date"`
	EndDate    string      `json:"end_date"`
	IsDeleted  bool        `json:"is_deleted"`
	DeletedAt  *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  *time.Time  `json:"updated_at,omitempty"`
}

func toResponse(b *budget.Budget) budgetResponse {
	return budgetResponse{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Amount:     respond.Money(b.Amount),
		StartDate:  b.StartDate.Format(time.DateOnly),
		EndDate:    b.EndDate.Format(time.DateOnly),
		IsDeleted:  b.IsDeleted,
		DeletedAt:  b.DeletedAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

type createRequest struct {
	CategoryID uuid.UUID        `json:"category_id" validate:"required"`
	Amount     *decimal.Decimal `json:"amount" validate:"required"`
	StartDate  *respond.Date    `json:"start_date"`
	EndDate    *respond.Date    `json:"end_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	const op = "creating budget"

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	b, err := h.svc.Create(r.Context(), middleware.UserID(r.Context()), budget.CreateParams{
		CategoryID: req.CategoryID,
		Amount:     *req.Amount,
		StartDate:  req.StartDate.Ptr(),
		EndDate:    req.EndDate.Ptr(),
		Force:      respond.Flag(r, "force"),
	})
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "Budget created successfully", respond.Payload{"budget": toResponse(b)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context(), middleware.UserID(r.Context()), respond.Page(r, h.perPage))
	if err != nil {
		respond.Error(w, r, "retrieving budgets", err)
		return
	}

	respond.List(w, "Budgets retrieved successfully", res, toResponse)
}

func (h *Handler) listDeleted(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListDeleted(r.Context(), middleware.UserID(r.Context()), respond.Page(r, h.perPage))
	if err != nil {
		respond.Error(w, r, "retrieving deleted budgets", err)
		return
	}

	respond.List(w, "Deleted budgets retrieved successfully", res, toResponse)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	const op = "retrieving budget"

	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	b, err := h.svc.Get(r.Context(), id, middleware.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Budget retrieved successfully", respond.Payload{"budget": toResponse(b)})
}

type updateRequest struct {
	CategoryID *uuid.UUID       `json:"category_id"`
	Amount     *decimal.Decimal `json:"amount"`
	StartDate  *respond.Date    `json:"start_date"`
	EndDate    *respond.Date    `json:"end_date"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	const op = "updating budget"

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

	b, err := h.svc.Update(r.Context(), id, middleware.UserID(r.Context()), budget.UpdateParams{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		StartDate:  req.StartDate.Ptr(),
		EndDate:    req.EndDate.Ptr(),
	})
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Budget updated successfully", respond.Payload{"budget": toResponse(b)})
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "soft deleting budget", "Budget soft deleted successfully", h.svc.SoftDelete)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "restoring budget", "Budget restored successfully", h.svc.Restore)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "deleting budget", "Budget deleted successfully", h.svc.Delete)
}

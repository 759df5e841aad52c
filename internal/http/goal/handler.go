package goal

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/http/middleware"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
)

type Handler struct {
	svc     *goal.Service
	perPage int
}

func NewHandler(svc *goal.Service, perPage int) *Handler {
	return &Handler{svc: svc, perPage: perPage}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/deleted", h.listDeleted)
	r.Get("/{id}", h.get)
	r.Get("/{id}/status", h.status)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/soft_delete", h.softDelete)
	r.Patch("/{id}/restore", h.restore)
}

type goalResponse struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	TargetAmount json.Number `json:"target_amount"`
	SavedAmount  json.Number `json:"saved_amount"`
	Deadline     string      `json:"deadline"`
	IsDeleted    bool        `json:"is_deleted"`
	DeletedAt    *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    *time.Time  `json:"updated_at,omitempty"`
}

func toResponse(g *goal.Goal) goalResponse {
	return goalResponse{
		ID:           g.ID,
		Name:         g.Name,
		TargetAmount: respond.Money(g.TargetAmount),
		SavedAmount:  respond.Money(g.SavedAmount),
		Deadline:     g.Deadline.Format(time.DateOnly),
		IsDeleted:    g.IsDeleted,
		DeletedAt:    g.DeletedAt,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

type createRequest struct {
	Name         string           `json:"name" validate:"required,max=100"`
	TargetAmount *decimal.Decimal `json:"target_amount" validate:"required"`
	SavedAmount  decimal.Decimal  `json:"saved_amount"`
	Deadline     *respond.Date    `json:"deadline"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	const op = "creating goal"

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	g, err := h.svc.Create(r.Context(), middleware.UserID(r.Context()), goal.CreateParams{
		Name:         req.Name,
		TargetAmount: *req.TargetAmount,
		SavedAmount:  req.SavedAmount,
		Deadline:     req.Deadline.Ptr(),
		Force:        respond.Flag(r, "force"),
	})
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "Goal created successfully", respond.Payload{"goal": toResponse(g)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context(), middleware.UserID(r.Context()), respond.Page(r, h.perPage))
	if err != nil {
		respond.Error(w, r, "retrieving goals", err)
		return
	}

	respond.List(w, "Goals retrieved successfully", res, toResponse)
}

func (h *Handler) listDeleted(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListDeleted(r.Context(), middleware.UserID(r.Context()), respond.Page(r, h.perPage))
	if err != nil {
		respond.Error(w, r, "retrieving deleted goals", err)
		return
	}

	respond.List(w, "Deleted goals retrieved successfully", res, toResponse)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	const op = "retrieving goal"

	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	g, err := h.svc.Get(r.Context(), id, middleware.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Goal retrieved successfully", respond.Payload{"goal": toResponse(g)})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	const op = "retrieving goal status"

	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	st, err := h.svc.Status(r.Context(), id, middleware.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Goal status retrieved successfully", respond.Payload{
		"goal_id":        st.GoalID,
		"name":           st.Name,
		"target_amount":  respond.Money(st.TargetAmount),
		"saved_amount":   respond.Money(st.SavedAmount),
		"progress":       respond.Money(st.Progress),
		"is_achieved":    st.IsAchieved,
		"days_remaining": st.DaysRemaining,
		"daily_saving":   respond.Money(st.DailySaving),
	})
}

type updateRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=100"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	Deadline     *respond.Date    `json:"deadline"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	const op = "updating goal"

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

	g, err := h.svc.Update(r.Context(), id, middleware.UserID(r.Context()), goal.UpdateParams{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline.Ptr(),
	})
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Goal updated successfully", respond.Payload{"goal": toResponse(g)})
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "soft deleting goal", "Goal soft deleted successfully", h.svc.SoftDelete)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "restoring goal", "Goal restored successfully", h.svc.Restore)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "deleting goal", "Goal deleted successfully", h.svc.Delete)
}

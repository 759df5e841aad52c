package matching

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/http/middleware"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Get("/", h.list)
	r.Post("/", h.learn)
	r.Delete("/{id}", h.forget)
}

type ruleResponse struct {
	ID         uuid.UUID `json:"id"`
	Pattern    string    `json:"pattern"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(r *matching.Rule) ruleResponse {
	return ruleResponse{ID: r.ID, Pattern: r.Pattern, CategoryID: r.CategoryID, CreatedAt: r.CreatedAt}
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	const op = "suggesting category"

	note := r.URL.Query().Get("note")
	if note == "" {
		respond.Error(w, r, op, apperr.Validation("note query parameter is required"))
		return
	}

	categoryID, err := h.svc.Suggest(r.Context(), middleware.UserID(r.Context()), note)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Category suggested successfully", respond.Payload{
		"note":        note,
		"category_id": categoryID,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, "retrieving rules", err)
		return
	}

	items := make([]ruleResponse, len(rules))
	for i, rl := range rules {
		items[i] = toResponse(rl)
	}

	respond.JSON(w, http.StatusOK, "Rules retrieved successfully", respond.Payload{"items": items})
}

type learnRequest struct {
	Pattern    string    `json:"pattern" validate:"required,max=255"`
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	const op = "creating rule"

	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	rule, err := h.svc.Learn(r.Context(), middleware.UserID(r.Context()), req.Pattern, req.CategoryID)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "Rule created successfully", respond.Payload{"rule": toResponse(rule)})
}

func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "deleting rule", "Rule deleted successfully", h.svc.Forget)
}

package category

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/category"
	"github.com/MrJamesThe3rd/pennywise/internal/http/middleware"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
)

type Handler struct {
	svc     *category.Service
	perPage int
}

func NewHandler(svc *category.Service, perPage int) *Handler {
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

type categoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		IsDeleted: c.IsDeleted,
		DeletedAt: c.DeletedAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type nameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	const op = "creating category"

	var req nameRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	c, restored, err := h.svc.Create(r.Context(), middleware.UserID(r.Context()), req.Name)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	if restored {
		respond.JSON(w, http.StatusOK, "Category was previously deleted but has been restored successfully",
			respond.Payload{"category": toResponse(c)})

		return
	}

	respond.JSON(w, http.StatusCreated, "Category created successfully", respond.Payload{"category": toResponse(c)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context(), middleware.UserID(r.Context()), respond.Page(r, h.perPage))
	if err != nil {
		respond.Error(w, r, "retrieving categories", err)
		return
	}

	respond.List(w, "Categories retrieved successfully", res, toResponse)
}

func (h *Handler) listDeleted(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListDeleted(r.Context(), middleware.UserID(r.Context()), respond.Page(r, h.perPage))
	if err != nil {
		respond.Error(w, r, "retrieving deleted categories", err)
		return
	}

	respond.List(w, "Deleted categories retrieved successfully", res, toResponse)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	const op = "retrieving category"

	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	c, err := h.svc.Get(r.Context(), id, middleware.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Category retrieved successfully", respond.Payload{"category": toResponse(c)})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	const op = "updating category"

	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	var req nameRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	c, err := h.svc.Update(r.Context(), id, middleware.UserID(r.Context()), req.Name)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Category updated successfully", respond.Payload{"category": toResponse(c)})
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "soft deleting category", "Category soft deleted successfully", h.svc.SoftDelete)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "restoring category", "Category restored successfully", h.svc.Restore)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "deleting category", "Category deleted successfully", h.svc.Delete)
}

package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/middleware"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/user"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/me", h.me)
	r.Put("/me", h.update)
	r.Patch("/me/soft_delete", h.softDelete)
	r.Delete("/me", h.delete)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, "retrieving user profile", err)
		return
	}

	respond.JSON(w, http.StatusOK, "User retrieved successfully", respond.Payload{"user": auth.ToUserResponse(u)})
}

type updateRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	OldPassword *string `json:"old_password"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	const op = "updating user"

	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	u, err := h.svc.Update(r.Context(), middleware.UserID(r.Context()), user.UpdateParams{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		OldPassword: req.OldPassword,
	})
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "User updated successfully", respond.Payload{"user": auth.ToUserResponse(u)})
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SoftDelete(r.Context(), middleware.UserID(r.Context())); err != nil {
		respond.Error(w, r, "soft deleting user", err)
		return
	}

	respond.JSON(w, http.StatusOK, "User soft deleted successfully", nil)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.UserID(r.Context())); err != nil {
		respond.Error(w, r, "deleting user", err)
		return
	}

	respond.JSON(w, http.StatusOK, "User deleted successfully", nil)
}

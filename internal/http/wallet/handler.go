package wallet

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/http/middleware"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
)

type Handler struct {
	svc     *wallet.Service
	perPage int
}

func NewHandler(svc *wallet.Service, perPage int) *Handler {
	return &Handler{svc: svc, perPage: perPage}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/deleted", h.listDeleted)
	r.Get("/{id}", h.get)
	r.Get("/{id}/balance", h.balance)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/soft_delete", h.softDelete)
	r.Patch("/{id}/restore", h.restore)
}

type createRequest struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	const op = "creating wallet"

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	wl, err := h.svc.Create(r.Context(), middleware.UserID(r.Context()), wallet.CreateParams{
		Name:     req.Name,
		Balance:  req.Balance,
		Currency: req.Currency,
		Force:    respond.Flag(r, "force"),
	})
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "Wallet created successfully", respond.Payload{"wallet": toResponse(wl)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context(), middleware.UserID(r.Context()), respond.Page(r, h.perPage))
	if err != nil {
		respond.Error(w, r, "retrieving wallets", err)
		return
	}

	respond.List(w, "Wallets retrieved successfully", res, toResponse)
}

func (h *Handler) listDeleted(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListDeleted(r.Context(), middleware.UserID(r.Context()), respond.Page(r, h.perPage))
	if err != nil {
		respond.Error(w, r, "retrieving deleted wallets", err)
		return
	}

	respond.List(w, "Deleted wallets retrieved successfully", res, toResponse)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	const op = "retrieving wallet"

	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	wl, err := h.svc.Get(r.Context(), id, middleware.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Wallet retrieved successfully", respond.Payload{"wallet": toResponse(wl)})
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	const op = "retrieving wallet balance"

	id, err := respond.ID(r)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	b, err := h.svc.Balance(r.Context(), id, middleware.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Wallet balance retrieved successfully", respond.Payload{
		"wallet_id": b.WalletID,
		"balance":   respond.Money(b.Balance),
		"currency":  b.Currency,
	})
}

type updateRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Currency *string `json:"currency"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	const op = "updating wallet"

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

	wl, err := h.svc.Update(r.Context(), id, middleware.UserID(r.Context()), wallet.UpdateParams{
		Name:     req.Name,
		Currency: req.Currency,
	})
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Wallet updated successfully", respond.Payload{"wallet": toResponse(wl)})
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "soft deleting wallet", "Wallet soft deleted successfully", h.svc.SoftDelete)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "restoring wallet", "Wallet restored successfully", h.svc.Restore)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	respond.StateChange(w, r, middleware.UserID(r.Context()), "deleting wallet", "Wallet deleted successfully", h.svc.Delete)
}

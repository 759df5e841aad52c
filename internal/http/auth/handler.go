package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

type userResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ToUserResponse never exposes the password hash.
func ToUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	const op = "registering"

	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	u, err := h.svc.Register(r.Context(), user.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "User registered successfully", respond.Payload{"user": ToUserResponse(u)})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	const op = "login"

	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, op, err)
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, op, err)
		return
	}

	respond.JSON(w, http.StatusOK, "User logged in successfully", respond.Payload{
		"access_token": sess.Token.Value,
		"token_type":   "Bearer",
		"expires_in":   int(sess.Token.ExpiresIn.Seconds()),
		"restored":     sess.Restored,
		"user":         ToUserResponse(sess.User),
	})
}

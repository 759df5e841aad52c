package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/http/category"
	"github.com/MrJamesThe3rd/pennywise/internal/http/export"
	"github.com/MrJamesThe3rd/pennywise/internal/http/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/http/matching"
	authmw "github.com/MrJamesThe3rd/pennywise/internal/http/middleware"
	"github.com/MrJamesThe3rd/pennywise/internal/http/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/http/user"
	"github.com/MrJamesThe3rd/pennywise/internal/http/wallet"
)

type Handlers struct {
	Auth         *auth.Handler
	Users        *user.Handler
	Wallets      *wallet.Handler
	Goals        *goal.Handler
	Categories   *category.Handler
	Budgets      *budget.Handler
	Transactions *transaction.Handler
	Matching     *matching.Handler
	Export       *export.Handler
}

func New(h Handlers, tokens authmw.TokenParser, accounts authmw.Accounts, origins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Auth.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(authmw.Authenticate(tokens, accounts))

			r.Route("/users", h.Users.Routes)

			r.Route("/wallets", h.Wallets.Routes)
			r.Route("/goals", h.Goals.Routes)
			r.Route("/categories", h.Categories.Routes)
			r.Route("/budgets", h.Budgets.Routes)

			// import is multipart; everything else on transactions is JSON.
			r.Route("/transactions", h.Transactions.Routes)

			r.Route("/matching", h.Matching.Routes)

			r.Route("/export", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Export.Routes(r)
			})
		})
	})

	return router
}

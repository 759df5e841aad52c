package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/pennywise/internal/budget/store"
	"github.com/MrJamesThe3rd/pennywise/internal/cache"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	categoryStore "github.com/MrJamesThe3rd/pennywise/internal/category/store"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	goalStore "github.com/MrJamesThe3rd/pennywise/internal/goal/store"
	pennyHttp "github.com/MrJamesThe3rd/pennywise/internal/http"
	authHandler "github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	budgetHandler "github.com/MrJamesThe3rd/pennywise/internal/http/budget"
	categoryHandler "github.com/MrJamesThe3rd/pennywise/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/pennywise/internal/http/export"
	goalHandler "github.com/MrJamesThe3rd/pennywise/internal/http/goal"
	matchingHandler "github.com/MrJamesThe3rd/pennywise/internal/http/matching"
	txHandler "github.com/MrJamesThe3rd/pennywise/internal/http/transaction"
	userHandler "github.com/MrJamesThe3rd/pennywise/internal/http/user"
	walletHandler "github.com/MrJamesThe3rd/pennywise/internal/http/wallet"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/pennywise/internal/matching/store"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pennywise/internal/transaction/store"
	"github.com/MrJamesThe3rd/pennywise/internal/user"
	userStore "github.com/MrJamesThe3rd/pennywise/internal/user/store"
	"github.com/MrJamesThe3rd/pennywise/internal/wallet"
	walletStore "github.com/MrJamesThe3rd/pennywise/internal/wallet/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	var readCache cache.Cache = cache.Noop{}

	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.Dial(ctx, cfg.Cache.RedisAddr, cfg.Cache.TTL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()

		readCache = rc
	}

	tokens := auth.NewGateway(cfg.Auth.Secret, cfg.Auth.TTL)
	engine := ledger.NewEngine(cfg.Ledger.BudgetPolicy, log)

	var (
		userService        = user.NewService(userStore.New(db), tokens, cfg.Auth.RestoreWindow, log)
		walletService      = wallet.NewService(walletStore.New(db), readCache, log)
		goalService        = goal.NewService(goalStore.New(db), readCache, log)
		categoryService    = category.NewService(categoryStore.New(db), log)
		budgetService      = budget.NewService(budgetStore.New(db), log)
		transactionService = transaction.NewService(txStore.New(db), engine, readCache, log)
		matchingService    = matching.NewService(matchingStore.New(db))
		importService      = importer.NewService(matchingService, transactionService, log)
		exportService      = export.NewService(transactionService)
	)

	perPage := cfg.Ledger.PageSize

	router := pennyHttp.New(pennyHttp.Handlers{
		Auth:         authHandler.NewHandler(userService),
		Users:        userHandler.NewHandler(userService),
		Wallets:      walletHandler.NewHandler(walletService, perPage),
		Goals:        goalHandler.NewHandler(goalService, perPage),
		Categories:   categoryHandler.NewHandler(categoryService, perPage),
		Budgets:      budgetHandler.NewHandler(budgetService, perPage),
		Transactions: txHandler.NewHandler(transactionService, importService, perPage),
		Matching:     matchingHandler.NewHandler(matchingService),
		Export:       exportHandler.NewHandler(exportService),
	}, tokens, userService, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "app", cfg.App.Name, "port", srv.Addr, "budget_policy", cfg.Ledger.BudgetPolicy)

	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fairshare-app/fairshare/docs"
	"github.com/fairshare-app/fairshare/internal/balance"
	"github.com/fairshare-app/fairshare/internal/config"
	"github.com/fairshare-app/fairshare/internal/database"
	"github.com/fairshare-app/fairshare/internal/expense"
	expensesplit "github.com/fairshare-app/fairshare/internal/expense/split"
	"github.com/fairshare-app/fairshare/internal/group"
	"github.com/fairshare-app/fairshare/internal/ledger"
	"github.com/fairshare-app/fairshare/internal/settlement"
	"github.com/fairshare-app/fairshare/internal/user"
	mw "github.com/fairshare-app/fairshare/pkg/middleware"
)

// @title           FairShare API
// @version         1.0
// @description     Group expense sharing with a pairwise debt ledger and greedy debt simplification.
// @host            localhost:8080
// @BasePath        /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to database, schema up to date")

	// Ledger core: all balance mutations go through here.
	ledgerStore := ledger.NewPostgresStore(db)
	balanceLedger := ledger.New(ledgerStore)

	// Split Strategy Factory (Factory Pattern)
	splitFactory := expensesplit.NewFactory()

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo)
	groupHandler := group.NewHandler(groupService)

	// Expense feature: split factory plus ledger injected, group service
	// acting as the membership directory.
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, splitFactory, groupService, balanceLedger)
	expenseHandler := expense.NewHandler(expenseService)

	// Balance feature: settlements are recorded append-only alongside the
	// ledger mutation.
	settlementRepo := settlement.NewRepository(db)
	balanceService := balance.NewService(balanceLedger, groupService, settlementRepo)
	balanceHandler := balance.NewHandler(balanceService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/balances", balanceHandler.Routes())
	})

	slog.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

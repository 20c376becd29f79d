package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/branchledger/cashbook/docs"
	"github.com/branchledger/cashbook/internal/audit"
	"github.com/branchledger/cashbook/internal/config"
	"github.com/branchledger/cashbook/internal/database"
	"github.com/branchledger/cashbook/internal/handlers"
	mW "github.com/branchledger/cashbook/internal/middleware"
	"github.com/branchledger/cashbook/internal/services"
	"github.com/branchledger/cashbook/internal/store/postgres"
)

// @title Branch Cashbook API
// @version 1.0
// @description Multi-branch cashbook ledger: vouchers, double-entry postings, balances and statements
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	logger := config.NewLogger(viper.GetString("log.level"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET_KEY is required")
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	db, err := database.InitDB(logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	if viper.GetBool("database.migrate") {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("Failed to apply schema")
		}
	}

	redisClient := database.InitRedis(logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	st := postgres.New(db)
	auditLogger := audit.NewAuditLogger(logger)
	voucherService := services.NewVoucherService(st, logger)
	balanceService := services.NewBalanceService(st, redisClient, cfg.BalanceCacheTTL, logger, auditLogger)
	transactionService := services.NewTransactionService(st, voucherService, balanceService, auditLogger, logger)
	statementService := services.NewStatementService(st, logger)
	accountService := services.NewAccountService(st, balanceService, logger)
	branchService := services.NewBranchService(st, logger)

	api := &handlers.Handlers{
		Transactions: handlers.NewTransactionHandler(transactionService, logger),
		Ledger:       handlers.NewLedgerHandler(statementService, logger),
		Accounts:     handlers.NewAccountHandler(accountService, balanceService, logger),
		Branches:     handlers.NewBranchHandler(branchService, voucherService, logger),
	}
	auth := mW.NewAuthMiddleware(cfg.JWTSecret, logger)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		if err := db.PingContext(r.Context()); err != nil {
			status = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		api.Mount(r, auth.Authenticate)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

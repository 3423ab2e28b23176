// CTE Capstone Planner server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/jdelaney/capstone-planner/internal/api"
	"github.com/jdelaney/capstone-planner/internal/config"
	"github.com/jdelaney/capstone-planner/internal/drive"
	"github.com/jdelaney/capstone-planner/internal/identity"
	"github.com/jdelaney/capstone-planner/internal/llm"
	"github.com/jdelaney/capstone-planner/internal/middleware"
	"github.com/jdelaney/capstone-planner/internal/planner"
	"github.com/jdelaney/capstone-planner/internal/store"
	"github.com/jdelaney/capstone-planner/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Completion client and conversation controller.
	completionClient := llm.NewClient(
		&llm.OpenAIProvider{APIKey: cfg.LLM.APIKey},
		cfg.LLM.BaseURL,
		cfg.LLM.Model,
		llm.WithAttemptTimeout(cfg.LLM.AttemptTimeout),
		llm.WithRetryConfig(llm.RetryConfig{
			MaxAttempts:       cfg.LLM.MaxAttempts,
			BackoffBase:       2 * time.Second,
			BackoffMultiplier: 2.0,
			MaxBackoff:        20 * time.Second,
		}),
		llm.WithLogger(logger),
	)
	controller := planner.New(completionClient, logger)

	if !cfg.LLM.Configured() {
		slog.Warn("OPENAI_API_KEY not set; conversation endpoints will reject requests")
	}

	// Drive/Docs exporter.
	exporter := drive.NewExporter(drive.Credentials{
		ClientEmail: cfg.Google.ClientEmail,
		PrivateKey:  cfg.Google.PrivateKey,
	}, drive.WithLogger(logger))

	if !cfg.Google.Configured() {
		slog.Warn("Google service account credentials not set; export endpoint will reject requests")
	}

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, cfg)
	healthHandler := api.NewHealthHandler(repo)
	planHandler := api.NewPlanHandler(baseHandler, controller)
	capstoneHandler := api.NewCapstoneHandler(baseHandler, exporter)
	sessionHandler := api.NewSessionHandler(baseHandler)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

	healthHandler.RegisterHealth(r)
	planHandler.RegisterRoutes(r)
	capstoneHandler.RegisterRoutes(r)
	sessionHandler.RegisterRoutes(r)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // Completion calls can take a while
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store.StartSessionSweeper(ctx, repo, cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

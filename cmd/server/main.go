package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mafia-stats/gomafia-sync/internal/alert"
	"github.com/mafia-stats/gomafia-sync/internal/api"
	"github.com/mafia-stats/gomafia-sync/internal/config"
	"github.com/mafia-stats/gomafia-sync/internal/db"
	"github.com/mafia-stats/gomafia-sync/internal/gomafia"
	"github.com/mafia-stats/gomafia-sync/internal/scheduler"
	syncsvc "github.com/mafia-stats/gomafia-sync/internal/sync"
	"github.com/mafia-stats/gomafia-sync/internal/verify"
)

// @title Gomafia Sync API
// @version 1.0
// @description API for importing and verifying gomafia.pro tournament data
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetOutput(os.Stdout)

	// Load configuration with defaults
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DBConnectionString == "" {
		logger.Fatal("Missing required configuration (DB_CONNECTION_STRING must be set)")
	}

	// Initialize database
	store, err := db.NewPostgresStore(cfg.DBConnectionString)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations with retry logic
	if err := retry(3, 5*time.Second, func() error {
		return store.Migrate()
	}); err != nil {
		logger.Fatalf("Failed to run migrations after retries: %v", err)
	}

	// Initialize services
	lock := db.NewAdvisoryLock(store.DB(), logger)
	client := gomafia.NewClient(cfg.Gomafia, logger,
		gomafia.WithPageSize(cfg.Sync.BatchSize),
	)

	var sink alert.Sink
	if cfg.AlertWebhookURL != "" {
		sink = alert.NewWebhookSink(cfg.AlertWebhookURL)
	} else {
		sink = alert.NewLogSink(logger)
	}

	orchestrator := syncsvc.NewOrchestrator(store, client, lock, sink, cfg.Sync, logger)
	verifier := verify.NewService(store, client, sink, cfg.Sync, logger)

	sched, err := scheduler.New(cfg.VerifyCronSpec, verifier, logger)
	if err != nil {
		logger.Fatalf("Invalid verification schedule %q: %v", cfg.VerifyCronSpec, err)
	}
	sched.Start()

	// Setup router
	handler := api.NewHandler(orchestrator, verifier, logger)
	router := api.SetupRouter(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	if orchestrator.Cancel() {
		logger.Info("Requested cancellation of the running sync")
	}
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server exited properly")
}

// retry retries a function up to a certain number of attempts with a delay between attempts
func retry(attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if attempts--; attempts > 0 {
			time.Sleep(sleep)
			return retry(attempts, sleep, fn)
		}
		return err
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avetrov/kaiten-mirror/internal/config"
	"github.com/avetrov/kaiten-mirror/internal/database"
	"github.com/avetrov/kaiten-mirror/internal/kaiten"
	"github.com/avetrov/kaiten-mirror/internal/logger"
	"github.com/avetrov/kaiten-mirror/internal/repository"
	"github.com/avetrov/kaiten-mirror/internal/server"
	"github.com/avetrov/kaiten-mirror/internal/service"
	"github.com/avetrov/kaiten-mirror/internal/sync"
	"github.com/avetrov/kaiten-mirror/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer appLog.Sync()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			appLog.Warn("failed to close database", "error", err)
		}
	}()

	appLog.Info("database connected")

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		return err
	}
	appLog.Info("migrations applied")

	// Initialize repositories
	entityRepo := repository.NewEntityRepository(db)
	metaRepo := repository.NewSyncMetadataRepository(db)
	logRepo := repository.NewSyncLogRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)

	// Initialize Kaiten client
	client := kaiten.NewClient(cfg.KaitenAPIURL, cfg.KaitenAPIToken, kaiten.Options{
		PageSize:       cfg.PageSize,
		PageDelay:      time.Duration(cfg.PageDelayMS) * time.Millisecond,
		ChunkSize:      cfg.FetchChunkSize,
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond,
	}, appLog)

	// Initialize services
	roleMapper := service.NewRoleMapper(employeeRepo, appLog)
	orchestrator := sync.NewOrchestrator(client, entityRepo, metaRepo, logRepo, roleMapper, appLog)

	// Initialize HTTP server
	webhookProcessor := server.NewWebhookProcessor(entityRepo, appLog)
	srv := server.NewServer(orchestrator, metaRepo, logRepo, webhookProcessor, appLog)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Router(),
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 2)

	go func() {
		appLog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start periodic incremental sync when an interval is configured
	if cfg.SyncIntervalMinutes > 0 {
		w := watcher.New(orchestrator, time.Duration(cfg.SyncIntervalMinutes)*time.Minute, appLog)
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- err
			}
		}()
	}

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		appLog.Info("shutdown signal received")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLog.Warn("http server shutdown", "error", err)
		}

		appLog.Info("application stopped")
		return nil

	case err := <-errChan:
		cancel()
		return err
	}
}

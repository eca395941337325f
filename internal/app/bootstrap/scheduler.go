package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scenariowizard/worker/internal/app"
	"github.com/scenariowizard/worker/internal/infra/config"
	"github.com/scenariowizard/worker/internal/infra/db"
)

const schedulerShutdownTimeout = 30 * time.Second

// StartScheduler starts the scheduler service with cron-based jobs.
//
// Uses PostgreSQL advisory lock-based distributed locking to prevent duplicate
// execution when multiple scheduler instances are deployed (e.g., during
// blue-green deployment).
func StartScheduler(serviceName string, cfg *config.Config) error {
	slog.Info("starting service", "name", serviceName)
	slog.Info("config loaded",
		"database_url", maskURL(cfg.DatabaseURL),
		"cleanup_schedule", cfg.Cleanup.Schedule,
		"retention_window", cfg.Cleanup.RetentionWindow,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer pool.Close()

	slog.Info("postgres connected")

	container, err := app.NewSchedulerContainer(ctx, app.ContainerConfig{
		Config: cfg,
		Pool:   pool,
	})
	if err != nil {
		return fmt.Errorf("container: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			slog.Error("failed to close container", "error", err)
		}
	}()

	if err := container.Scheduler.AddFunc(cfg.Cleanup.Schedule, func() {
		container.CleanupHandler.RunWithContext(ctx)
	}); err != nil {
		return fmt.Errorf("add cleanup schedule: %w", err)
	}

	container.Scheduler.Start()
	slog.Info("scheduler started", "schedule", cfg.Cleanup.Schedule)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	sig := <-shutdown
	slog.Info("shutdown signal received", "signal", sig.String())

	cancel()

	if err := container.Scheduler.StopWithTimeout(schedulerShutdownTimeout); err != nil {
		slog.Warn("scheduler shutdown timeout", "error", err)
	}
	slog.Info("scheduler stopped")

	slog.Info("service shutdown complete", "name", serviceName)
	return nil
}

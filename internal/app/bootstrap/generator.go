package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	scenarioqueue "github.com/scenariowizard/worker/internal/adapter/queue/scenario"
	"github.com/scenariowizard/worker/internal/app"
	"github.com/scenariowizard/worker/internal/infra/config"
	"github.com/scenariowizard/worker/internal/infra/db"
	infraqueue "github.com/scenariowizard/worker/internal/infra/queue"
)

// StartGenerator starts the generator service for queue processing.
// Generators consume scenario:generate tasks and process them through the
// configured LLM provider chain. Horizontal scaling is safe - multiple
// generator instances share the workload.
func StartGenerator(serviceName string, cfg *config.Config) error {
	slog.Info("starting service", "name", serviceName)
	slog.Info("config loaded",
		"database_url", maskURL(cfg.DatabaseURL),
		"providers", cfg.ProviderOrder,
		"mock_mode", cfg.MockMode,
	)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer pool.Close()

	slog.Info("postgres connected")

	container, err := app.NewGeneratorContainer(ctx, app.ContainerConfig{
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

	workers := cfg.Queue.Workers
	if workers <= 0 {
		workers = defaultConcurrency
	}
	queues := []infraqueue.QueueAllocation{
		{Name: scenarioqueue.QueueDefault, MaxWorkers: workers},
	}

	srv, err := infraqueue.NewServer(ctx, infraqueue.ServerConfig{
		Pool:    pool,
		Queues:  queues,
		Workers: container.Workers,
	})
	if err != nil {
		return fmt.Errorf("queue server: %w", err)
	}

	logQueueSubscription(serviceName, queues)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	slog.Info("generator ready")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	sig := <-shutdown
	slog.Info("shutdown signal received", "signal", sig.String())

	if err := srv.Stop(ctx); err != nil {
		slog.Error("queue server stop error", "error", err)
	}
	slog.Info("queue server stopped")

	slog.Info("service shutdown complete", "name", serviceName)
	return nil
}

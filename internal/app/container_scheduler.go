package app

import (
	"context"
	"fmt"

	"github.com/scenariowizard/worker/internal/adapter/repository/postgres"
	handlerscheduler "github.com/scenariowizard/worker/internal/handler/scheduler"
	infrascheduler "github.com/scenariowizard/worker/internal/infra/scheduler"
	"github.com/scenariowizard/worker/internal/usecase/retention"
)

// SchedulerContainer holds dependencies for the scheduler service.
type SchedulerContainer struct {
	CleanupHandler *handlerscheduler.CleanupHandler
	Scheduler      *infrascheduler.Scheduler
	schedulerLock  *infrascheduler.DistributedLock
}

// NewSchedulerContainer creates and initializes a scheduler container with all
// required dependencies.
func NewSchedulerContainer(ctx context.Context, cfg ContainerConfig) (*SchedulerContainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid container config: %w", err)
	}

	scenarioRepo := postgres.NewScenarioRepository(cfg.Pool)
	cleanupUC := retention.NewCleanupUseCase(scenarioRepo, cfg.Config.Cleanup.RetentionWindow)

	schedulerLock := infrascheduler.NewDistributedLock(cfg.Pool, schedulerLockKey)
	cleanupHandler := handlerscheduler.NewCleanupHandler(cleanupUC, schedulerLock)

	scheduler := infrascheduler.New()

	return &SchedulerContainer{
		CleanupHandler: cleanupHandler,
		Scheduler:      scheduler,
		schedulerLock:  schedulerLock,
	}, nil
}

// Close releases container resources.
func (c *SchedulerContainer) Close() error {
	if c.schedulerLock != nil {
		if err := c.schedulerLock.Close(); err != nil {
			return fmt.Errorf("close scheduler lock: %w", err)
		}
	}
	return nil
}

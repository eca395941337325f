package app

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scenariowizard/worker/internal/infra/config"
)

const schedulerLockKey = "scheduler:error-cleanup:lock"

// ContainerConfig holds shared dependencies for service containers.
type ContainerConfig struct {
	Config *config.Config
	Pool   *pgxpool.Pool
}

func (c ContainerConfig) Validate() error {
	if c.Pool == nil {
		return fmt.Errorf("pool is required")
	}
	if c.Config == nil {
		return fmt.Errorf("config is required")
	}
	return nil
}

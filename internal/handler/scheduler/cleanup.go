package scheduler

import (
	"context"
	"log/slog"
	"time"

	infrascheduler "github.com/scenariowizard/worker/internal/infra/scheduler"
	"github.com/scenariowizard/worker/internal/usecase/retention"
)

const defaultJobTimeout = 5 * time.Minute

// CleanupHandler runs the stale-error cleanup job on a cron schedule.
type CleanupHandler struct {
	lock    *infrascheduler.DistributedLock
	useCase *retention.CleanupUseCase
}

// Pass nil for lock to disable distributed locking (single-instance only).
func NewCleanupHandler(
	useCase *retention.CleanupUseCase,
	lock *infrascheduler.DistributedLock,
) *CleanupHandler {
	return &CleanupHandler{
		lock:    lock,
		useCase: useCase,
	}
}

func (h *CleanupHandler) Run() {
	h.RunWithContext(context.Background())
}

func (h *CleanupHandler) RunWithContext(parentCtx context.Context) {
	ctx, cancel := context.WithTimeout(parentCtx, defaultJobTimeout)
	defer cancel()

	start := time.Now()

	if h.lock != nil {
		acquired, err := h.lock.TryAcquire(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "cleanup lock acquisition failed",
				"error", err,
			)
			return
		}
		if !acquired {
			slog.DebugContext(ctx, "cleanup skipped: another instance is running")
			return
		}

		defer func() {
			if err := h.lock.Release(ctx); err != nil {
				slog.WarnContext(ctx, "cleanup lock release failed", "error", err)
			}
		}()
	}

	slog.InfoContext(ctx, "generation error cleanup started")

	cleared, err := h.useCase.Execute(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "generation error cleanup failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	slog.InfoContext(ctx, "generation error cleanup completed",
		"cleared", cleared,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

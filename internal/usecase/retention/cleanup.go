package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scenariowizard/worker/internal/domain/scenario"
)

// DefaultRetentionWindow is how long generation errors stay visible before the
// cleanup job clears them.
const DefaultRetentionWindow = 60 * time.Minute

// CleanupUseCase clears stale generation errors from persisted records.
// Idempotent: records whose error was already cleared are not touched again.
type CleanupUseCase struct {
	records scenario.Repository
	window  time.Duration
}

// NewCleanupUseCase creates a cleanup use case. A non-positive window falls
// back to the default.
func NewCleanupUseCase(records scenario.Repository, window time.Duration) *CleanupUseCase {
	if window <= 0 {
		window = DefaultRetentionWindow
	}
	return &CleanupUseCase{records: records, window: window}
}

// Execute clears generation errors on records older than the retention window
// and returns the number of records updated.
func (uc *CleanupUseCase) Execute(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-uc.window)

	cleared, err := uc.records.ClearStaleGenerationErrors(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clear stale generation errors: %w", err)
	}

	if cleared > 0 {
		slog.InfoContext(ctx, "stale generation errors cleared",
			"count", cleared,
			"cutoff", cutoff,
		)
	}

	return cleared, nil
}

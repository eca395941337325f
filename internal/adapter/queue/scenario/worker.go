package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	domain "github.com/scenariowizard/worker/internal/domain/scenario"
	"github.com/scenariowizard/worker/internal/usecase/generation"
)

const (
	// Queue names for generation jobs (underscore required - River disallows colons)
	QueueDefault = "scenario_default"

	jobKind          = "scenario:generate"
	maxRetryAttempts = 3
	jobTimeout       = 10 * time.Minute
	initialBackoff   = 10 * time.Second
)

// Args represents the arguments for a scenario generation job. Either
// FeatureIDs or DocumentID selects the generation targets.
type Args struct {
	DocumentID string   `json:"document_id,omitempty" river:"unique"`
	FeatureIDs []string `json:"feature_ids,omitempty" river:"unique"`
	Provider   string   `json:"provider,omitempty"` // preferred provider name
	TestTypes  []string `json:"test_types" river:"unique"`
}

// Kind returns the unique identifier for this job type.
func (Args) Kind() string { return jobKind }

// InsertOpts returns the River insert options for this job type.
func (Args) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueDefault,
		MaxAttempts: maxRetryAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}

// Worker processes scenario generation jobs.
type Worker struct {
	river.WorkerDefaults[Args]
	features domain.FeatureRepository
	manager  *generation.Manager
}

// NewWorker creates a new scenario generation worker.
func NewWorker(manager *generation.Manager, features domain.FeatureRepository) *Worker {
	return &Worker{features: features, manager: manager}
}

// Timeout returns the maximum duration for this job.
func (w *Worker) Timeout(job *river.Job[Args]) time.Duration {
	return jobTimeout
}

// NextRetry returns the next retry time with exponential backoff.
// Backoff: 10s, 40s, 90s (attempt² × 10s)
func (w *Worker) NextRetry(job *river.Job[Args]) time.Time {
	attempt := job.Attempt
	backoff := time.Duration(attempt*attempt) * initialBackoff
	return time.Now().Add(backoff)
}

// Work processes a scenario generation job.
func (w *Worker) Work(ctx context.Context, job *river.Job[Args]) error {
	startTime := time.Now()
	args := job.Args

	req, err := w.buildRequest(args)
	if err != nil {
		slog.WarnContext(ctx, "invalid job arguments, cancelling",
			"job_id", job.ID,
			"error", err,
		)
		return river.JobCancel(err)
	}

	slog.InfoContext(ctx, "processing scenario generation task",
		"job_id", job.ID,
		"document_id", args.DocumentID,
		"feature_count", len(args.FeatureIDs),
		"test_types", args.TestTypes,
		"provider", args.Provider,
		"attempt", job.Attempt,
	)

	features, err := w.resolveFeatures(ctx, req)
	if err != nil {
		return w.handleError(ctx, job, err)
	}

	summary, err := w.manager.GenerateBatch(ctx, features, req.TestTypes, req.Provider)
	if err != nil {
		return w.handleError(ctx, job, err)
	}

	slog.InfoContext(ctx, "scenario generation task completed",
		"job_id", job.ID,
		"document_id", args.DocumentID,
		"records", summary.TotalScenarios,
		"processing_time_ms", summary.ProcessingTimeMs,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return nil
}

// buildRequest validates job args into a domain request.
func (w *Worker) buildRequest(args Args) (domain.GenerationRequest, error) {
	testTypes := make([]domain.TestType, 0, len(args.TestTypes))
	for _, tt := range args.TestTypes {
		testTypes = append(testTypes, domain.TestType(tt))
	}

	req := domain.GenerationRequest{
		DocumentID: args.DocumentID,
		FeatureIDs: args.FeatureIDs,
		Provider:   args.Provider,
		TestTypes:  testTypes,
	}
	if err := req.Validate(); err != nil {
		return domain.GenerationRequest{}, err
	}
	return req, nil
}

// resolveFeatures turns the request's targets into concrete features.
// Explicit feature IDs win over a document reference.
func (w *Worker) resolveFeatures(ctx context.Context, req domain.GenerationRequest) ([]domain.Feature, error) {
	if len(req.FeatureIDs) > 0 {
		return w.features.GetByIDs(ctx, req.FeatureIDs)
	}

	features, err := w.features.ListByDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNoFeatures, req.DocumentID)
	}
	return features, nil
}

func (w *Worker) handleError(ctx context.Context, job *river.Job[Args], err error) error {
	args := job.Args

	if isPermanentError(err) {
		slog.WarnContext(ctx, "permanent error, cancelling job",
			"job_id", job.ID,
			"document_id", args.DocumentID,
			"attempt", job.Attempt,
			"max_attempts", maxRetryAttempts,
			"will_retry", false,
			"error", err,
		)
		return river.JobCancel(err)
	}

	willRetry := job.Attempt < maxRetryAttempts
	slog.ErrorContext(ctx, "scenario generation task failed",
		"job_id", job.ID,
		"document_id", args.DocumentID,
		"attempt", job.Attempt,
		"max_attempts", maxRetryAttempts,
		"will_retry", willRetry,
		"error", err,
	)

	return err
}

func isPermanentError(err error) bool {
	return errors.Is(err, domain.ErrInvalidRequest) ||
		errors.Is(err, domain.ErrFeatureNotFound) ||
		errors.Is(err, domain.ErrNoFeatures)
}

package scenario

import (
	"context"
	"time"
)

// Repository defines the interface for generation record persistence.
type Repository interface {
	// AppendRecord persists one generation outcome record. Called exactly once
	// per requested (feature, test type) pair, success or failure.
	AppendRecord(ctx context.Context, record *GenerationRecord) error

	// GetRecord retrieves a single record with its generation metadata.
	// Returns ErrRecordNotFound if no record exists with the given ID.
	GetRecord(ctx context.Context, id string) (*GenerationRecord, error)

	// ListByFeature retrieves all records for a feature, oldest first.
	ListByFeature(ctx context.Context, featureID string) ([]GenerationRecord, error)

	// Stats aggregates records across the given features. An empty feature
	// list aggregates over all records.
	Stats(ctx context.Context, featureIDs []string) (*GenerationStats, error)

	// ClearStaleGenerationErrors nulls the generation_error field on records
	// created before the cutoff. Idempotent: re-clearing an already-null field
	// is a no-op. Returns the number of records updated.
	ClearStaleGenerationErrors(ctx context.Context, cutoff time.Time) (int64, error)
}

// FeatureRepository resolves generation requests into concrete features.
type FeatureRepository interface {
	// GetByIDs loads features by ID, preserving request order. Returns
	// ErrFeatureNotFound if any ID has no matching feature.
	GetByIDs(ctx context.Context, ids []string) ([]Feature, error)

	// ListByDocument loads every feature parsed from a document.
	ListByDocument(ctx context.Context, documentID string) ([]Feature, error)
}

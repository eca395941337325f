package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scenariowizard/worker/internal/domain/scenario"
)

var _ scenario.FeatureRepository = (*FeatureRepository)(nil)

// FeatureRepository implements scenario.FeatureRepository for PostgreSQL.
type FeatureRepository struct {
	pool *pgxpool.Pool
}

// NewFeatureRepository creates a new FeatureRepository.
func NewFeatureRepository(pool *pgxpool.Pool) *FeatureRepository {
	return &FeatureRepository{pool: pool}
}

const getFeaturesByIDsQuery = `
SELECT id, document_id, title, user_stories, acceptance_criteria
FROM features
WHERE id = ANY($1)
`

// GetByIDs loads features by ID, preserving request order. Returns
// ErrFeatureNotFound if any requested ID has no matching feature.
func (r *FeatureRepository) GetByIDs(ctx context.Context, ids []string) ([]scenario.Feature, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, getFeaturesByIDsQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("get features by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]scenario.Feature, len(ids))
	for rows.Next() {
		var f scenario.Feature
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Title, &f.UserStories, &f.AcceptanceCriteria); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		byID[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}

	features := make([]scenario.Feature, 0, len(ids))
	for _, id := range ids {
		f, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", scenario.ErrFeatureNotFound, id)
		}
		features = append(features, f)
	}

	return features, nil
}

const listFeaturesByDocumentQuery = `
SELECT id, document_id, title, user_stories, acceptance_criteria
FROM features
WHERE document_id = $1
ORDER BY created_at ASC
`

// ListByDocument loads every feature parsed from a document.
func (r *FeatureRepository) ListByDocument(ctx context.Context, documentID string) ([]scenario.Feature, error) {
	rows, err := r.pool.Query(ctx, listFeaturesByDocumentQuery, documentID)
	if err != nil {
		return nil, fmt.Errorf("list features by document: %w", err)
	}
	defer rows.Close()

	var features []scenario.Feature
	for rows.Next() {
		var f scenario.Feature
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Title, &f.UserStories, &f.AcceptanceCriteria); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}

	return features, nil
}

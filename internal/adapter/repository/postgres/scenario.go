package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scenariowizard/worker/internal/domain/scenario"
)

var _ scenario.Repository = (*ScenarioRepository)(nil)

// ScenarioRepository implements scenario.Repository for PostgreSQL.
type ScenarioRepository struct {
	pool *pgxpool.Pool
}

// NewScenarioRepository creates a new ScenarioRepository.
func NewScenarioRepository(pool *pgxpool.Pool) *ScenarioRepository {
	return &ScenarioRepository{pool: pool}
}

const insertScenarioQuery = `
INSERT INTO scenarios (
	id, feature_id, test_type, content,
	generated_by, llm_model, prompt_template,
	generation_error, generation_time_ms,
	token_count, cost_usd, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// AppendRecord persists one generation outcome record.
func (r *ScenarioRepository) AppendRecord(ctx context.Context, record *scenario.GenerationRecord) error {
	if record == nil {
		return errors.New("record is nil")
	}

	tokenCount, err := marshalTokenCount(record.TokenCount)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, insertScenarioQuery,
		record.ID,
		record.FeatureID,
		string(record.TestType),
		record.Content,
		toPgText(record.GeneratedBy),
		toPgText(record.LLMModel),
		record.PromptTemplateID,
		toPgText(record.GenerationError),
		toPgInt8(record.GenerationTimeMs),
		tokenCount,
		record.CostUSD,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scenario record: %w", err)
	}

	return nil
}

const selectScenarioColumns = `
	id, feature_id, test_type, content,
	generated_by, llm_model, prompt_template,
	generation_error, generation_time_ms,
	token_count, cost_usd, created_at
`

const getScenarioQuery = `SELECT` + selectScenarioColumns + `FROM scenarios WHERE id = $1`

// GetRecord retrieves a single record with its generation metadata.
func (r *ScenarioRepository) GetRecord(ctx context.Context, id string) (*scenario.GenerationRecord, error) {
	row := r.pool.QueryRow(ctx, getScenarioQuery, id)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", scenario.ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("get scenario record: %w", err)
	}

	return record, nil
}

const listByFeatureQuery = `SELECT` + selectScenarioColumns + `FROM scenarios WHERE feature_id = $1 ORDER BY created_at ASC`

// ListByFeature retrieves all records for a feature, oldest first.
func (r *ScenarioRepository) ListByFeature(ctx context.Context, featureID string) ([]scenario.GenerationRecord, error) {
	rows, err := r.pool.Query(ctx, listByFeatureQuery, featureID)
	if err != nil {
		return nil, fmt.Errorf("list scenario records: %w", err)
	}
	defer rows.Close()

	var records []scenario.GenerationRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenario records: %w", err)
	}

	return records, nil
}

const statsQuery = `
SELECT test_type, COALESCE(generated_by, ''), COUNT(*),
	COALESCE(SUM(cost_usd), 0),
	COUNT(*) FILTER (WHERE generation_error IS NOT NULL)
FROM scenarios
WHERE cardinality($1::text[]) = 0 OR feature_id = ANY($1)
GROUP BY test_type, generated_by
`

// Stats aggregates records across the given features. An empty feature list
// aggregates over all records.
func (r *ScenarioRepository) Stats(ctx context.Context, featureIDs []string) (*scenario.GenerationStats, error) {
	if featureIDs == nil {
		featureIDs = []string{}
	}

	rows, err := r.pool.Query(ctx, statsQuery, featureIDs)
	if err != nil {
		return nil, fmt.Errorf("aggregate scenario stats: %w", err)
	}
	defer rows.Close()

	stats := &scenario.GenerationStats{
		ByProvider: make(map[string]int),
		ByTestType: make(map[string]int),
	}

	for rows.Next() {
		var (
			testType   string
			provider   string
			count      int
			costUSD    float64
			errorCount int
		)
		if err := rows.Scan(&testType, &provider, &count, &costUSD, &errorCount); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}

		stats.ByTestType[testType] += count
		if provider != "" {
			stats.ByProvider[provider] += count
		}
		stats.ErrorCount += errorCount
		stats.TotalCostUSD += costUSD
		stats.TotalCount += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats rows: %w", err)
	}

	stats.TotalCostUSD = scenario.RoundCost(stats.TotalCostUSD)

	return stats, nil
}

const clearStaleErrorsQuery = `
UPDATE scenarios
SET generation_error = NULL
WHERE generation_error IS NOT NULL AND created_at < $1
`

// ClearStaleGenerationErrors nulls the generation_error field on records
// created before the cutoff. Returns the number of records updated.
func (r *ScenarioRepository) ClearStaleGenerationErrors(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, clearStaleErrorsQuery, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear stale generation errors: %w", err)
	}
	return tag.RowsAffected(), nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*scenario.GenerationRecord, error) {
	var (
		record           scenario.GenerationRecord
		testType         string
		generatedBy      pgtype.Text
		llmModel         pgtype.Text
		generationError  pgtype.Text
		generationTimeMs pgtype.Int8
		tokenCount       []byte
		createdAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&record.ID,
		&record.FeatureID,
		&testType,
		&record.Content,
		&generatedBy,
		&llmModel,
		&record.PromptTemplateID,
		&generationError,
		&generationTimeMs,
		&tokenCount,
		&record.CostUSD,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.TestType = scenario.TestType(testType)
	record.GeneratedBy = fromPgText(generatedBy)
	record.LLMModel = fromPgText(llmModel)
	record.GenerationError = fromPgText(generationError)
	record.GenerationTimeMs = fromPgInt8(generationTimeMs)
	record.CreatedAt = createdAt.Time

	if len(tokenCount) > 0 {
		if err := json.Unmarshal(tokenCount, &record.TokenCount); err != nil {
			return nil, fmt.Errorf("unmarshal token count: %w", err)
		}
	}

	return &record, nil
}

// marshalTokenCount serializes token accounting as JSONB; failure records
// with no accounting store an empty object.
func marshalTokenCount(tc scenario.TokenCount) ([]byte, error) {
	if tc.IsZero() {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(tc)
	if err != nil {
		return nil, fmt.Errorf("marshal token count: %w", err)
	}
	return data, nil
}

func toPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func fromPgText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func toPgInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func fromPgInt8(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/scenariowizard/worker/internal/adapter/llm/reliability"
	"github.com/scenariowizard/worker/internal/domain/scenario"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
	defaultCallTimeout = 120 * time.Second

	healthCheckConcurrency = 4
)

// TemplateSource resolves a test type into a prompt template.
type TemplateSource interface {
	Get(testType scenario.TestType) (scenario.PromptTemplate, error)
}

// Config holds generation parameters for the manager.
type Config struct {
	CallTimeout time.Duration
	MaxTokens   int
	Retry       reliability.RetryConfig
	Temperature float64
}

func defaultConfig() Config {
	return Config{
		CallTimeout: defaultCallTimeout,
		MaxTokens:   defaultMaxTokens,
		Retry:       reliability.DefaultGenerationRetryConfig(),
		Temperature: defaultTemperature,
	}
}

// Option customizes manager construction.
type Option func(*Config)

// WithCallTimeout sets the per-provider-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.CallTimeout = d
		}
	}
}

// WithGenerationParams overrides the sampling parameters.
func WithGenerationParams(temperature float64, maxTokens int) Option {
	return func(c *Config) {
		c.Temperature = temperature
		if maxTokens > 0 {
			c.MaxTokens = maxTokens
		}
	}
}

// WithRetryConfig overrides the per-provider retry policy.
func WithRetryConfig(rc reliability.RetryConfig) Option {
	return func(c *Config) {
		c.Retry = rc
	}
}

// Manager orchestrates scenario generation: it resolves prompt templates,
// runs the provider fallback chain with bounded retries, normalizes usage
// metadata, and persists exactly one record per (feature, test type) pair.
type Manager struct {
	config    Config
	providers map[string]scenario.Provider
	order     []string // registration order, used when no preference is given
	records   scenario.Repository
	retryer   *reliability.Retryer
	templates TemplateSource
}

// NewManager creates a generation manager. At least one provider is required.
func NewManager(
	providers []scenario.Provider,
	templates TemplateSource,
	records scenario.Repository,
	opts ...Option,
) (*Manager, error) {
	if len(providers) == 0 {
		return nil, scenario.ErrNoProviders
	}

	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	byName := make(map[string]scenario.Provider, len(providers))
	order := make([]string, 0, len(providers))
	for _, p := range providers {
		if _, dup := byName[p.Name()]; dup {
			continue
		}
		byName[p.Name()] = p
		order = append(order, p.Name())
	}

	return &Manager{
		config:    config,
		providers: byName,
		order:     order,
		records:   records,
		retryer:   reliability.NewRetryer(config.Retry),
		templates: templates,
	}, nil
}

// candidateOrder builds the fallback chain: the preferred provider first if it
// is registered, then the remaining providers in registration order. An
// unregistered preference is skipped, not an error.
func (m *Manager) candidateOrder(preferred string) []string {
	candidates := make([]string, 0, len(m.order))
	if _, ok := m.providers[preferred]; ok {
		candidates = append(candidates, preferred)
	}
	for _, name := range m.order {
		if name != preferred {
			candidates = append(candidates, name)
		}
	}
	return candidates
}

// GenerateWithFallback runs the fallback chain for one (feature, test type)
// pair. Each candidate provider gets up to the configured retry attempts; the
// first success wins and remaining candidates are never called. When every
// candidate is exhausted the outcome carries the last error and the ordered
// attempt list. Caller cancellation stops the chain without trying further
// candidates.
func (m *Manager) GenerateWithFallback(
	ctx context.Context,
	feature scenario.Feature,
	testType scenario.TestType,
	template scenario.PromptTemplate,
	preferred string,
) scenario.GenerationOutcome {
	params := scenario.GenerationParams{
		MaxTokens:   m.config.MaxTokens,
		Temperature: m.config.Temperature,
	}

	var (
		attempted []string
		lastErr   error
	)

	for _, name := range m.candidateOrder(preferred) {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		provider := m.providers[name]
		attempted = append(attempted, name)

		var resp *scenario.ProviderResponse
		err := m.retryer.Do(ctx, func() error {
			callCtx, cancel := context.WithTimeout(ctx, m.config.CallTimeout)
			defer cancel()

			var callErr error
			resp, callErr = provider.GenerateScenario(callCtx, template, feature, testType, params)
			if callErr != nil && ctx.Err() == nil && errors.Is(callErr, context.DeadlineExceeded) {
				// The per-call deadline fired while the caller is still
				// waiting: a slow provider, retried like any other timeout.
				return &reliability.RetryableError{Err: callErr}
			}
			return callErr
		})
		if err == nil {
			slog.InfoContext(ctx, "scenario generated",
				"provider", name,
				"feature_id", feature.ID,
				"test_type", testType,
				"tokens", resp.TotalTokens,
				"cost_usd", resp.CostUSD,
			)
			return scenario.Success(*resp)
		}

		lastErr = err
		slog.WarnContext(ctx, "provider exhausted, falling back",
			"provider", name,
			"feature_id", feature.ID,
			"test_type", testType,
			"error", err,
		)

		if errors.Is(err, scenario.ErrTemplateFormat) {
			// Template bugs fail identically on every provider.
			break
		}
		if errors.Is(err, context.Canceled) || (ctx.Err() != nil && errors.Is(err, context.DeadlineExceeded)) {
			break
		}
	}

	if lastErr == nil {
		lastErr = scenario.ErrAllProvidersFailed
	}
	return scenario.Failure(lastErr.Error(), attempted)
}

// GenerateBatch generates scenarios for every (feature, test type) pair and
// persists one record per pair, success or failure. Pairs are processed
// sequentially; a per-pair generation failure is recorded and the batch
// continues, while a storage failure aborts the batch. On caller cancellation
// the summary covers the records written so far and the context error is
// returned alongside it.
func (m *Manager) GenerateBatch(
	ctx context.Context,
	features []scenario.Feature,
	testTypes []scenario.TestType,
	preferred string,
) (*scenario.GenerationSummary, error) {
	if len(features) == 0 {
		return nil, scenario.ErrNoFeatures
	}
	if len(testTypes) == 0 {
		return nil, fmt.Errorf("%w: at least one test type is required", scenario.ErrInvalidRequest)
	}
	for _, tt := range testTypes {
		if !tt.IsValid() {
			return nil, fmt.Errorf("%w: unsupported test type: %s", scenario.ErrInvalidRequest, tt)
		}
	}

	batchStart := time.Now()
	summary := &scenario.GenerationSummary{}

	for _, feature := range features {
		for _, testType := range testTypes {
			if err := ctx.Err(); err != nil {
				summary.ProcessingTimeMs = time.Since(batchStart).Milliseconds()
				return summary, err
			}

			record, err := m.generateOne(ctx, feature, testType, preferred)
			if err != nil {
				summary.ProcessingTimeMs = time.Since(batchStart).Milliseconds()
				return summary, err
			}

			summary.RecordIDs = append(summary.RecordIDs, record.ID)
			summary.TotalScenarios++
		}
	}

	summary.ProcessingTimeMs = time.Since(batchStart).Milliseconds()

	slog.InfoContext(ctx, "generation batch complete",
		"features", len(features),
		"test_types", len(testTypes),
		"records", summary.TotalScenarios,
		"processing_time_ms", summary.ProcessingTimeMs,
	)

	return summary, nil
}

// generateOne runs the fallback chain for a single pair and persists the
// outcome. Only storage errors are returned; generation failures become
// failure records.
func (m *Manager) generateOne(
	ctx context.Context,
	feature scenario.Feature,
	testType scenario.TestType,
	preferred string,
) (*scenario.GenerationRecord, error) {
	pairStart := time.Now()

	var outcome scenario.GenerationOutcome
	template, err := m.templates.Get(testType)
	if err != nil {
		// The record still names the template slot that was looked up.
		template.ID = string(testType) + "_default"
		outcome = scenario.Failure(err.Error(), nil)
	} else {
		outcome = m.GenerateWithFallback(ctx, feature, testType, template, preferred)
	}

	metadata := scenario.MetadataFromOutcome(outcome, preferred, template.ID, time.Since(pairStart))
	record := buildRecord(feature, testType, outcome, metadata)

	if err := m.records.AppendRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist generation record: %w", err)
	}

	return record, nil
}

// buildRecord assembles the persisted record from an outcome. Attribution
// fields (GeneratedBy, LLMModel) are set only on success; failure records
// carry the error message, placeholder content, and the elapsed time spent
// attempting the pair.
func buildRecord(
	feature scenario.Feature,
	testType scenario.TestType,
	outcome scenario.GenerationOutcome,
	metadata scenario.OutcomeMetadata,
) *scenario.GenerationRecord {
	timeMs := metadata.GenerationTimeMs
	record := &scenario.GenerationRecord{
		CostUSD:          metadata.CostUSD,
		CreatedAt:        time.Now().UTC(),
		FeatureID:        feature.ID,
		GenerationTimeMs: &timeMs,
		ID:               uuid.NewString(),
		PromptTemplateID: metadata.PromptTemplateID,
		TestType:         testType,
		TokenCount:       metadata.TokenCount,
	}

	if outcome.Succeeded() {
		record.Content = outcome.Response.Content
		record.GeneratedBy = &metadata.Provider
		record.LLMModel = &metadata.Model
		return record
	}

	errMsg := outcome.ErrorMessage
	record.Content = fmt.Sprintf("# Error generating %s scenarios\n# Error: %s", testType, errMsg)
	record.GenerationError = &errMsg
	return record
}

// Stats aggregates persisted outcome records across the given features. An
// empty feature list aggregates over everything.
func (m *Manager) Stats(ctx context.Context, featureIDs []string) (*scenario.GenerationStats, error) {
	stats, err := m.records.Stats(ctx, featureIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate generation stats: %w", err)
	}
	return stats, nil
}

// HealthCheckAll probes every registered provider concurrently, bounded by a
// small semaphore so a batch of slow vendors does not fan out unbounded.
func (m *Manager) HealthCheckAll(ctx context.Context) map[string]bool {
	sem := semaphore.NewWeighted(healthCheckConcurrency)
	results := make(map[string]bool, len(m.providers))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for name, provider := range m.providers {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			results[name] = false
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(name string, provider scenario.Provider) {
			defer wg.Done()
			defer sem.Release(1)

			healthy := provider.HealthCheck(ctx)

			mu.Lock()
			results[name] = healthy
			mu.Unlock()
		}(name, provider)
	}

	wg.Wait()
	return results
}

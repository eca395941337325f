package scenario

import "context"

// Provider defines the interface for an external LLM service that can turn a
// feature description into test-scenario text.
type Provider interface {
	// Name returns the registered provider name used for fallback ordering
	// and record attribution.
	Name() string

	// Model returns the model identifier for tracking purposes.
	Model() string

	// GenerateScenario formats the template with feature data, calls the
	// vendor API, and normalizes the reply into a ProviderResponse. Returns
	// ErrTemplateFormat if the template is missing a required placeholder
	// (never retried) or a ProviderError on transport/API failure.
	GenerateScenario(ctx context.Context, template PromptTemplate, feature Feature, testType TestType, params GenerationParams) (*ProviderResponse, error)

	// HealthCheck probes the vendor API with a minimal request. Non-throwing:
	// returns false on any failure.
	HealthCheck(ctx context.Context) bool
}

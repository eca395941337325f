package scenario

import (
	"fmt"
	"time"
)

// TestType represents the category of test scenarios to generate.
type TestType string

const (
	TestTypeUnit        TestType = "unit"
	TestTypeIntegration TestType = "integration"
	TestTypeE2E         TestType = "e2e"
)

// IsValid checks if the test type is one of the supported values.
func (t TestType) IsValid() bool {
	switch t {
	case TestTypeUnit, TestTypeIntegration, TestTypeE2E:
		return true
	default:
		return false
	}
}

// Feature is a parsed feature description used as generation input.
type Feature struct {
	AcceptanceCriteria string
	DocumentID         string
	ID                 string
	Title              string
	UserStories        string
}

// GenerationRequest represents a request to generate scenarios for a set of
// features. Either FeatureIDs or DocumentID must be set; DocumentID resolution
// into features happens before the request reaches the orchestrator.
type GenerationRequest struct {
	DocumentID string
	FeatureIDs []string
	Provider   string // optional: preferred provider name
	TestTypes  []TestType
}

func (r GenerationRequest) Validate() error {
	if len(r.FeatureIDs) == 0 && r.DocumentID == "" {
		return fmt.Errorf("%w: feature IDs or document ID is required", ErrInvalidRequest)
	}
	if len(r.TestTypes) == 0 {
		return fmt.Errorf("%w: at least one test type is required", ErrInvalidRequest)
	}
	for _, tt := range r.TestTypes {
		if !tt.IsValid() {
			return fmt.Errorf("%w: unsupported test type: %s", ErrInvalidRequest, tt)
		}
	}
	return nil
}

// PromptTemplate is a parameterized prompt body. Immutable once fetched for a
// generation call.
type PromptTemplate struct {
	Body string
	ID   string
}

// GenerationParams are the sampling parameters passed to a provider call.
type GenerationParams struct {
	MaxTokens   int
	Temperature float64
}

// TokenCount holds the token accounting for one provider reply.
type TokenCount struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// IsZero reports whether no tokens were accounted (failure outcomes).
func (tc TokenCount) IsZero() bool {
	return tc.Input == 0 && tc.Output == 0 && tc.Total == 0
}

// ProviderResponse is the normalized reply from any provider variant. Vendor
// wire shapes never leave the provider adapter boundary.
type ProviderResponse struct {
	Content          string
	CostUSD          float64 // rounded to 6 decimal places
	GenerationTimeMs int64
	InputTokens      int
	Model            string
	OutputTokens     int
	Provider         string
	TotalTokens      int
}

// GenerationOutcome is the result of one fallback chain run for one
// (feature, test type) pair: either a normalized response or the last error
// with the ordered list of providers that were attempted.
type GenerationOutcome struct {
	AttemptedProviders []string
	ErrorMessage       string
	Response           *ProviderResponse
}

// Success wraps a provider response into a successful outcome.
func Success(resp ProviderResponse) GenerationOutcome {
	return GenerationOutcome{Response: &resp}
}

// Failure records the last error after every candidate provider was exhausted.
func Failure(errorMessage string, attemptedProviders []string) GenerationOutcome {
	return GenerationOutcome{
		AttemptedProviders: attemptedProviders,
		ErrorMessage:       errorMessage,
	}
}

// Succeeded reports whether the outcome carries a response.
func (o GenerationOutcome) Succeeded() bool {
	return o.Response != nil
}

// GenerationRecord is the persisted outcome of one generation attempt for one
// (feature, test type) pair. Exactly one record exists per requested pair,
// success or failure. GeneratedBy and LLMModel are set iff GenerationError is
// unset.
type GenerationRecord struct {
	Content          string
	CostUSD          float64
	CreatedAt        time.Time
	FeatureID        string
	GeneratedBy      *string
	GenerationError  *string
	GenerationTimeMs *int64
	ID               string
	LLMModel         *string
	PromptTemplateID string
	TestType         TestType
	TokenCount       TokenCount
}

// GenerationSummary is the batch-level result. Summary success does not imply
// every record succeeded; callers inspect records for per-item failures.
type GenerationSummary struct {
	ProcessingTimeMs int64
	RecordIDs        []string
	TotalScenarios   int
}

// GenerationStats aggregates persisted records across features.
type GenerationStats struct {
	ByProvider   map[string]int
	ByTestType   map[string]int
	ErrorCount   int
	TotalCostUSD float64
	TotalCount   int
}

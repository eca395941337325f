package mock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scenariowizard/worker/internal/adapter/llm/prompt"
	"github.com/scenariowizard/worker/internal/domain/scenario"
)

const (
	// ProviderName is the registered name used for fallback ordering and
	// record attribution.
	ProviderName = "mock"

	mockModel = "mock-scenario-v1"

	// Fixed per-character ratio so token accounting stays deterministic.
	charsPerToken = 4
)

// Provider implements scenario.Provider with deterministic mock responses.
// Intended for local development and testing without LLM API calls.
type Provider struct{}

// NewProvider creates a new mock provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// Model returns the model identifier for tracking purposes.
func (p *Provider) Model() string { return mockModel }

// GenerateScenario returns a deterministic scenario document derived from the
// feature fields. The prompt is still formatted so template bugs surface in
// mock mode too.
func (p *Provider) GenerateScenario(
	ctx context.Context,
	template scenario.PromptTemplate,
	feature scenario.Feature,
	testType scenario.TestType,
	params scenario.GenerationParams,
) (*scenario.ProviderResponse, error) {
	startTime := time.Now()

	formatted, err := prompt.Format(template, feature, testType)
	if err != nil {
		return nil, err
	}

	content := generateScenarioText(feature, testType)

	inputTokens := len(formatted) / charsPerToken
	outputTokens := len(content) / charsPerToken

	return &scenario.ProviderResponse{
		Content:          content,
		CostUSD:          0,
		GenerationTimeMs: time.Since(startTime).Milliseconds(),
		InputTokens:      inputTokens,
		Model:            mockModel,
		OutputTokens:     outputTokens,
		Provider:         ProviderName,
		TotalTokens:      inputTokens + outputTokens,
	}, nil
}

// HealthCheck always succeeds for the mock provider.
func (p *Provider) HealthCheck(ctx context.Context) bool {
	return true
}

// generateScenarioText builds a markdown scenario document from feature data.
func generateScenarioText(feature scenario.Feature, testType scenario.TestType) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Test Scenarios: %s\n\n", titleCase(string(testType)), feature.Title)
	b.WriteString("## Scenario 1: Happy Path\n")
	fmt.Fprintf(&b, "[Mock] Verifies the primary flow of %s.\n\n", feature.Title)

	for i, criterion := range splitLines(feature.AcceptanceCriteria) {
		fmt.Fprintf(&b, "## Scenario %d: %s\n", i+2, criterion)
		fmt.Fprintf(&b, "[Mock] Verifies that %s.\n\n", strings.ToLower(criterion))
	}

	b.WriteString("## Scenario: Error Handling\n")
	fmt.Fprintf(&b, "[Mock] Verifies graceful failure when %s inputs are invalid.\n", feature.Title)

	return b.String()
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	if s == string(scenario.TestTypeE2E) {
		return "E2E"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

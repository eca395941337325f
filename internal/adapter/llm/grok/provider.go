package grok

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/scenariowizard/worker/internal/adapter/llm/prompt"
	"github.com/scenariowizard/worker/internal/adapter/llm/reliability"
	"github.com/scenariowizard/worker/internal/domain/scenario"
)

const (
	// ProviderName is the registered name used for fallback ordering and
	// record attribution.
	ProviderName = "grok"

	defaultBaseURL = "https://api.x.ai/v1"
	defaultModel   = "grok-4"

	// Per-token pricing in USD.
	inputCostPerToken  = 0.00001
	outputCostPerToken = 0.00003

	healthCheckMaxTokens = 10
)

// Config holds configuration for the Grok provider.
type Config struct {
	APIKey  string
	BaseURL string        // defaults to the xAI endpoint
	Model   string        // defaults to grok-4
	Timeout time.Duration // per-request HTTP timeout
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("grok API key is required")
	}
	return nil
}

// Provider implements scenario.Provider against the xAI API. The wire protocol
// is OpenAI-compatible: choices[0].message.content plus a flat usage object
// with prompt/completion/total token counts.
type Provider struct {
	client      *openai.Client
	model       string
	rateLimiter *reliability.RateLimiter
}

// NewProvider creates a new Grok provider.
func NewProvider(config Config, rateLimiter *reliability.RateLimiter) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = baseURL
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &Provider{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		rateLimiter: rateLimiter,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// Model returns the model identifier for tracking purposes.
func (p *Provider) Model() string { return p.model }

// GenerateScenario formats the prompt and calls the chat completions API,
// normalizing the reply into a ProviderResponse.
func (p *Provider) GenerateScenario(
	ctx context.Context,
	template scenario.PromptTemplate,
	feature scenario.Feature,
	testType scenario.TestType,
	params scenario.GenerationParams,
) (*scenario.ProviderResponse, error) {
	formatted, err := prompt.Format(template, feature, testType)
	if err != nil {
		return nil, err
	}

	if p.rateLimiter != nil {
		if err := p.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	startTime := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: formatted},
		},
		Temperature: float32(params.Temperature),
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		slog.WarnContext(ctx, "grok API call failed",
			"model", p.model,
			"feature_id", feature.ID,
			"error", err,
		)
		return nil, p.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &scenario.ProviderError{
			Provider: ProviderName,
			Err:      errors.New("empty response: no choices returned"),
		}
	}

	inputTokens := resp.Usage.PromptTokens
	outputTokens := resp.Usage.CompletionTokens
	totalTokens := resp.Usage.TotalTokens
	if totalTokens == 0 {
		totalTokens = inputTokens + outputTokens
	}

	return &scenario.ProviderResponse{
		Content:          resp.Choices[0].Message.Content,
		CostUSD:          scenario.RoundCost(float64(inputTokens)*inputCostPerToken + float64(outputTokens)*outputCostPerToken),
		GenerationTimeMs: time.Since(startTime).Milliseconds(),
		InputTokens:      inputTokens,
		Model:            p.model,
		OutputTokens:     outputTokens,
		Provider:         ProviderName,
		TotalTokens:      totalTokens,
	}, nil
}

// HealthCheck probes the API with a minimal completion. Non-throwing.
func (p *Provider) HealthCheck(ctx context.Context) bool {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Hello"},
		},
		MaxTokens: healthCheckMaxTokens,
	})
	if err != nil {
		slog.WarnContext(ctx, "grok health check failed", "error", err)
		return false
	}
	return len(resp.Choices) > 0
}

// wrapError converts SDK errors into the domain taxonomy, marking transient
// failures as retryable.
func (p *Provider) wrapError(err error) error {
	statusCode := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		statusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		statusCode = reqErr.HTTPStatusCode
	}

	providerErr := &scenario.ProviderError{
		Provider:   ProviderName,
		StatusCode: statusCode,
		Err:        err,
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return providerErr
	}
	if statusCode == 0 || reliability.IsRetryableStatusCode(statusCode) {
		// Transport failures without a status are treated as transient.
		return &reliability.RetryableError{Err: providerErr}
	}
	return providerErr
}

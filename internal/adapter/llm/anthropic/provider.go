package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/scenariowizard/worker/internal/adapter/llm/prompt"
	"github.com/scenariowizard/worker/internal/adapter/llm/reliability"
	"github.com/scenariowizard/worker/internal/domain/scenario"
)

const (
	// ProviderName is the registered name used for fallback ordering and
	// record attribution.
	ProviderName = "claude"

	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-opus-20240229"
	apiVersion     = "2023-06-01"

	// Per-token pricing in USD.
	inputCostPerToken  = 0.000015
	outputCostPerToken = 0.000075

	healthCheckMaxTokens = 10
	defaultTimeout       = 120 * time.Second
)

// Config holds configuration for the Anthropic provider.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("anthropic API key is required")
	}
	return nil
}

// Provider implements scenario.Provider against the Anthropic messages API.
// The wire protocol nests content[0].text plus a usage object with
// input_tokens/output_tokens fields; both are normalized into the common
// ProviderResponse shape before leaving this package.
type Provider struct {
	apiKey      string
	baseURL     string
	client      *http.Client
	model       string
	rateLimiter *reliability.RateLimiter
}

// NewProvider creates a new Anthropic provider.
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
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Provider{
		apiKey:      config.APIKey,
		baseURL:     baseURL,
		client:      &http.Client{Timeout: timeout},
		model:       model,
		rateLimiter: rateLimiter,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// Model returns the model identifier for tracking purposes.
func (p *Provider) Model() string { return p.model }

type messageRequest struct {
	MaxTokens   int       `json:"max_tokens"`
	Messages    []message `json:"messages"`
	Model       string    `json:"model"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
	Usage   usage          `json:"usage"`
}

type contentBlock struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// GenerateScenario formats the prompt and calls the messages API, normalizing
// the reply into a ProviderResponse.
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

	temperature := params.Temperature
	resp, err := p.createMessage(ctx, messageRequest{
		MaxTokens:   params.MaxTokens,
		Messages:    []message{{Content: formatted, Role: "user"}},
		Model:       p.model,
		Temperature: &temperature,
	})
	if err != nil {
		slog.WarnContext(ctx, "anthropic API call failed",
			"model", p.model,
			"feature_id", feature.ID,
			"error", err,
		)
		return nil, err
	}

	content := ""
	if len(resp.Content) > 0 {
		content = resp.Content[0].Text
	}

	inputTokens := resp.Usage.InputTokens
	outputTokens := resp.Usage.OutputTokens

	return &scenario.ProviderResponse{
		Content:          content,
		CostUSD:          scenario.RoundCost(float64(inputTokens)*inputCostPerToken + float64(outputTokens)*outputCostPerToken),
		GenerationTimeMs: time.Since(startTime).Milliseconds(),
		InputTokens:      inputTokens,
		Model:            p.model,
		OutputTokens:     outputTokens,
		Provider:         ProviderName,
		TotalTokens:      inputTokens + outputTokens,
	}, nil
}

// HealthCheck probes the API with a minimal message. Non-throwing.
func (p *Provider) HealthCheck(ctx context.Context) bool {
	resp, err := p.createMessage(ctx, messageRequest{
		MaxTokens: healthCheckMaxTokens,
		Messages:  []message{{Content: "Hello", Role: "user"}},
		Model:     p.model,
	})
	if err != nil {
		slog.WarnContext(ctx, "anthropic health check failed", "error", err)
		return false
	}
	return len(resp.Content) > 0
}

func (p *Provider) createMessage(ctx context.Context, reqBody messageRequest) (*messageResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &scenario.ProviderError{
			Provider: ProviderName,
			Err:      fmt.Errorf("marshal request: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, &scenario.ProviderError{
			Provider: ProviderName,
			Err:      fmt.Errorf("create request: %w", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		providerErr := &scenario.ProviderError{Provider: ProviderName, Err: err}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, providerErr
		}
		// Transport failure without a status: treat as transient.
		return nil, &reliability.RetryableError{Err: providerErr}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &reliability.RetryableError{Err: &scenario.ProviderError{
			Provider: ProviderName,
			Err:      fmt.Errorf("read response: %w", err),
		}}
	}

	if resp.StatusCode != http.StatusOK {
		providerErr := &scenario.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API error: %s", truncate(string(body), 200)),
		}
		if reliability.IsRetryableStatusCode(resp.StatusCode) {
			return nil, &reliability.RetryableError{Err: providerErr}
		}
		return nil, providerErr
	}

	var result messageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &scenario.ProviderError{
			Provider: ProviderName,
			Err:      fmt.Errorf("decode response: %w", err),
		}
	}

	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

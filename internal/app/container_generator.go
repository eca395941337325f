package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/scenariowizard/worker/internal/adapter/llm/anthropic"
	"github.com/scenariowizard/worker/internal/adapter/llm/grok"
	"github.com/scenariowizard/worker/internal/adapter/llm/mock"
	"github.com/scenariowizard/worker/internal/adapter/llm/prompt"
	"github.com/scenariowizard/worker/internal/adapter/llm/reliability"
	scenarioqueue "github.com/scenariowizard/worker/internal/adapter/queue/scenario"
	"github.com/scenariowizard/worker/internal/adapter/repository/postgres"
	domain "github.com/scenariowizard/worker/internal/domain/scenario"
	"github.com/scenariowizard/worker/internal/infra/config"
	infraqueue "github.com/scenariowizard/worker/internal/infra/queue"
	"github.com/scenariowizard/worker/internal/usecase/generation"
)

// GeneratorContainer holds dependencies for the generator worker service.
type GeneratorContainer struct {
	Manager     *generation.Manager
	QueueClient *infraqueue.Client
	Registry    *prompt.Registry
	Worker      *scenarioqueue.Worker
	Workers     *river.Workers
}

// NewGeneratorContainer creates and initializes a generator container with all
// required dependencies.
func NewGeneratorContainer(ctx context.Context, cfg ContainerConfig) (*GeneratorContainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid container config: %w", err)
	}

	providers, err := buildProviders(cfg.Config)
	if err != nil {
		return nil, err
	}

	registry := prompt.NewRegistry()
	scenarioRepo := postgres.NewScenarioRepository(cfg.Pool)
	featureRepo := postgres.NewFeatureRepository(cfg.Pool)

	manager, err := generation.NewManager(providers, registry, scenarioRepo,
		generation.WithCallTimeout(cfg.Config.Generation.CallTimeout),
		generation.WithGenerationParams(cfg.Config.Generation.Temperature, cfg.Config.Generation.MaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation manager: %w", err)
	}

	worker := scenarioqueue.NewWorker(manager, featureRepo)

	workers := river.NewWorkers()
	river.AddWorker(workers, worker)

	queueClient, err := infraqueue.NewClient(ctx, cfg.Pool)
	if err != nil {
		return nil, fmt.Errorf("create queue client: %w", err)
	}

	return &GeneratorContainer{
		Manager:     manager,
		QueueClient: queueClient,
		Registry:    registry,
		Worker:      worker,
		Workers:     workers,
	}, nil
}

// buildProviders assembles the provider chain in configured preference order.
// Mock mode replaces the whole chain with the deterministic mock provider.
func buildProviders(cfg *config.Config) ([]domain.Provider, error) {
	if cfg.MockMode {
		slog.Info("mock mode enabled, using mock LLM provider")
		return []domain.Provider{mock.NewProvider()}, nil
	}

	// Shared across adapters so fallback traffic counts against one budget.
	rateLimiter := reliability.NewRateLimiter(cfg.Generation.RateLimitRPS, 0)

	var providers []domain.Provider
	for _, name := range cfg.ProviderOrder {
		switch name {
		case grok.ProviderName:
			p, err := grok.NewProvider(grok.Config{
				APIKey:  cfg.Grok.APIKey,
				BaseURL: cfg.Grok.BaseURL,
				Model:   cfg.Grok.Model,
				Timeout: cfg.Generation.CallTimeout,
			}, rateLimiter)
			if err != nil {
				return nil, fmt.Errorf("create grok provider: %w", err)
			}
			providers = append(providers, p)
		case anthropic.ProviderName:
			p, err := anthropic.NewProvider(anthropic.Config{
				APIKey:  cfg.Anthropic.APIKey,
				BaseURL: cfg.Anthropic.BaseURL,
				Model:   cfg.Anthropic.Model,
				Timeout: cfg.Generation.CallTimeout,
			}, rateLimiter)
			if err != nil {
				return nil, fmt.Errorf("create anthropic provider: %w", err)
			}
			providers = append(providers, p)
		}
	}

	if len(providers) == 0 {
		return nil, domain.ErrNoProviders
	}

	return providers, nil
}

// Close releases container resources.
func (c *GeneratorContainer) Close() error {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			return fmt.Errorf("close queue client: %w", err)
		}
	}
	return nil
}

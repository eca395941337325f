package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultProviderOrder   = "grok,claude"
	defaultTemperature     = 0.7
	defaultMaxTokens       = 1000
	defaultCallTimeout     = 120 * time.Second
	defaultRateLimitRPS    = 1.0
	defaultQueueWorkers    = 5
	defaultCleanupSchedule = "*/15 * * * *"
	defaultRetentionWindow = 60 * time.Minute
)

// ProviderConfig holds credentials and overrides for one LLM vendor.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Configured reports whether the provider has credentials.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// GenerationConfig holds sampling and timeout parameters.
type GenerationConfig struct {
	CallTimeout  time.Duration
	MaxTokens    int
	RateLimitRPS float64
	Temperature  float64
}

// QueueConfig holds job queue sizing.
type QueueConfig struct {
	Workers int
}

// CleanupConfig holds the error-retention cleanup job settings.
type CleanupConfig struct {
	RetentionWindow time.Duration
	Schedule        string
}

type Config struct {
	Anthropic     ProviderConfig
	Cleanup       CleanupConfig
	DatabaseURL   string
	Generation    GenerationConfig
	Grok          ProviderConfig
	MockMode      bool
	ProviderOrder []string
	Queue         QueueConfig
}

// Load reads configuration from the environment. At least one provider must
// have credentials unless MOCK_MODE is enabled.
func Load() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	cfg := &Config{
		DatabaseURL: databaseURL,
		MockMode:    envBool("MOCK_MODE", false),
		Grok: ProviderConfig{
			APIKey:  os.Getenv("GROK_API_KEY"),
			BaseURL: os.Getenv("GROK_BASE_URL"),
			Model:   os.Getenv("GROK_MODEL"),
		},
		Anthropic: ProviderConfig{
			APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
			Model:   os.Getenv("ANTHROPIC_MODEL"),
		},
		Generation: GenerationConfig{
			CallTimeout:  envDuration("CALL_TIMEOUT", defaultCallTimeout),
			MaxTokens:    envInt("MAX_TOKENS", defaultMaxTokens),
			RateLimitRPS: envFloat("RATE_LIMIT_RPS", defaultRateLimitRPS),
			Temperature:  envFloat("TEMPERATURE", defaultTemperature),
		},
		Queue: QueueConfig{
			Workers: envInt("QUEUE_WORKERS", defaultQueueWorkers),
		},
		Cleanup: CleanupConfig{
			RetentionWindow: envDuration("RETENTION_WINDOW", defaultRetentionWindow),
			Schedule:        envString("CLEANUP_SCHEDULE", defaultCleanupSchedule),
		},
	}

	cfg.ProviderOrder = parseProviderOrder(envString("PROVIDER_ORDER", defaultProviderOrder), cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadScheduler reads the subset of configuration the scheduler service
// needs. Provider credentials are not required.
func LoadScheduler() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	return &Config{
		DatabaseURL: databaseURL,
		Cleanup: CleanupConfig{
			RetentionWindow: envDuration("RETENTION_WINDOW", defaultRetentionWindow),
			Schedule:        envString("CLEANUP_SCHEDULE", defaultCleanupSchedule),
		},
	}, nil
}

func (c *Config) validate() error {
	if c.MockMode {
		return nil
	}
	if !c.Grok.Configured() && !c.Anthropic.Configured() {
		return errors.New("at least one of GROK_API_KEY or ANTHROPIC_API_KEY is required (or set MOCK_MODE=true)")
	}
	if len(c.ProviderOrder) == 0 {
		return errors.New("PROVIDER_ORDER names no configured provider")
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("TEMPERATURE must be between 0 and 2, got %v", c.Generation.Temperature)
	}
	return nil
}

// parseProviderOrder keeps only names with credentials behind them, preserving
// the configured preference order.
func parseProviderOrder(raw string, cfg *Config) []string {
	var order []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		switch name {
		case "grok":
			if cfg.MockMode || cfg.Grok.Configured() {
				order = append(order, name)
			}
		case "claude":
			if cfg.MockMode || cfg.Anthropic.Configured() {
				order = append(order, name)
			}
		}
	}
	return order
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

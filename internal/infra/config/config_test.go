package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "MOCK_MODE",
		"GROK_API_KEY", "GROK_BASE_URL", "GROK_MODEL",
		"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "ANTHROPIC_MODEL",
		"PROVIDER_ORDER", "CALL_TIMEOUT", "MAX_TOKENS", "RATE_LIMIT_RPS",
		"TEMPERATURE", "QUEUE_WORKERS", "CLEANUP_SCHEDULE", "RETENTION_WINDOW",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestLoad_RequiresProviderKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	_, err := Load()
	if err == nil {
		t.Error("expected error when no provider has credentials")
	}
}

func TestLoad_MockModeSkipsKeyRequirement(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("MOCK_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.MockMode {
		t.Error("expected mock mode enabled")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("GROK_API_KEY", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Generation.Temperature != 0.7 {
		t.Errorf("expected default temperature 0.7, got %v", cfg.Generation.Temperature)
	}
	if cfg.Generation.MaxTokens != 1000 {
		t.Errorf("expected default max tokens 1000, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Generation.CallTimeout != 120*time.Second {
		t.Errorf("expected default call timeout 120s, got %v", cfg.Generation.CallTimeout)
	}
	if cfg.Queue.Workers != 5 {
		t.Errorf("expected default 5 queue workers, got %d", cfg.Queue.Workers)
	}
	if cfg.Cleanup.Schedule != "*/15 * * * *" {
		t.Errorf("unexpected default cleanup schedule: %s", cfg.Cleanup.Schedule)
	}
	if cfg.Cleanup.RetentionWindow != 60*time.Minute {
		t.Errorf("expected default retention window 60m, got %v", cfg.Cleanup.RetentionWindow)
	}
}

func TestLoad_ProviderOrderFiltersUnconfigured(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("GROK_API_KEY", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.ProviderOrder) != 1 || cfg.ProviderOrder[0] != "grok" {
		t.Errorf("expected order [grok], got %v", cfg.ProviderOrder)
	}
}

func TestLoad_ProviderOrderRespectsPreference(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("GROK_API_KEY", "key1")
	t.Setenv("ANTHROPIC_API_KEY", "key2")
	t.Setenv("PROVIDER_ORDER", "claude,grok")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.ProviderOrder) != 2 || cfg.ProviderOrder[0] != "claude" || cfg.ProviderOrder[1] != "grok" {
		t.Errorf("expected order [claude grok], got %v", cfg.ProviderOrder)
	}
}

func TestLoad_UnknownProviderNamesIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("GROK_API_KEY", "key")
	t.Setenv("PROVIDER_ORDER", "gemini, GROK ,bogus")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.ProviderOrder) != 1 || cfg.ProviderOrder[0] != "grok" {
		t.Errorf("expected order [grok], got %v", cfg.ProviderOrder)
	}
}

func TestLoad_TemperatureOutOfRange(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("GROK_API_KEY", "key")
	t.Setenv("TEMPERATURE", "2.5")

	_, err := Load()
	if err == nil {
		t.Error("expected error for temperature above 2")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("ANTHROPIC_API_KEY", "key")
	t.Setenv("ANTHROPIC_MODEL", "claude-3-haiku-20240307")
	t.Setenv("MAX_TOKENS", "2000")
	t.Setenv("CALL_TIMEOUT", "30s")
	t.Setenv("QUEUE_WORKERS", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Anthropic.Model != "claude-3-haiku-20240307" {
		t.Errorf("unexpected model override: %s", cfg.Anthropic.Model)
	}
	if cfg.Generation.MaxTokens != 2000 {
		t.Errorf("expected max tokens 2000, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Generation.CallTimeout != 30*time.Second {
		t.Errorf("expected call timeout 30s, got %v", cfg.Generation.CallTimeout)
	}
	if cfg.Queue.Workers != 10 {
		t.Errorf("expected 10 workers, got %d", cfg.Queue.Workers)
	}
}

func TestLoadScheduler_NoProviderCredentialsNeeded(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("RETENTION_WINDOW", "30m")

	cfg, err := LoadScheduler()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cleanup.RetentionWindow != 30*time.Minute {
		t.Errorf("expected retention window 30m, got %v", cfg.Cleanup.RetentionWindow)
	}
}

func TestLoadScheduler_RequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := LoadScheduler()
	if err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

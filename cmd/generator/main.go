package main

import (
	"log/slog"
	"os"

	"github.com/scenariowizard/worker/internal/app/bootstrap"
	"github.com/scenariowizard/worker/internal/infra/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.MockMode {
		slog.Info("starting in mock mode - LLM calls will be simulated")
	}

	if err := bootstrap.StartGenerator("generator", cfg); err != nil {
		slog.Error("generator failed", "error", err)
		os.Exit(1)
	}
}

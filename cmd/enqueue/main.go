package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/scenariowizard/worker/internal/domain/scenario"
	"github.com/scenariowizard/worker/internal/infra/db"
	"github.com/scenariowizard/worker/internal/infra/queue"
)

func main() {
	databaseURL := flag.String("database", os.Getenv("DATABASE_URL"), "Database URL")
	documentID := flag.String("document", "", "Document ID (generate for every feature in the document)")
	features := flag.String("features", "", "Comma-separated feature IDs")
	testTypes := flag.String("types", "unit", "Comma-separated test types (unit, integration, e2e)")
	provider := flag.String("provider", "", "Preferred provider name (grok, claude)")
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: Database URL is required (use -database flag or set DATABASE_URL)")
		os.Exit(1)
	}

	featureIDs := splitList(*features)
	types := splitList(*testTypes)

	if *documentID == "" && len(featureIDs) == 0 {
		printUsage()
		os.Exit(1)
	}

	if err := validateTestTypes(types); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := enqueue(*databaseURL, *documentID, featureIDs, types, *provider); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to enqueue task: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: enqueue [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "One of -document or -features is required.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  enqueue -document 2f1a... -types unit,integration")
	fmt.Fprintln(os.Stderr, "  enqueue -features id1,id2 -types e2e -provider claude")
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func validateTestTypes(types []string) error {
	if len(types) == 0 {
		return fmt.Errorf("at least one test type is required")
	}
	for _, tt := range types {
		if !scenario.TestType(tt).IsValid() {
			return fmt.Errorf("unsupported test type: %s", tt)
		}
	}
	return nil
}

func enqueue(databaseURL, documentID string, featureIDs, testTypes []string, provider string) error {
	ctx := context.Background()

	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer pool.Close()

	client, err := queue.NewClient(ctx, pool)
	if err != nil {
		return fmt.Errorf("create queue client: %w", err)
	}
	defer client.Close()

	if err := client.EnqueueGeneration(ctx, documentID, featureIDs, testTypes, provider); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	slog.Info("task enqueued",
		"document_id", documentID,
		"feature_count", len(featureIDs),
		"test_types", testTypes,
		"provider", provider,
	)
	return nil
}

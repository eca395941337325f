package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/scenariowizard/worker/internal/domain/scenario"
)

// requiredPlaceholders are the substitution keys every template body must
// carry. A body missing one of them fails validation and formatting.
var requiredPlaceholders = []string{
	"feature_title",
	"user_stories",
	"acceptance_criteria",
	"test_type",
}

// Registry maps test types to prompt templates. It is seeded with built-in
// templates for unit, integration, and e2e testing, and safe for concurrent
// readers; Add takes the write lock.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewRegistry creates a registry seeded with the built-in templates.
func NewRegistry() *Registry {
	return &Registry{
		templates: map[string]string{
			templateID(scenario.TestTypeUnit):        unitTemplate,
			templateID(scenario.TestTypeIntegration): integrationTemplate,
			templateID(scenario.TestTypeE2E):         e2eTemplate,
		},
	}
}

func templateID(t scenario.TestType) string {
	return string(t) + "_default"
}

// Get returns the template for a test type. Unmapped test types fail with
// ErrTemplateNotFound; there is no silent fallback to the unit template, a
// missing mapping is a configuration bug the caller must see.
func (r *Registry) Get(testType scenario.TestType) (scenario.PromptTemplate, error) {
	id := templateID(testType)

	r.mu.RLock()
	body, ok := r.templates[id]
	r.mu.RUnlock()

	if !ok {
		return scenario.PromptTemplate{}, fmt.Errorf("%w: test type %q", scenario.ErrTemplateNotFound, testType)
	}

	return scenario.PromptTemplate{Body: body, ID: id}, nil
}

// Add registers a custom template body under the given ID, overwriting any
// existing entry. Overwrites are logged, not fatal. Callers should Validate
// the body first.
func (r *Registry) Add(ctx context.Context, id, body string) {
	r.mu.Lock()
	_, exists := r.templates[id]
	r.templates[id] = body
	r.mu.Unlock()

	if exists {
		slog.WarnContext(ctx, "prompt template overwritten", "template_id", id)
		return
	}
	slog.InfoContext(ctx, "prompt template added", "template_id", id)
}

// Validate reports whether a template body carries all required placeholders.
func Validate(body string) bool {
	for _, placeholder := range requiredPlaceholders {
		if !strings.Contains(body, "{"+placeholder+"}") {
			return false
		}
	}
	return true
}

// Format substitutes feature data into a template body. Returns
// ErrTemplateFormat if the body is missing a required placeholder; this is a
// template-data bug, detected before any provider call is made, and is never
// retried.
func Format(template scenario.PromptTemplate, feature scenario.Feature, testType scenario.TestType) (string, error) {
	for _, placeholder := range requiredPlaceholders {
		if !strings.Contains(template.Body, "{"+placeholder+"}") {
			return "", fmt.Errorf("%w: %q", scenario.ErrTemplateFormat, placeholder)
		}
	}

	replacer := strings.NewReplacer(
		"{feature_title}", feature.Title,
		"{user_stories}", feature.UserStories,
		"{acceptance_criteria}", feature.AcceptanceCriteria,
		"{test_type}", string(testType),
	)
	return replacer.Replace(template.Body), nil
}

package mock

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/scenariowizard/worker/internal/domain/scenario"
)

const testTemplate = "Feature: {feature_title}\nStories: {user_stories}\nCriteria: {acceptance_criteria}\nType: {test_type}"

func TestGenerateScenario_Deterministic(t *testing.T) {
	p := NewProvider()
	feature := scenario.Feature{
		ID:                 "feat-1",
		Title:              "User Login",
		UserStories:        "As a user, I want to log in",
		AcceptanceCriteria: "- Valid credentials succeed\n- Invalid credentials fail",
	}

	first, err := p.GenerateScenario(context.Background(), scenario.PromptTemplate{ID: "unit_default", Body: testTemplate}, feature, scenario.TestTypeUnit, scenario.GenerationParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.GenerateScenario(context.Background(), scenario.PromptTemplate{ID: "unit_default", Body: testTemplate}, feature, scenario.TestTypeUnit, scenario.GenerationParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Content != second.Content {
		t.Error("expected deterministic content")
	}
	if !strings.Contains(first.Content, "User Login") {
		t.Errorf("expected feature title in content, got: %s", first.Content)
	}
	if !strings.Contains(first.Content, "Valid credentials succeed") {
		t.Error("expected acceptance criteria reflected in scenarios")
	}
	if first.CostUSD != 0 {
		t.Errorf("mock generations must be free, got cost %v", first.CostUSD)
	}
	if first.Provider != "mock" {
		t.Errorf("expected provider mock, got %q", first.Provider)
	}
	if first.TotalTokens != first.InputTokens+first.OutputTokens {
		t.Error("expected consistent token accounting")
	}
}

func TestGenerateScenario_ValidatesTemplate(t *testing.T) {
	p := NewProvider()

	_, err := p.GenerateScenario(
		context.Background(),
		scenario.PromptTemplate{ID: "broken", Body: "nothing"},
		scenario.Feature{Title: "X"},
		scenario.TestTypeUnit,
		scenario.GenerationParams{},
	)
	if !errors.Is(err, scenario.ErrTemplateFormat) {
		t.Errorf("expected ErrTemplateFormat even in mock mode, got: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	if !NewProvider().HealthCheck(context.Background()) {
		t.Error("expected mock health check to always pass")
	}
}

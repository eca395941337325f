package scenario

import (
	"testing"
	"time"
)

func TestRoundCost(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"exact", 0.025, 0.025},
		{"truncates below precision", 0.0000014, 0.000001},
		{"rounds up", 0.0000015, 0.000002},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundCost(tt.in); got != tt.want {
				t.Errorf("RoundCost(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMetadataFromOutcome_Success(t *testing.T) {
	outcome := Success(ProviderResponse{
		Content:          "scenarios",
		CostUSD:          0.025,
		GenerationTimeMs: 1234,
		InputTokens:      1000,
		Model:            "grok-4",
		OutputTokens:     500,
		Provider:         "grok",
		TotalTokens:      1500,
	})

	meta := MetadataFromOutcome(outcome, "claude", "unit_default", 5*time.Second)

	if meta.Provider != "grok" {
		t.Errorf("expected provider grok (actual generator, not preference), got %q", meta.Provider)
	}
	if meta.Model != "grok-4" {
		t.Errorf("expected model grok-4, got %q", meta.Model)
	}
	if meta.CostUSD != 0.025 {
		t.Errorf("expected cost 0.025, got %v", meta.CostUSD)
	}
	if meta.TokenCount != (TokenCount{Input: 1000, Output: 500, Total: 1500}) {
		t.Errorf("unexpected token count: %+v", meta.TokenCount)
	}
	if meta.GenerationTimeMs != 1234 {
		t.Errorf("expected generation time from response, got %d", meta.GenerationTimeMs)
	}
	if meta.Error != "" {
		t.Errorf("expected no error, got %q", meta.Error)
	}
	if meta.PromptTemplateID != "unit_default" {
		t.Errorf("expected template ID unit_default, got %q", meta.PromptTemplateID)
	}
}

func TestMetadataFromOutcome_Failure(t *testing.T) {
	outcome := Failure("all providers exhausted", []string{"grok", "claude"})

	meta := MetadataFromOutcome(outcome, "grok", "e2e_default", 30*time.Second)

	if meta.Error != "all providers exhausted" {
		t.Errorf("expected error message, got %q", meta.Error)
	}
	if meta.Provider != "grok" {
		t.Errorf("expected preferred provider attribution, got %q", meta.Provider)
	}
	if meta.Model != "" {
		t.Errorf("expected empty model on failure, got %q", meta.Model)
	}
	if !meta.TokenCount.IsZero() {
		t.Errorf("expected zero token count on failure, got %+v", meta.TokenCount)
	}
	if meta.CostUSD != 0 {
		t.Errorf("expected zero cost on failure, got %v", meta.CostUSD)
	}
	if meta.GenerationTimeMs != 30000 {
		t.Errorf("expected elapsed time 30000ms, got %d", meta.GenerationTimeMs)
	}
}

func TestMetadataFromOutcome_FailureWithoutPreference(t *testing.T) {
	outcome := Failure("boom", nil)

	meta := MetadataFromOutcome(outcome, "", "unit_default", time.Second)

	if meta.Provider != "" {
		t.Errorf("expected empty provider, got %q", meta.Provider)
	}
}

func TestGrokCostAccounting(t *testing.T) {
	// 1000 input at 0.00001 + 500 output at 0.00003 = 0.025
	cost := RoundCost(1000*0.00001 + 500*0.00003)
	if cost != 0.025 {
		t.Errorf("expected 0.025, got %v", cost)
	}
}

func TestGenerationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     GenerationRequest
		wantErr bool
	}{
		{
			name:    "valid with features",
			req:     GenerationRequest{FeatureIDs: []string{"f1"}, TestTypes: []TestType{TestTypeUnit}},
			wantErr: false,
		},
		{
			name:    "valid with document",
			req:     GenerationRequest{DocumentID: "d1", TestTypes: []TestType{TestTypeE2E}},
			wantErr: false,
		},
		{
			name:    "no targets",
			req:     GenerationRequest{TestTypes: []TestType{TestTypeUnit}},
			wantErr: true,
		},
		{
			name:    "no test types",
			req:     GenerationRequest{FeatureIDs: []string{"f1"}},
			wantErr: true,
		},
		{
			name:    "invalid test type",
			req:     GenerationRequest{FeatureIDs: []string{"f1"}, TestTypes: []TestType{"performance"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTestType_IsValid(t *testing.T) {
	for _, valid := range []TestType{TestTypeUnit, TestTypeIntegration, TestTypeE2E} {
		if !valid.IsValid() {
			t.Errorf("expected %s to be valid", valid)
		}
	}
	if TestType("performance").IsValid() {
		t.Error("expected unsupported type to be invalid")
	}
}

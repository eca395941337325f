package scenario

import (
	"math"
	"time"
)

// OutcomeMetadata is the normalized usage/cost record produced from a
// generation outcome, ready to be persisted alongside the scenario content.
type OutcomeMetadata struct {
	CostUSD          float64
	Error            string // empty on success
	GenerationTimeMs int64
	Model            string
	PromptTemplateID string
	Provider         string
	TokenCount       TokenCount
}

// RoundCost rounds a USD amount to 6 decimal places, the precision providers
// bill at.
func RoundCost(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// MetadataFromOutcome normalizes a generation outcome into persistable
// metadata. Pure: no I/O, no clock reads beyond the supplied elapsed duration.
//
// Success outcomes carry the provider's own accounting. Failure outcomes carry
// the preferred provider name (possibly empty) for attribution, empty token
// counts, zero cost, and the elapsed time spent before giving up.
func MetadataFromOutcome(outcome GenerationOutcome, preferredProvider, templateID string, elapsed time.Duration) OutcomeMetadata {
	if outcome.Succeeded() {
		resp := outcome.Response
		return OutcomeMetadata{
			CostUSD:          resp.CostUSD,
			GenerationTimeMs: resp.GenerationTimeMs,
			Model:            resp.Model,
			PromptTemplateID: templateID,
			Provider:         resp.Provider,
			TokenCount: TokenCount{
				Input:  resp.InputTokens,
				Output: resp.OutputTokens,
				Total:  resp.TotalTokens,
			},
		}
	}

	return OutcomeMetadata{
		Error:            outcome.ErrorMessage,
		GenerationTimeMs: elapsed.Milliseconds(),
		PromptTemplateID: templateID,
		Provider:         preferredProvider,
	}
}

package scenario

import (
	"errors"
	"fmt"
)

var (
	ErrAllProvidersFailed = errors.New("all providers failed")
	ErrFeatureNotFound    = errors.New("feature not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNoFeatures         = errors.New("no features resolved")
	ErrNoProviders        = errors.New("at least one provider must be configured")
	ErrRecordNotFound     = errors.New("generation record not found")
	ErrTemplateFormat     = errors.New("template missing required placeholder")
	ErrTemplateNotFound   = errors.New("prompt template not found")
)

// ProviderError is a transport or API failure from a provider call. Transient
// failures (timeouts, rate limits, 5xx) are retried; others fail the attempt.
type ProviderError struct {
	Err        error
	Provider   string
	StatusCode int // zero when the failure happened before an HTTP status was received
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s generation failed: status=%d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

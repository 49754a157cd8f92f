package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/brodheadw/oreacle-bot/internal/phrasebook"
)

// ErrDisabled is returned when no provider is configured
var ErrDisabled = errors.New("extraction disabled: no LLM provider configured")

// Extractor binds a provider to the phrasebook used in every prompt
type Extractor struct {
	provider   Provider
	config     Config
	phrasebook *phrasebook.Phrasebook
}

// NewExtractor creates an extractor from configuration. A config without a
// provider yields a disabled extractor, not an error.
func NewExtractor(config Config, pb *phrasebook.Phrasebook) (*Extractor, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Extractor{provider: provider, config: config, phrasebook: pb}, nil
}

// NewExtractorWithProvider wraps an existing provider
func NewExtractorWithProvider(provider Provider, config Config, pb *phrasebook.Phrasebook) *Extractor {
	return &Extractor{provider: provider, config: config, phrasebook: pb}
}

// IsEnabled reports whether a provider is configured
func (e *Extractor) IsEnabled() bool {
	return e.provider != nil
}

// ProviderName returns the provider name, or "" when disabled
func (e *Extractor) ProviderName() string {
	if e.provider == nil {
		return ""
	}
	return e.provider.Name()
}

// Check verifies that the provider is reachable
func (e *Extractor) Check(ctx context.Context) error {
	if e.provider == nil {
		return ErrDisabled
	}
	if !e.provider.IsAvailable(ctx) {
		return fmt.Errorf("LLM provider %s is not available", e.provider.Name())
	}
	return nil
}

// Extract fills in the phrasebook and model defaults and calls the provider
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	if e.provider == nil {
		return nil, ErrDisabled
	}
	if req.Phrasebook == nil {
		req.Phrasebook = e.phrasebook
	}
	if req.Model == "" {
		req.Model = e.config.Model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = e.config.MaxTokens
	}
	return e.provider.Extract(ctx, req)
}

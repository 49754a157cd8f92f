package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/brodheadw/oreacle-bot/internal/phrasebook"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *ExtractResponse
	err       error
	lastReq   ExtractRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func TestNewExtractor_DisabledProvider(t *testing.T) {
	extractor, err := NewExtractor(Config{Provider: ""}, phrasebook.Default())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if extractor.IsEnabled() {
		t.Error("Expected extractor to be disabled")
	}
	if extractor.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	_, err = extractor.Extract(context.Background(), ExtractRequest{SourceText: "x"})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
	if !errors.Is(extractor.Check(context.Background()), ErrDisabled) {
		t.Error("Expected Check to report disabled extraction")
	}
}

func TestNewExtractor_UnknownProvider(t *testing.T) {
	if _, err := NewExtractor(Config{Provider: "bard"}, nil); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestExtractor_FillsDefaults(t *testing.T) {
	pb := phrasebook.Default()
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response:  &ExtractResponse{Extraction: &model.Extraction{DocURL: "u"}},
	}
	extractor := NewExtractorWithProvider(mock, Config{Model: "m1", MaxTokens: 900}, pb)

	if _, err := extractor.Extract(context.Background(), ExtractRequest{SourceText: "x"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if mock.lastReq.Phrasebook != pb {
		t.Error("Expected configured phrasebook to be passed through")
	}
	if mock.lastReq.Model != "m1" || mock.lastReq.MaxTokens != 900 {
		t.Errorf("Expected model defaults, got %+v", mock.lastReq)
	}

	// Explicit request values win
	override := &phrasebook.Phrasebook{}
	_, _ = extractor.Extract(context.Background(), ExtractRequest{Phrasebook: override, Model: "m2"})
	if mock.lastReq.Phrasebook != override || mock.lastReq.Model != "m2" {
		t.Errorf("Expected request overrides, got %+v", mock.lastReq)
	}
}

func TestExtractor_ProviderError(t *testing.T) {
	providerErr := &ExtractionError{Provider: "test-provider", Err: errors.New("boom")}
	extractor := NewExtractorWithProvider(&MockProvider{name: "test-provider", err: providerErr}, Config{}, nil)

	_, err := extractor.Extract(context.Background(), ExtractRequest{})
	if !errors.Is(err, providerErr) {
		t.Errorf("Expected provider error, got %v", err)
	}
}

func TestExtractor_Check(t *testing.T) {
	up := NewExtractorWithProvider(&MockProvider{name: "up", available: true}, Config{}, nil)
	if err := up.Check(context.Background()); err != nil {
		t.Errorf("Expected available provider, got %v", err)
	}

	down := NewExtractorWithProvider(&MockProvider{name: "down"}, Config{}, nil)
	if err := down.Check(context.Background()); err == nil {
		t.Error("Expected error for unavailable provider")
	}

	if down.ProviderName() != "down" {
		t.Errorf("Expected provider name 'down', got '%s'", down.ProviderName())
	}
}

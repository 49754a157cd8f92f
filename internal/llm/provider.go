// Package llm calls the extraction collaborator: a language model that reads
// a regulatory document and returns a structured extraction record.
package llm

import (
	"context"
	"fmt"

	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/brodheadw/oreacle-bot/internal/phrasebook"
	"github.com/sirupsen/logrus"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Extract reads one document and returns a validated extraction record
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for one extraction call
type ExtractRequest struct {
	// SourceText is the visible document text (Chinese or mixed)
	SourceText string

	// SourceURL is echoed back by the model as doc_url
	SourceURL string

	// Phrasebook supplies the allowed phrases and canonical mine names
	Phrasebook *phrasebook.Phrasebook

	// Prompt overrides the default user prompt when set
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse contains the parsed record plus call metadata
type ExtractResponse struct {
	Extraction *model.Extraction
	Raw        string // Response text as returned by the model
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "rules", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictSchema asks providers that support it to enforce the JSON schema
	StrictSchema bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string

	// Logger receives availability diagnostics; nil uses the logrus standard logger
	Logger *logrus.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:     "", // Disabled by default
		Model:        "",
		Timeout:      60,
		StrictSchema: true,
		MaxTokens:    1500,
	}
}

// ExtractionError is a typed failure from the extraction collaborator.
// Validation failures of the returned record unwrap to *model.ValidationError.
type ExtractionError struct {
	Provider string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Provider, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (c Config) logger() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

// resolve fills request defaults from the provider config
func (c Config) resolve(req ExtractRequest, fallbackModel string) (prompt, model string, maxTokens int) {
	prompt = req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req)
	}

	model = req.Model
	if model == "" {
		model = c.Model
	}
	if model == "" {
		model = fallbackModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1500
	}
	return prompt, model, maxTokens
}

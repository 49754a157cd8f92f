package llm

import (
	"fmt"
	"strings"

	"github.com/brodheadw/oreacle-bot/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables extraction and returns (nil, nil).
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "rules":
		return NewRuleProvider(), nil

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama, rules)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:     c.Provider,
		Model:        c.Model,
		APIKey:       c.APIKey,
		BaseURL:      c.BaseURL,
		Timeout:      c.Timeout,
		StrictSchema: c.StrictSchema,
		MaxTokens:    c.MaxTokens,
		HTTPProxy:    c.HTTPProxy,
		HTTPSProxy:   c.HTTPSProxy,
	}
}

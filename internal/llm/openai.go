package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brodheadw/oreacle-bot/internal/util"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	// Per-call deadlines come from the request context
	clientConfig.HTTPClient = util.NewHTTPClient(config.HTTPProxy, config.HTTPSProxy, 0)

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Listing models is the cheapest authenticated call
	if _, err := p.client.ListModels(ctx); err != nil {
		p.config.logger().WithError(err).Warn("OpenAI API check failed")
		return false
	}
	return true
}

// Extract runs one extraction using Chat Completions with structured output
func (p *OpenAIProvider) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	prompt, model, maxTokens := p.config.resolve(req, openai.GPT4oMini)

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:      maxTokens,
		Temperature:    0,
		ResponseFormat: p.responseFormat(),
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, &ExtractionError{Provider: p.Name(), Err: fmt.Errorf("OpenAI API error: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return nil, &ExtractionError{Provider: p.Name(), Err: fmt.Errorf("no response from OpenAI")}
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	x, err := ParseResponse(raw)
	if err != nil {
		return nil, &ExtractionError{Provider: p.Name(), Err: err}
	}

	return &ExtractResponse{
		Extraction: x,
		Raw:        raw,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// responseFormat enforces the extraction schema in strict mode, or plain
// JSON output otherwise
func (p *OpenAIProvider) responseFormat() *openai.ChatCompletionResponseFormat {
	if !p.config.StrictSchema {
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   SchemaName,
			Schema: ExtractionSchema,
			Strict: true,
		},
	}
}

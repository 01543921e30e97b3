package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicProvider implements the Verifier interface for Anthropic Claude models.
// anthropic.Client is a value type; NewClient returns it by value.
type AnthropicProvider struct {
	client anthropic.Client
	config Config
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithHTTPClient(newHTTPClient(config)),
		option.WithMaxRetries(0), // retries are the orchestrator's concern
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable reports whether a key is configured. A live check would spend quota.
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	return p.config.APIKey != ""
}

// Verify asks Claude for a draft assessment of one claim
func (p *AnthropicProvider) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	model := resolveModel(req, p.config, defaultAnthropicModel)

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(resolveMaxTokens(req, p.config)),
		Temperature: anthropic.Float(0.2),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no text content in Anthropic response")
	}

	tokens := int(msg.Usage.InputTokens + msg.Usage.OutputTokens)
	return finish(strings.Join(parts, ""), req, p.config.StrictEvidence, string(msg.Model), tokens), nil
}

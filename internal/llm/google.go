package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	googleoption "google.golang.org/api/option"
)

const defaultGoogleModel = "gemini-1.5-flash"

// GoogleProvider implements the Verifier interface for Gemini models.
// A genai.Client is created per call so the caller's context governs the
// connection and the client is always closed.
type GoogleProvider struct {
	config Config
}

// NewGoogleProvider creates a new Google provider
func NewGoogleProvider(config Config) (*GoogleProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required")
	}
	return &GoogleProvider{config: config}, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

// IsAvailable reports whether a key is configured
func (p *GoogleProvider) IsAvailable(ctx context.Context) bool {
	return p.config.APIKey != ""
}

// Verify asks Gemini for a draft assessment of one claim
func (p *GoogleProvider) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	opts := []googleoption.ClientOption{googleoption.WithAPIKey(p.config.APIKey)}
	if p.config.BaseURL != "" {
		opts = append(opts, googleoption.WithEndpoint(p.config.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google: genai client: %w", err)
	}
	defer client.Close()

	name := resolveModel(req, p.config, defaultGoogleModel)
	m := client.GenerativeModel(name)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	maxOut := int32(resolveMaxTokens(req, p.config))
	m.MaxOutputTokens = &maxOut
	temp := float32(0.2)
	m.Temperature = &temp
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, genai.Text(BuildPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("google: generate content: %w", err)
	}

	var parts []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				parts = append(parts, string(t))
			}
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("google: response contained no text content")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return finish(strings.Join(parts, ""), req, p.config.StrictEvidence, name, tokens), nil
}

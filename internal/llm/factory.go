package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// NewVerifier creates a new LLM verifier based on configuration
func NewVerifier(config Config) (Verifier, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "google", "gemini":
		return NewGoogleProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - LLM disabled
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, google, ollama)", config.Provider)
	}
}

// apiKeyEnv names the conventional key variable per provider
var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"claude":    "ANTHROPIC_API_KEY",
	"google":    "GOOGLE_API_KEY",
	"gemini":    "GOOGLE_API_KEY",
}

// ConfigFromModel converts the application config to llm.Config. An empty
// API key falls back to the provider's conventional environment variable.
func ConfigFromModel(cfg *model.Config) Config {
	apiKey := cfg.LLM.APIKey
	if apiKey == "" {
		if env, ok := apiKeyEnv[strings.ToLower(cfg.LLM.Provider)]; ok {
			apiKey = os.Getenv(env)
		}
	}

	return Config{
		Provider:       cfg.LLM.Provider,
		Model:          cfg.LLM.Model,
		APIKey:         apiKey,
		BaseURL:        cfg.LLM.BaseURL,
		Timeout:        cfg.Verification.LLMTimeout,
		StrictEvidence: cfg.LLM.StrictEvidence,
		MaxTokens:      cfg.LLM.MaxTokens,
		HTTPProxy:      cfg.HTTP.HTTPProxy,
		HTTPSProxy:     cfg.HTTP.HTTPSProxy,
		NoProxy:        cfg.HTTP.NoProxy,
	}
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/veracity/internal/log"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
)

var (
	// ErrTimeout is returned when a verification call exceeds its wall-clock budget
	ErrTimeout = errors.New("llm verification timed out")

	// ErrMalformedOutput is returned when the model output cannot be parsed even after repair
	ErrMalformedOutput = errors.New("malformed llm output")
)

// Verifier defines the interface for LLM verification providers
type Verifier interface {
	// Name returns the provider name
	Name() string

	// Verify produces an explanation and draft distribution for one claim.
	// Malformed model output is not an error: the response carries the
	// default draft with Malformed set and Raw preserved.
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// VerifyRequest contains the input for one claim verification
type VerifyRequest struct {
	ClaimText  string
	VideoTitle string
	VideoURL   string

	// Digest is the compact evidence summary. Its URLs are the STRICT
	// allowlist of sources the model may cite.
	Digest Digest

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// VerifyResponse is the parsed model output
type VerifyResponse struct {
	Explanation string
	Draft       model.Distribution
	SourceURLs  []string
	Raw         string
	Repaired    bool // Output only parsed after the repair pass
	Malformed   bool // Output unparseable; Draft is the default uncertain draft
	Model       string
	TokensUsed  int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "google", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic/Google
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for HTTP requests made by the provider itself
	Timeout time.Duration

	// StrictEvidence drops cited URLs that are not in the evidence digest
	StrictEvidence bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:       "", // Disabled by default
		Timeout:        90 * time.Second,
		StrictEvidence: true,
		MaxTokens:      1500,
	}
}

const systemPrompt = "You are a careful fact-checker. You weigh evidence by its independence from the subject and answer only with the requested JSON object."

// Digest is the evidence summary handed to the model
type Digest struct {
	Text string
	URLs []string
}

// Digest limits
const (
	maxDigestItems   = 20
	maxDigestSnippet = 280
)

// BuildDigest renders grouped evidence into a compact, group-labelled list.
// Groups are listed in a fixed order so the prompt is deterministic.
func BuildDigest(ev model.GroupedEvidence) Digest {
	var b strings.Builder
	var urls []string
	n := 0

	groups := []struct {
		label string
		items []model.EvidenceItem
	}{
		{"INDEPENDENT", ev.Independent},
		{"SCIENTIFIC", ev.Scientific},
		{"PRESS RELEASE", ev.PressRelease},
		{"COUNTER VIDEO", ev.YouTubeCounter},
	}

	for _, g := range groups {
		for _, item := range g.items {
			if n >= maxDigestItems {
				break
			}
			n++
			snippet := item.Text
			if snippet == "" {
				snippet = item.Title
			}
			fmt.Fprintf(&b, "%d. [%s] %s (power %.1f)", n, g.label, item.SourceName, item.ValidationPower)
			if item.URL != "" {
				fmt.Fprintf(&b, " %s", item.URL)
				urls = append(urls, item.URL)
			}
			if snippet != "" {
				fmt.Fprintf(&b, "\n   %s", util.Truncate(snippet, maxDigestSnippet))
			}
			b.WriteString("\n")
		}
	}

	if n == 0 {
		return Digest{Text: "(No evidence found)"}
	}
	if total := ev.Count(); total > n {
		fmt.Fprintf(&b, "... and %d more items\n", total-n)
	}
	return Digest{Text: strings.TrimRight(b.String(), "\n"), URLs: urls}
}

// BuildPrompt constructs the verification prompt with strict evidence mode
func BuildPrompt(req VerifyRequest) string {
	video := req.VideoTitle
	if req.VideoURL != "" {
		video = fmt.Sprintf("%s (%s)", req.VideoTitle, req.VideoURL)
	}

	return fmt.Sprintf(`Assess the following claim made in a video.

Video: %s
Claim: %s

Evidence:
%s

RULES:
1. You MUST ONLY cite URLs that appear in the evidence list above.
2. Press releases and material tied to the speaker are promotional, not independent confirmation.
3. If the evidence is thin, keep most of the probability on UNCERTAIN.

Respond with a single JSON object and nothing else:
{"explanation": "<2-4 sentences>", "probability_distribution": {"TRUE": <0-1>, "FALSE": <0-1>, "UNCERTAIN": <0-1>}, "sources": ["<url>", ...]}
The three probabilities must sum to 1.`, video, req.ClaimText, req.Digest.Text)
}

// IsRateLimit reports whether an error looks like upstream rate limiting
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate_limit") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") || strings.Contains(msg, "resource_exhausted")
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]"'<>]+`)

// extractURLs finds every http(s) URL in text, without trailing punctuation
func extractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, u := range matches {
		urls = append(urls, strings.TrimRight(u, ".,;:!?"))
	}
	return urls
}

// allowedSources keeps only sources present in the allowlist, in order, without duplicates
func allowedSources(sources, allowlist []string) []string {
	allowed := make(map[string]bool, len(allowlist))
	for _, u := range allowlist {
		allowed[u] = true
	}

	var kept []string
	seen := make(map[string]bool)
	for _, u := range sources {
		if seen[u] {
			continue
		}
		seen[u] = true
		if allowed[u] {
			kept = append(kept, u)
		}
	}
	return kept
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// finish parses raw model text into a response and applies the evidence
// allowlist. Shared by every provider.
func finish(raw string, req VerifyRequest, strict bool, modelName string, tokens int) *VerifyResponse {
	resp, err := ParseVerification(raw)
	if err != nil {
		log.Warn("llm: %v, using default draft", err)
		resp.Malformed = true
	} else if resp.Repaired {
		log.Debug("llm: output parsed after repair")
	}
	resp.Model = modelName
	resp.TokensUsed = tokens

	// Sources cited only inside the explanation count too
	for _, u := range extractURLs(resp.Explanation) {
		if !contains(resp.SourceURLs, u) {
			resp.SourceURLs = append(resp.SourceURLs, u)
		}
	}
	if strict {
		resp.SourceURLs = allowedSources(resp.SourceURLs, req.Digest.URLs)
	} else {
		resp.SourceURLs = allowedSources(resp.SourceURLs, resp.SourceURLs)
	}
	return resp
}

func resolveModel(req VerifyRequest, cfg Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if cfg.Model != "" {
		return cfg.Model
	}
	return fallback
}

func resolveMaxTokens(req VerifyRequest, cfg Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return 1500
}

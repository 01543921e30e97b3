package model

import "time"

// Config is the complete runtime configuration. Loaded by viper from
// flags, VERACITY_* env vars and the YAML config file, over DefaultConfig.
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Search       SearchConfig       `yaml:"search" mapstructure:"search"`
	Verification VerificationConfig `yaml:"verification" mapstructure:"verification"`
	Selection    SelectionConfig    `yaml:"selection" mapstructure:"selection"`
	Grouping     GroupingConfig     `yaml:"grouping" mapstructure:"grouping"`
	Reputation   ReputationConfig   `yaml:"reputation" mapstructure:"reputation"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the verification model
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, google, ollama
	Model          string `yaml:"model" mapstructure:"model"`
	APIKey         string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	StrictEvidence bool   `yaml:"strict_evidence" mapstructure:"strict_evidence"` // Drop cited URLs not present in the evidence digest
}

// SearchConfig configures the evidence search collaborators
type SearchConfig struct {
	Endpoints         []SearchEndpoint `yaml:"endpoints" mapstructure:"endpoints"`
	Feeds             []FeedSource     `yaml:"feeds" mapstructure:"feeds"`
	Timeout           time.Duration    `yaml:"timeout" mapstructure:"timeout"` // Per search call
	RequestsPerSecond float64          `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int              `yaml:"burst" mapstructure:"burst"`
	MaxResults        int              `yaml:"max_results" mapstructure:"max_results"` // Per query and backend
	FetchPages        bool             `yaml:"fetch_pages" mapstructure:"fetch_pages"` // Fill empty snippets from the page itself
	FetchWorkers      int              `yaml:"fetch_workers" mapstructure:"fetch_workers"`
}

// SearchEndpoint is a JSON search backend
type SearchEndpoint struct {
	Name       string `yaml:"name" mapstructure:"name"`
	URL        string `yaml:"url" mapstructure:"url"`
	SourceType string `yaml:"source_type" mapstructure:"source_type"` // Default source type for hits without one
	APIKeyEnv  string `yaml:"api_key_env,omitempty" mapstructure:"api_key_env"`
}

// FeedSource is a press-release RSS/Atom feed
type FeedSource struct {
	Name string `yaml:"name" mapstructure:"name"`
	URL  string `yaml:"url" mapstructure:"url"`
}

// VerificationConfig configures the orchestrator
type VerificationConfig struct {
	LLMTimeout       time.Duration `yaml:"llm_timeout" mapstructure:"llm_timeout"`
	Delay            time.Duration `yaml:"delay" mapstructure:"delay"`                           // Between consecutive LLM calls
	PostTimeoutDelay time.Duration `yaml:"post_timeout_delay" mapstructure:"post_timeout_delay"` // After a timed-out call
	BreakerThreshold int           `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`   // Consecutive timeouts before the circuit opens
}

// SelectionConfig configures the claim selector
type SelectionConfig struct {
	TargetCount    int `yaml:"target_count" mapstructure:"target_count"`
	MinSpecificity int `yaml:"min_specificity" mapstructure:"min_specificity"`
}

// GroupingConfig configures evidence grouping and self-reference detection
type GroupingConfig struct {
	OverlapThreshold    int      `yaml:"overlap_threshold" mapstructure:"overlap_threshold"` // Shared key terms for partial self-reference
	PartialPower        float64  `yaml:"partial_power" mapstructure:"partial_power"`
	PressReleaseDomains []string `yaml:"press_release_domains,omitempty" mapstructure:"press_release_domains"`
	ScientificDomains   []string `yaml:"scientific_domains,omitempty" mapstructure:"scientific_domains"`
	GovernmentDomains   []string `yaml:"government_domains,omitempty" mapstructure:"government_domains"`
}

// ReputationConfig configures the channel reputation table
type ReputationConfig struct {
	TablePath string        `yaml:"table_path,omitempty" mapstructure:"table_path"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// HTTPConfig configures outbound HTTP for search backends and page fetches
type HTTPConfig struct {
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the search result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// StoreConfig configures the run history database (empty path disables it)
type StoreConfig struct {
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// OutputConfig configures report output
type OutputConfig struct {
	JSONPath string `yaml:"json_path" mapstructure:"json_path"`
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "",
			MaxTokens:      1500,
			StrictEvidence: true,
		},
		Search: SearchConfig{
			Timeout:           60 * time.Second,
			RequestsPerSecond: 1,
			Burst:             2,
			MaxResults:        5,
			FetchPages:        true,
			FetchWorkers:      4,
		},
		Verification: VerificationConfig{
			LLMTimeout:       90 * time.Second,
			Delay:            8 * time.Second,
			PostTimeoutDelay: 15 * time.Second,
			BreakerThreshold: 2,
		},
		Selection: SelectionConfig{
			TargetCount:    10,
			MinSpecificity: 25,
		},
		Grouping: GroupingConfig{
			OverlapThreshold: 2,
			PartialPower:     0.2,
		},
		Reputation: ReputationConfig{
			CacheTTL: time.Hour,
		},
		HTTP: HTTPConfig{
			UserAgent:     "Veracity/0.1 (+https://github.com/ppiankov/veracity)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".veracity-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Output: OutputConfig{
			JSONPath: "report.json",
		},
	}
}

package model

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config is the complete runtime configuration. It is built once at startup
// and passed explicitly; nothing reads configuration from package state.
type Config struct {
	Decision     DecisionConfig    `yaml:"decision" mapstructure:"decision"`
	Ladder       LadderConfig      `yaml:"ladder" mapstructure:"ladder"`
	Phrasebook   PhrasebookConfig  `yaml:"phrasebook" mapstructure:"phrasebook"`
	Sources      SourceConfig      `yaml:"sources" mapstructure:"sources"`
	Target       TargetConfig      `yaml:"target" mapstructure:"target"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
}

// DecisionConfig holds the gate thresholds
type DecisionConfig struct {
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
}

// LadderConfig holds the monotonicity checker settings
type LadderConfig struct {
	Tolerance float64 `yaml:"tolerance" mapstructure:"tolerance"` // 0.05 = 5 percentage points
}

// PhrasebookConfig points at the alias/verb phrasebook
type PhrasebookConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // Empty uses the built-in phrasebook
}

// SourceConfig ranks publishing domains. Subdomains inherit their parent's tier.
type SourceConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"` // host -> primary|secondary|tertiary
}

// TargetConfig identifies the market that item verdicts are routed to
type TargetConfig struct {
	MarketID   string `yaml:"market_id" mapstructure:"market_id"`
	MarketSlug string `yaml:"market_slug" mapstructure:"market_slug"`
}

// LLMConfig configures the extraction collaborator
type LLMConfig struct {
	Provider     string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, rules
	Model        string `yaml:"model" mapstructure:"model"`
	APIKey       string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL      string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout      int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	StrictSchema bool   `yaml:"strict_schema" mapstructure:"strict_schema"`
	MaxTokens    int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	HTTPProxy    string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CacheConfig configures the extraction cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig configures the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig throttles extraction calls per source
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	Mode string `yaml:"mode" mapstructure:"mode"` // gin mode: debug, release, test
}

// LogConfig configures the logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "oreacle-cache")
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".oreacle", "cache")
	}

	return &Config{
		Decision: DecisionConfig{MinConfidence: 0.75},
		Ladder:   LadderConfig{Tolerance: 0.05},
		Sources: SourceConfig{
			PrimaryDomains: []string{"gov.cn"}, // Ministries, provincial and municipal bureaus
			SecondaryDomains: []string{
				"cninfo.com.cn",
				"szse.cn",
				"sse.com.cn",
				"hkexnews.hk",
			},
		},
		LLM: LLMConfig{
			Provider:     "", // Extraction disabled until configured
			Model:        "gpt-4o-mini",
			Timeout:      60,
			StrictSchema: true,
			MaxTokens:    1500,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency:  ConcurrencyConfig{Workers: runtime.NumCPU()},
		RateLimiting: RateLimitConfig{RequestsPerSecond: 2, BurstSize: 4},
		Output:       OutputConfig{IncludeFooter: true},
		Server:       ServerConfig{Addr: ":8080", Mode: "release"},
		Log:          LogConfig{Level: "info"},
	}
}

// Validate checks the knobs that have a bounded range
func (c *Config) Validate() error {
	if math.IsNaN(c.Decision.MinConfidence) || c.Decision.MinConfidence < 0 || c.Decision.MinConfidence > 1 {
		return &ConfigError{Key: "decision.min_confidence", Reason: "must be within [0,1]"}
	}
	if math.IsNaN(c.Ladder.Tolerance) || c.Ladder.Tolerance < 0 || c.Ladder.Tolerance >= 1 {
		return &ConfigError{Key: "ladder.tolerance", Reason: "must be within [0,1)"}
	}
	if c.Concurrency.Workers < 0 {
		return &ConfigError{Key: "concurrency.workers", Reason: "cannot be negative"}
	}
	if c.RateLimiting.RequestsPerSecond < 0 {
		return &ConfigError{Key: "rate_limiting.requests_per_second", Reason: "cannot be negative"}
	}
	return nil
}

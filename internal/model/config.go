package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the complete factcheck configuration.
// Values are layered: defaults, config file, FACTCHECK_* env vars, CLI flags.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Credential  CredentialConfig  `yaml:"credential" mapstructure:"credential"`
	Prompt      PromptConfig      `yaml:"prompt" mapstructure:"prompt"`
	Scope       ScopeConfig       `yaml:"scope" mapstructure:"scope"`
	Authority   AuthorityConfig   `yaml:"authority" mapstructure:"authority"`
	Counter     CounterConfig     `yaml:"counter" mapstructure:"counter"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Transcribe  TranscribeConfig  `yaml:"transcribe" mapstructure:"transcribe"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LLMConfig selects and tunes the language model provider
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=openai anthropic claude ollama gemini"`
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
	HTTPProxy   string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy     string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CredentialConfig controls API key validation
type CredentialConfig struct {
	// Prefix overrides the provider's expected key prefix (empty = provider default)
	Prefix string `yaml:"prefix,omitempty" mapstructure:"prefix"`
	// SkipPrefix disables the prefix rule entirely (e.g. for proxies issuing their own keys)
	SkipPrefix bool `yaml:"skip_prefix" mapstructure:"skip_prefix"`
}

// PromptConfig controls where the source restriction is placed
type PromptConfig struct {
	// ScopeStrategy is "system" (restriction in the system instruction) or
	// "query" (site: suffix appended to the user message)
	ScopeStrategy string `yaml:"scope_strategy" mapstructure:"scope_strategy" validate:"oneof=system query"`
}

// ScopeConfig toggles source scoping
type ScopeConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Default string `yaml:"default" mapstructure:"default"` // Selector used when the caller supplies none
}

// AuthorityConfig tiers cited sources. Explicit DomainMap entries win,
// then primary and secondary domains (subdomains included), then path
// patterns, then .gov/.edu/.mil/.ac.uk hosts; everything else is tertiary.
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
	PathPatterns     []PathPattern     `yaml:"path_patterns,omitempty" mapstructure:"path_patterns" validate:"dive"`
}

// PathPattern assigns a tier to URLs whose path matches a regular expression
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern" validate:"required"`
	Tier    string `yaml:"tier" mapstructure:"tier" validate:"oneof=primary secondary tertiary"`
}

// CounterConfig toggles counter-argument generation
type CounterConfig struct {
	Enabled  bool `yaml:"enabled" mapstructure:"enabled"`
	MaxChars int  `yaml:"max_chars" mapstructure:"max_chars" validate:"gte=20,lte=2000"`
}

// ServerConfig holds HTTP endpoint settings
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr" validate:"required"`
	LegacySelector  string        `yaml:"legacy_selector" mapstructure:"legacy_selector"`
	// RequestTimeout bounds the whole check; keep it above twice llm.timeout
	// so both model calls fit.
	RequestTimeout  time.Duration `yaml:"request_timeout" mapstructure:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"gt=0"`
	MaxClaimBytes   int           `yaml:"max_claim_bytes" mapstructure:"max_claim_bytes" validate:"gt=0"`
}

// ConcurrencyConfig holds batch worker settings
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=1,lte=64"`
}

// TranscribeConfig holds speech-to-text settings
type TranscribeConfig struct {
	Model    string `yaml:"model" mapstructure:"model"`
	Language string `yaml:"language,omitempty" mapstructure:"language"`
	APIKey   string `yaml:"-" mapstructure:"api_key"` // Falls back to OPENAI_API_KEY
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
}

// OutputConfig holds rendering settings
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Color   bool `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4-turbo",
			Timeout:     60 * time.Second,
			MaxTokens:   1000,
			Temperature: 0.2,
		},
		Prompt: PromptConfig{
			ScopeStrategy: "system",
		},
		Scope: ScopeConfig{
			Enabled: true,
			Default: "", // Absent selector means unrestricted
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"who.int",
				"pubmed.ncbi.nlm.nih.gov",
				"doi.org",
				"arxiv.org",
				"stlouisfed.org",
				"europa.eu",
				"un.org",
			},
			SecondaryDomains: []string{
				"reuters.com",
				"apnews.com",
				"factcheck.org",
				"politifact.com",
				"nature.com",
				"govtrack.us",
				"britannica.com",
				"wikipedia.org",
			},
			PathPatterns: []PathPattern{
				{Pattern: "^/doi/", Tier: "primary"},
			},
		},
		Counter: CounterConfig{
			Enabled:  true,
			MaxChars: 280,
		},
		Server: ServerConfig{
			Addr:            ":7860",
			LegacySelector:  "constrained",
			RequestTimeout:  2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			MaxClaimBytes:   4000,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Transcribe: TranscribeConfig{
			Model: "whisper-1",
		},
	}
}

var configValidate = validator.New()

// Validate checks field constraints declared in struct tags
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

package llm

import (
	"context"
	"strings"
	"time"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged conversation turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is the text a provider returned for one request
type Completion struct {
	// Text is the trimmed response text
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption (0 when the provider does not report it)
	TokensUsed int
}

// Client defines the interface for language model providers
type Client interface {
	// Name returns the provider name
	Name() string

	// Complete sends the conversation and returns a single completion
	Complete(ctx context.Context, messages []Message) (*Completion, error)
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic/Gemini
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for a single API request
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Timeout:     60 * time.Second,
		MaxTokens:   1000,
		Temperature: 0.2,
	}
}

// RequiresAPIKey reports whether the named provider authenticates with an API key
func RequiresAPIKey(provider string) bool {
	switch strings.ToLower(provider) {
	case "ollama", "":
		return false
	default:
		return true
	}
}

// splitSystem separates system messages from the conversation, for APIs
// that carry the system instruction outside the message list.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	var rest []Message
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

func (c Config) timeoutOr(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func (c Config) maxTokensOr(fallback int) int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return fallback
}

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ppiankov/factcheck/internal/util"
)

// GeminiClient implements the Client interface for Google Gemini models
type GeminiClient struct {
	client *genai.Client
	config Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: util.NewHTTPClient(0, config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Complete sends the conversation to GenerateContent.
// System messages become the system instruction.
func (c *GeminiClient) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	model := c.config.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	system, rest := splitSystem(messages)
	if len(rest) == 0 {
		return nil, fmt.Errorf("gemini: at least one non-system message is required")
	}

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}

	genConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(c.config.maxTokensOr(1000)),
		Temperature:     genai.Ptr(c.config.Temperature),
	}
	if system != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.config.timeoutOr(60*time.Second))
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctxWithTimeout, model, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("no content in Gemini response")
	}

	completion := &Completion{
		Text:  text,
		Model: model,
	}
	if resp.ModelVersion != "" {
		completion.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		completion.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return completion, nil
}

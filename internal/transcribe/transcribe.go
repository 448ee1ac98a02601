package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/factcheck/internal/util"
)

// Transcriber turns an audio file into text
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Config holds transcription settings
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string // Defaults to whisper-1
	Language   string // ISO-639-1 hint, optional
	Timeout    time.Duration
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// OpenAITranscriber implements Transcriber with the OpenAI audio API
type OpenAITranscriber struct {
	client *openai.Client
	config Config
}

// NewOpenAITranscriber creates a new Whisper transcriber
func NewOpenAITranscriber(config Config) (*OpenAITranscriber, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for transcription")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.HTTPProxy != "" || config.HTTPSProxy != "" {
		clientConfig.HTTPClient = util.NewHTTPClient(0, config.HTTPProxy, config.HTTPSProxy, config.NoProxy)
	}

	return &OpenAITranscriber{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Transcribe uploads the audio file at path and returns its trimmed text.
// Silence yields an empty string, not an error.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("audio file: %w", err)
	}

	model := t.config.Model
	if model == "" {
		model = openai.Whisper1
	}

	timeout := t.config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: path,
		Language: t.config.Language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

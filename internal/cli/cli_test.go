package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/scope"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func newViper(t *testing.T, yamlConfig string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	if yamlConfig != "" {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(yamlConfig)); err != nil {
			t.Fatalf("read config: %v", err)
		}
	}
	return v
}

func TestDecodeConfig_Defaults(t *testing.T) {
	cfg, err := decodeConfig(newViper(t, ""), env(nil))
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.LLM.Provider != want.LLM.Provider || cfg.LLM.Model != want.LLM.Model {
		t.Errorf("Expected %s/%s, got %s/%s", want.LLM.Provider, want.LLM.Model, cfg.LLM.Provider, cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != want.LLM.Timeout {
		t.Errorf("Expected timeout %v, got %v", want.LLM.Timeout, cfg.LLM.Timeout)
	}
	if cfg.Counter.MaxChars != 280 {
		t.Errorf("Expected max_chars 280, got %d", cfg.Counter.MaxChars)
	}
	if cfg.Server.LegacySelector != "constrained" {
		t.Errorf("Expected legacy selector constrained, got %q", cfg.Server.LegacySelector)
	}
}

func TestDecodeConfig_FileOverrides(t *testing.T) {
	v := newViper(t, `
llm:
  provider: anthropic
  model: claude-sonnet-4-5
  timeout: 90s
prompt:
  scope_strategy: query
counter:
  enabled: false
server:
  addr: 127.0.0.1:9000
`)

	cfg, err := decodeConfig(v, env(map[string]string{"ANTHROPIC_API_KEY": "sk-ant-abc"}))
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}

	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("Expected provider anthropic, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout != 90*time.Second {
		t.Errorf("Expected timeout 90s, got %v", cfg.LLM.Timeout)
	}
	if cfg.Prompt.ScopeStrategy != "query" {
		t.Errorf("Expected query strategy, got %s", cfg.Prompt.ScopeStrategy)
	}
	if cfg.Counter.Enabled {
		t.Error("Expected counter disabled")
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Expected addr 127.0.0.1:9000, got %s", cfg.Server.Addr)
	}
	if cfg.LLM.APIKey != "sk-ant-abc" {
		t.Errorf("Expected key from ANTHROPIC_API_KEY, got %q", cfg.LLM.APIKey)
	}
}

func TestDecodeConfig_Invalid(t *testing.T) {
	v := newViper(t, `
prompt:
  scope_strategy: everywhere
`)
	if _, err := decodeConfig(v, env(nil)); err == nil {
		t.Fatal("Expected validation error for unknown scope strategy")
	}
}

func TestApplyEnvKeys(t *testing.T) {
	vars := map[string]string{
		"OPENAI_API_KEY":    "sk-proj-openai",
		"ANTHROPIC_API_KEY": "sk-ant-anthropic",
		"GOOGLE_API_KEY":    "google",
		"OLLAMA_BASE_URL":   "http://gpu-box:11434",
	}

	tests := []struct {
		provider    string
		existingKey string
		wantKey     string
		wantBaseURL string
	}{
		{"openai", "", "sk-proj-openai", ""},
		{"anthropic", "", "sk-ant-anthropic", ""},
		{"claude", "", "sk-ant-anthropic", ""},
		{"gemini", "", "google", ""},
		{"ollama", "", "", "http://gpu-box:11434"},
		{"openai", "sk-proj-explicit", "sk-proj-explicit", ""},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.existingKey, func(t *testing.T) {
			cfg := model.DefaultConfig()
			cfg.LLM.Provider = tt.provider
			cfg.LLM.APIKey = tt.existingKey

			applyEnvKeys(cfg, env(vars))

			if cfg.LLM.APIKey != tt.wantKey {
				t.Errorf("Expected key %q, got %q", tt.wantKey, cfg.LLM.APIKey)
			}
			if cfg.LLM.BaseURL != tt.wantBaseURL {
				t.Errorf("Expected base URL %q, got %q", tt.wantBaseURL, cfg.LLM.BaseURL)
			}
			if cfg.Transcribe.APIKey != "sk-proj-openai" {
				t.Errorf("Expected transcription key from OPENAI_API_KEY, got %q", cfg.Transcribe.APIKey)
			}
		})
	}
}

func TestSelectorFromFlags(t *testing.T) {
	tests := []struct {
		name           string
		category       string
		constrained    bool
		constrainedSet bool
		want           scope.Selector
	}{
		{"category", " Medicine ", false, false, scope.Medicine},
		{"category beats flag", "research", true, true, scope.Research},
		{"flag on", "", true, true, scope.Constrained},
		{"flag off", "", false, true, scope.Unconstrained},
		{"nothing", "", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selectorFromFlags(tt.category, tt.constrained, tt.constrainedSet); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".factcheck", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.Contains(string(data), "api_key") {
		t.Error("Config file must not contain API keys")
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Config file is not valid YAML: %v", err)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("Expected provider openai, got %s", cfg.LLM.Provider)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected error when config already exists")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected unchanged, got %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("Expected abcd…, got %q", got)
	}
}

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/logging"
	"github.com/ppiankov/factcheck/internal/model"
)

const version = "0.1.0"

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factcheck",
	Short: "Factcheck - claim verdicts from language models, scoped to curated sources",
	Long: `Factcheck asks a language model whether a claim is true, restricting the
sources it may cite to a small curated list per topic.

For claims judged false it also drafts a short, respectful correction
suitable for a social media reply.

Verdicts are model output. Read the cited sources before relying on them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetBool("output.verbose"))
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of factcheck.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("factcheck v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.factcheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider (openai, anthropic, ollama, gemini)")
	rootCmd.PersistentFlags().String("model", "", "LLM model name")
	rootCmd.PersistentFlags().Duration("llm-timeout", 0, "timeout for each model call")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("llm.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("llm.timeout", rootCmd.PersistentFlags().Lookup("llm-timeout"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and ENV variables
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}

	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.factcheck")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match FACTCHECK_*
	viper.SetEnvPrefix("FACTCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars and Unmarshal see it
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("llm.provider", cfg.LLM.Provider)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", cfg.LLM.BaseURL)
	v.SetDefault("llm.timeout", cfg.LLM.Timeout)
	v.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	v.SetDefault("llm.temperature", cfg.LLM.Temperature)
	v.SetDefault("llm.http_proxy", "")
	v.SetDefault("llm.https_proxy", "")
	v.SetDefault("llm.no_proxy", "")

	v.SetDefault("credential.prefix", cfg.Credential.Prefix)
	v.SetDefault("credential.skip_prefix", cfg.Credential.SkipPrefix)

	v.SetDefault("prompt.scope_strategy", cfg.Prompt.ScopeStrategy)

	v.SetDefault("scope.enabled", cfg.Scope.Enabled)
	v.SetDefault("scope.default", cfg.Scope.Default)

	v.SetDefault("authority.primary_domains", cfg.Authority.PrimaryDomains)
	v.SetDefault("authority.secondary_domains", cfg.Authority.SecondaryDomains)
	v.SetDefault("authority.domain_map", map[string]string{})
	v.SetDefault("authority.path_patterns", cfg.Authority.PathPatterns)

	v.SetDefault("counter.enabled", cfg.Counter.Enabled)
	v.SetDefault("counter.max_chars", cfg.Counter.MaxChars)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.legacy_selector", cfg.Server.LegacySelector)
	v.SetDefault("server.request_timeout", cfg.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.max_claim_bytes", cfg.Server.MaxClaimBytes)

	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	v.SetDefault("transcribe.model", cfg.Transcribe.Model)
	v.SetDefault("transcribe.language", cfg.Transcribe.Language)
	v.SetDefault("transcribe.api_key", "")
	v.SetDefault("transcribe.base_url", "")

	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.color", cfg.Output.Color)
}

// loadConfig merges defaults, config file, env vars and flags into a
// validated Config. Provider API keys come from their usual env vars when
// not set explicitly.
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper(), os.Getenv)
}

func decodeConfig(v *viper.Viper, getenv func(string) string) (*model.Config, error) {
	// Every key has a viper default, so decode into a zero Config; decoding
	// over DefaultConfig would keep stale tail elements of shorter lists.
	cfg := &model.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyEnvKeys(cfg, getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvKeys fills credentials from the conventional provider env vars
func applyEnvKeys(cfg *model.Config, getenv func(string) string) {
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = getenv("ANTHROPIC_API_KEY")
		case "gemini":
			cfg.LLM.APIKey = getenv("GEMINI_API_KEY")
			if cfg.LLM.APIKey == "" {
				cfg.LLM.APIKey = getenv("GOOGLE_API_KEY")
			}
		}
	}

	if cfg.LLM.Provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
	}

	// Whisper always goes to OpenAI
	if cfg.Transcribe.APIKey == "" {
		cfg.Transcribe.APIKey = getenv("OPENAI_API_KEY")
	}
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/pipeline"
	"github.com/ppiankov/factcheck/internal/scope"
	"github.com/ppiankov/factcheck/internal/transcribe"
)

var (
	outJSON       string
	outMD         string
	category      string
	constrained   bool
	audioPath     string
	checkTimeout  time.Duration
	noCounter     bool
	scopeStrategy string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [claim]",
	Short: "Check a single claim and draft a correction if it is false",
	Long: `Check asks the configured language model for a verdict on a claim:
- Restrict sources to the curated domains of a category (or the constrained set)
- Classify the verdict as false or not
- For false claims, draft a correction under 280 characters
- List the links the model cited, flagging those outside the allowed sources

Example:
  factcheck check "Vaccines cause autism" --category public_health
  factcheck check "The minimum wage doubled last year" --constrained
  factcheck check --audio clip.wav --category medicine --json verdict.json`,
	Args: cobra.ArbitraryArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Scope flags
	checkCmd.Flags().StringVarP(&category, "category", "c", "", "source category ("+categoryList()+")")
	checkCmd.Flags().BoolVar(&constrained, "constrained", false, "restrict sources to the constrained set (ignored with --category)")
	checkCmd.Flags().StringVar(&scopeStrategy, "scope-strategy", "", "where the source restriction goes (system, query)")

	// Input flags
	checkCmd.Flags().StringVar(&audioPath, "audio", "", "transcribe this audio file and check the transcript")

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 3*time.Minute, "overall check timeout")
	checkCmd.Flags().BoolVar(&noCounter, "no-counter", false, "skip the counter-argument for false claims")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCounter {
		cfg.Counter.Enabled = false
	}
	if scopeStrategy != "" {
		cfg.Prompt.ScopeStrategy = scopeStrategy
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	sel := selectorFromFlags(category, constrained, cmd.Flags().Changed("constrained"))

	p, err := pipeline.FromConfig(ctx, cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Provider: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "Sources:  %s\n", scope.Resolve(sel))
		fmt.Fprintln(os.Stderr)
	}

	var out *model.Outcome
	if audioPath != "" {
		transcript, err := transcribeAudio(ctx, cfg, audioPath)
		if err != nil {
			return err
		}
		out = p.CheckTranscript(ctx, transcript, sel)
	} else {
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Asking for a verdict...\n")
		}
		out = p.Check(ctx, strings.Join(args, " "), sel)
	}

	p.Renderer().RenderSummary(os.Stdout, out)

	// Render outputs
	if outJSON != "" {
		if err := p.Renderer().RenderJSON(out, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
	}
	if outMD != "" {
		if err := p.Renderer().RenderMarkdown(out, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outMD)
	}

	switch out.Status {
	case model.StatusCredentialError, model.StatusServiceError:
		return fmt.Errorf("check failed (%s)", out.Status)
	}
	return nil
}

func transcribeAudio(ctx context.Context, cfg *model.Config, path string) (string, error) {
	tr, err := transcribe.NewOpenAITranscriber(transcribe.Config{
		APIKey:     cfg.Transcribe.APIKey,
		BaseURL:    cfg.Transcribe.BaseURL,
		Model:      cfg.Transcribe.Model,
		Language:   cfg.Transcribe.Language,
		HTTPProxy:  cfg.LLM.HTTPProxy,
		HTTPSProxy: cfg.LLM.HTTPSProxy,
		NoProxy:    cfg.LLM.NoProxy,
	})
	if err != nil {
		return "", err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Transcribing %s...\n", path)
	}
	text, err := tr.Transcribe(ctx, path)
	if err != nil {
		return "", err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Transcribed %d characters\n", len([]rune(text)))
	}
	return text, nil
}

// selectorFromFlags picks the category when given, else the constrained
// flag when it was set explicitly, else nothing (config default applies).
func selectorFromFlags(cat string, constrained, constrainedSet bool) scope.Selector {
	if sel := scope.Normalize(cat); sel != "" {
		return sel
	}
	if constrainedSet {
		return scope.FromFlag(constrained)
	}
	return ""
}

func categoryList() string {
	cats := scope.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/pipeline"
	"github.com/ppiankov/factcheck/internal/report"
	"github.com/ppiankov/factcheck/internal/scope"
	"github.com/ppiankov/factcheck/internal/worker"
)

var (
	batchCategory string
	batchReports  []string
	batchTimeout  time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check many claims from a file in parallel",
	Long: `Batch checks claims concurrently:
- Read claims from input file (one per line, # comments allowed)
- A line may start with a category and a tab to override --category
- Check claims in parallel with configurable worker count
- Write a report per --out path (.jsonl, .csv or .xlsx)

Example:
  factcheck batch claims.txt
  factcheck batch claims.txt --concurrency 8 --out results.xlsx
  factcheck batch claims.txt --category public_health --out a.jsonl --out a.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().Int("concurrency", 4, "number of concurrent workers")
	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("concurrency"))
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().StringVarP(&batchCategory, "category", "c", "", "default source category for lines without one")
	batchCmd.Flags().StringArrayVarP(&batchReports, "out", "o", []string{"factcheck-report.jsonl"}, "report path (.jsonl, .csv, .xlsx); repeatable")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	workers := cfg.Concurrency.Workers

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Factcheck Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "  Reports:      %v\n", batchReports)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.FromConfig(ctx, cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	// Fail before any model call if the key is unusable
	if err := pipeline.CheckCredential(cfg.LLM, cfg.Credential); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "⚙️  Reading claims from file...\n")
	items, err := worker.ReadClaimsFromFile(file, scope.Normalize(batchCategory))
	if err != nil {
		return fmt.Errorf("read claims: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d claims\n", len(items))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Checking claims with %d workers...\n", workers)
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(p, workers)
	outcomes := processor.ProcessClaims(ctx, items)

	var falseCount, trueCount, failureCount int
	for _, out := range outcomes {
		switch {
		case out.Status != model.StatusOK:
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", truncate(out.Claim, 60), out.Verdict)
		case out.IsFalse:
			falseCount++
			fmt.Fprintf(os.Stderr, "✓ %s → false\n", truncate(out.Claim, 60))
		default:
			trueCount++
			fmt.Fprintf(os.Stderr, "✓ %s → not false\n", truncate(out.Claim, 60))
		}
	}

	for _, path := range batchReports {
		if err := report.WriteFile(path, outcomes); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:       %d claims\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  False:       %d\n", falseCount)
	fmt.Fprintf(os.Stderr, "  Not false:   %d\n", trueCount)
	fmt.Fprintf(os.Stderr, "  Failures:    %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Reports:     %v\n", batchReports)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// truncate shortens s to n runes for status lines
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

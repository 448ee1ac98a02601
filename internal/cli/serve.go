package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/factcheck/internal/observability"
	"github.com/ppiankov/factcheck/internal/pipeline"
	"github.com/ppiankov/factcheck/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the checker over HTTP",
	Long: `Serve exposes the checker over HTTP:
- GET  /smc/?user_input=...   legacy endpoint, returns {"message": verdict}
- POST /api/v1/check          {"claim": "...", "category": "..."}
- GET  /api/v1/categories     curated source lists
- GET  /healthz, /metrics

Example:
  factcheck serve
  factcheck serve --addr 127.0.0.1:8080 --provider anthropic`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":7860", "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p, err := pipeline.FromConfig(ctx, cfg,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(observability.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}

	// A bad key is reported per request; warn once at startup
	if err := pipeline.CheckCredential(cfg.LLM, cfg.Credential); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Using %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "✓ Listening on %s\n", cfg.Server.Addr)

	srv := server.New(p, cfg.Server,
		server.WithLogger(logger),
		server.WithGatherer(reg),
	)
	return srv.Run(ctx)
}

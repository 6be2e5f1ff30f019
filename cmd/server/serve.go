package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/ai-debugger/internal/config"
	"github.com/sakif/ai-debugger/internal/server"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the debugger web server",
	Long: `Start the HTTP server.

The editor page is served at /, the API at POST /debug, liveness at /health
and Prometheus metrics at /metrics.

Examples:
  ai-debugger serve
  ai-debugger serve --port 9090
  GEMINI_API_KEY=... ai-debugger`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFileFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if portFlag > 0 {
		cfg.Port = portFlag
	}

	logger := newLogger(cfg, os.Stdout)

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		CORSOrigins:    cfg.Origins(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		AIAvailable:    cfg.AIAvailable(),
		RequestBudget:  cfg.Python().Timeout + cfg.Python().ParseTimeout + cfg.ExplainTimeout(),
	}, server.Deps{
		Debugger: a.debug,
		Metrics:  a.metrics,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until SIGINT or SIGTERM.
	return srv.Start()
}

// Package main is the entry point for the AI Python debugger.
//
// The cmd/ directory is the Go convention for executable entry points. main
// stays minimal: it reads configuration, builds the dependency graph and hands
// over to internal/server (serve) or runs one snippet locally (check).
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/ai-debugger/internal/config"
	"github.com/sakif/ai-debugger/internal/executor/python"
	"github.com/sakif/ai-debugger/internal/explain"
	"github.com/sakif/ai-debugger/internal/metrics"
	"github.com/sakif/ai-debugger/internal/service"
)

var envFileFlag string

// errSnippetFailed makes `check` exit non-zero without printing anything
// beyond the report.
var errSnippetFailed = errors.New("snippet failed")

var rootCmd = &cobra.Command{
	Use:   "ai-debugger",
	Short: "AI Python Debugger - run Python snippets and explain what went wrong",
	Long: `ai-debugger validates a Python snippet, runs it in a time-bounded child
process and asks an OpenAI-compatible model (Gemini by default) to explain
any error to a beginner.

Without a subcommand it starts the HTTP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "dotenv file to load (default .env)")
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides PORT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSnippetFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// newLogger builds the process-wide logger from LOG_LEVEL and LOG_FORMAT.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel() // already validated by config.Load
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

// app is the assembled dependency graph shared by serve and check.
type app struct {
	debug   *service.DebugService
	metrics *metrics.Collector
}

// buildApp wires executor → pipeline → explainer → service.
//
// A missing API key is not fatal: explanations degrade to a fixed message and
// /health reports ai_available=false.
func buildApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	py, err := python.New(cfg.Python(), logger)
	if err != nil {
		return nil, fmt.Errorf("starting python executor: %w", err)
	}

	m := metrics.New()
	m.RegisterInFlight(py.Slots().InUse)

	var explainer explain.Explainer = explain.Unavailable{}
	if cfg.AIAvailable() {
		ai, err := explain.NewOpenAIExplainer(cfg.OpenAI(), logger)
		if err != nil {
			return nil, fmt.Errorf("creating explainer: %w", err)
		}
		explainer = ai
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI explanations are disabled")
	}
	explainer = explain.NewGuarded(explainer, cfg.ExplainTimeout(), logger)

	pipeline := service.NewPipeline(py, py)
	debug := service.NewDebugService(pipeline, explainer, m,
		service.DebugConfig{ExplainSuccess: cfg.ExplainSuccess}, logger)

	return &app{debug: debug, metrics: m}, nil
}

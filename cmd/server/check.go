package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/ai-debugger/internal/config"
	"github.com/sakif/ai-debugger/internal/handler"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.py>",
	Short: "Debug one Python file locally and print the report as JSON",
	Long: `Run a file through the same validate, execute and explain steps as
POST /debug and print the response body. Use "-" to read from stdin.

The exit status is 0 when the snippet ran cleanly and 1 otherwise.

Examples:
  ai-debugger check broken.py
  echo 'print(1/0)' | ai-debugger check -`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFileFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// Logs go to stderr so stdout stays valid JSON.
	logger := newLogger(cfg, cmd.ErrOrStderr())

	code, err := readSource(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	report, err := a.debug.Debug(cmd.Context(), code)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(handler.NewDebugResponse(report)); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if !report.Execution.Success {
		return errSnippetFailed
	}
	return nil
}

func readSource(stdin io.Reader, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}

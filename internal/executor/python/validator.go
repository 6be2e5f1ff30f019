package python

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/sakif/ai-debugger/internal/executor"
)

// checkerScript compiles the snippet read from stdin and reports the first
// parse failure as JSON. compile() builds a code object without running it.
const checkerScript = `
import json, sys
src = sys.stdin.buffer.read()
try:
    compile(src, '<string>', 'exec', dont_inherit=True)
except SyntaxError as e:
    out = {"type": type(e).__name__, "message": str(e), "line": e.lineno or 0,
           "offset": e.offset or 0, "text": e.text or ""}
except Exception as e:
    out = {"type": type(e).__name__, "message": str(e), "line": 0, "offset": 0, "text": ""}
else:
    out = {"type": ""}
sys.stdout.write(json.dumps(out))
`

var _ executor.Validator = (*Executor)(nil)

// Validate parses code with the configured interpreter without executing it.
func (e *Executor) Validate(ctx context.Context, code string) (*executor.SyntaxError, error) {
	release, err := e.slots.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	parseCtx, cancel := context.WithTimeout(ctx, e.config.ParseTimeout)
	defer cancel()

	// -I: isolated mode, ignores PYTHON* env vars and the user site directory.
	// -S: skip the site module, which keeps start-up fast.
	cmd := exec.CommandContext(parseCtx, e.interpreter, "-I", "-S", "-c", checkerScript)
	cmd.Dir = e.config.WorkDir
	cmd.Env = e.env()
	cmd.Stdin = strings.NewReader(code)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	proc, err := startGroup(cmd, e.config.KillGrace)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", executor.ErrSpawn, err)
	}
	waitErr := proc.wait()

	if waitErr != nil && parseCtx.Err() != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("python: syntax check canceled: %w", ctx.Err())
		}
		e.logger.Warn("syntax check timed out", slog.Duration("timeout", e.config.ParseTimeout))
		return &executor.SyntaxError{
			Type:    "SyntaxError",
			Message: fmt.Sprintf("code could not be parsed within %s", e.config.ParseTimeout),
		}, nil
	}
	if waitErr != nil {
		return nil, fmt.Errorf("python: syntax checker exited with status %d: %w", proc.exitCode(), waitErr)
	}

	var diag executor.SyntaxError
	if err := json.NewDecoder(&stdout).Decode(&diag); err != nil {
		return nil, fmt.Errorf("python: decoding syntax checker output: %w", err)
	}
	if diag.Type == "" {
		return nil, nil
	}
	return &diag, nil
}

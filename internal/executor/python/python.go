// Package python runs Python snippets in short-lived child processes.
//
// Each call gets its own scratch directory and its own process group. A
// timed-out group is terminated, then killed after a grace period, and any
// descendant still alive after the leader exits is killed as well. On Linux
// descendants that moved to a new session are found through a per-run
// environment marker (RunMarkerEnv); one that also clears its environment
// escapes the sweep. There is no seccomp, namespace or container isolation:
// the child has the same privileges as the server.
package python

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/ai-debugger/internal/executor"
)

// Executor implements executor.Executor and executor.Validator on top of a
// local Python interpreter.
type Executor struct {
	interpreter string
	config      Config
	logger      *slog.Logger
	slots       *Slots
}

var _ executor.Executor = (*Executor)(nil)

// New resolves the interpreter and checks that it starts.
func New(cfg Config, logger *slog.Logger) (*Executor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	path, err := exec.LookPath(cfg.Interpreter)
	if err != nil {
		return nil, fmt.Errorf("%w: interpreter %q not found: %w", executor.ErrSpawn, cfg.Interpreter, err)
	}

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("python: creating work dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	version, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: running %s --version: %w", executor.ErrSpawn, path, err)
	}

	logger.Info("python interpreter is ready",
		slog.String("path", path),
		slog.String("version", strings.TrimSpace(string(version))),
		slog.Duration("timeout", cfg.Timeout),
		slog.Int("maxOutput", cfg.MaxOutput),
		slog.Int64("maxConcurrent", cfg.MaxConcurrent),
	)

	return &Executor{
		interpreter: path,
		config:      cfg,
		logger:      logger,
		slots:       NewSlots(cfg.MaxConcurrent, logger),
	}, nil
}

// Slots exposes the process limiter so callers can report its usage.
func (e *Executor) Slots() *Slots {
	return e.slots
}

// Execute runs the provided Python code in a fresh child process.
func (e *Executor) Execute(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	release, err := e.slots.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	dir, script, err := e.prepare(req.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", executor.ErrSpawn, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove scratch dir", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}()

	limit := e.effectiveLimit(ctx)
	runCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	// -u: unbuffered streams. -B: no .pyc files in the scratch dir.
	cmd := exec.CommandContext(runCtx, e.interpreter, "-u", "-B", script)
	cmd.Dir = dir
	cmd.Env = e.env()

	stdout := newCappedBuffer(e.config.MaxOutput)
	stderr := newCappedBuffer(e.config.MaxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	proc, err := startGroup(cmd, e.config.KillGrace)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", executor.ErrSpawn, err)
	}
	e.logger.Debug("python process started", slog.Int("pid", cmd.Process.Pid), slog.String("dir", dir))

	waitErr := proc.wait()
	duration := time.Since(start)

	if waitErr != nil && runCtx.Err() != nil {
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("python: execution canceled: %w", ctx.Err())
		}
		e.logger.Info("python execution timed out", slog.Duration("duration", duration))
		// Partial output at kill time is torn, so it is dropped.
		return &executor.ExecutionResult{
			Success:  false,
			Kind:     executor.KindTimeout,
			Error:    timeoutMessage(limit),
			ExitCode: proc.exitCode(),
			Duration: duration,
		}, nil
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return nil, fmt.Errorf("python: waiting for process: %w", waitErr)
	}

	res := classify(proc.exitCode(), stdout, stderr, e.config.MaxOutput)
	res.Duration = duration

	e.logger.Info("python execution completed",
		slog.String("kind", string(res.Kind)),
		slog.Int("exitCode", res.ExitCode),
		slog.Bool("truncated", res.OutputTruncated),
		slog.Duration("duration", duration),
	)
	return res, nil
}

// classify maps a finished process onto the closed set of outcomes.
func classify(exitCode int, stdout, stderr *cappedBuffer, maxOutput int) *executor.ExecutionResult {
	out, outCut := stdout.text(maxOutput)
	errText, _ := stderr.text(maxOutput)

	res := &executor.ExecutionResult{
		Output:          out,
		OutputTruncated: outCut,
		ExitCode:        exitCode,
	}

	if exitCode == 0 && errText == "" {
		res.Success = true
		res.Kind = executor.KindNone
		return res
	}

	res.Kind = executor.KindRuntime
	res.Error = errText
	if res.Error == "" {
		res.Error = fmt.Sprintf("Process exited with status %d", exitCode)
	}
	return res
}

// prepare writes the snippet into a new scratch directory under WorkDir.
func (e *Executor) prepare(code string) (dir, script string, err error) {
	dir = filepath.Join(e.config.WorkDir, "run-"+xid.New().String())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", "", fmt.Errorf("creating scratch dir: %w", err)
	}

	script = filepath.Join(dir, "main.py")
	if err := os.WriteFile(script, []byte(code), 0o600); err != nil {
		os.RemoveAll(dir)
		return "", "", fmt.Errorf("writing snippet: %w", err)
	}
	return dir, script, nil
}

func (e *Executor) env() []string {
	return []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		"LANG=C.UTF-8",
		"PYTHONIOENCODING=utf-8",
		"PYTHONDONTWRITEBYTECODE=1",
	}
}

// effectiveLimit is the configured timeout, or the time left before the
// caller's own deadline when that comes first.
func (e *Executor) effectiveLimit(ctx context.Context) time.Duration {
	limit := e.config.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < limit {
			limit = max(left, 0)
		}
	}
	return limit
}

func timeoutMessage(limit time.Duration) string {
	shown := limit.Round(100 * time.Millisecond)
	if shown <= 0 {
		shown = limit
	}
	secs := strconv.FormatFloat(shown.Seconds(), 'f', -1, 64)
	return fmt.Sprintf("Code execution timed out (>%s seconds). Possible infinite loop?", secs)
}

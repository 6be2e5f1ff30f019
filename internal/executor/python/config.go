package python

import (
	"fmt"
	"os"
	"time"
)

// Config holds the configuration for subprocess execution.
//
// The only containment is a separate OS process group plus the wall-clock
// timeout. The child runs with the same user, filesystem and network access
// as the server itself.
type Config struct {
	// Interpreter is the Python binary, looked up on PATH when not absolute.
	Interpreter string
	// Timeout is the wall-clock limit for one execution, measured from process start.
	Timeout time.Duration
	// KillGrace is how long a timed-out process group gets between SIGTERM and SIGKILL.
	KillGrace time.Duration
	// ParseTimeout bounds the syntax check. No user code runs during it.
	ParseTimeout time.Duration
	// MaxOutput is the number of characters kept from each output stream.
	MaxOutput int
	// MaxConcurrent is the number of interpreter processes allowed at once.
	MaxConcurrent int64
	// WorkDir is the parent directory for per-run scratch directories.
	WorkDir string
}

// DefaultConfig provides sensible defaults for a Python sandbox.
func DefaultConfig() Config {
	return Config{
		Interpreter:   "python3",
		Timeout:       5 * time.Second,
		KillGrace:     500 * time.Millisecond,
		ParseTimeout:  2 * time.Second,
		MaxOutput:     2000,
		MaxConcurrent: 8,
		WorkDir:       os.TempDir(),
	}
}

func (c Config) validate() error {
	switch {
	case c.Interpreter == "":
		return fmt.Errorf("python: interpreter is required")
	case c.Timeout <= 0:
		return fmt.Errorf("python: timeout must be positive, got %s", c.Timeout)
	case c.KillGrace <= 0:
		return fmt.Errorf("python: kill grace must be positive, got %s", c.KillGrace)
	case c.ParseTimeout <= 0:
		return fmt.Errorf("python: parse timeout must be positive, got %s", c.ParseTimeout)
	case c.MaxOutput <= 0:
		return fmt.Errorf("python: max output must be positive, got %d", c.MaxOutput)
	case c.MaxConcurrent <= 0:
		return fmt.Errorf("python: max concurrent must be positive, got %d", c.MaxConcurrent)
	}
	return nil
}

// Package executor defines the types shared by the syntax validator, the
// sandboxed executor and the pipeline that sequences them.
//
// The package holds no implementation. Concrete validators and executors live
// in sub-packages (see executor/python) so that the service layer can be tested
// with stubs that satisfy the same interfaces.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrorKind classifies the outcome of one pipeline run.
// The set is closed: callers switch on it instead of inspecting error text.
type ErrorKind string

const (
	KindNone    ErrorKind = "none"
	KindSyntax  ErrorKind = "syntax"
	KindRuntime ErrorKind = "runtime"
	KindTimeout ErrorKind = "timeout"
)

// ErrSpawn marks infrastructure failures: the interpreter could not be
// started at all. These are not one of the four classified kinds and surface
// as a generic service error.
var ErrSpawn = errors.New("executor: failed to start process")

// ExecutionRequest represents a request to execute Python code.
type ExecutionRequest struct {
	Code string `json:"code"`
}

// SyntaxError is a parser diagnostic. Line and Offset are 0 when the parser
// did not report a position; Text is the offending source line, if any.
type SyntaxError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Offset  int    `json:"offset"`
	Text    string `json:"text,omitempty"`
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Diagnostic renders the error the way the interpreter prints it: the
// message, then the offending line with a caret under the reported offset.
func (e *SyntaxError) Diagnostic() string {
	var b strings.Builder
	b.WriteString(e.Error())

	line := strings.TrimRight(e.Text, "\r\n")
	stripped := strings.TrimLeft(line, " \t")
	if stripped == "" {
		return b.String()
	}
	b.WriteString("\n    ")
	b.WriteString(stripped)

	if e.Offset > 0 {
		indent := utf8.RuneCountInString(line) - utf8.RuneCountInString(stripped)
		col := e.Offset - 1 - indent
		if col < 0 {
			col = 0
		}
		b.WriteString("\n    ")
		b.WriteString(strings.Repeat(" ", col))
		b.WriteString("^")
	}
	return b.String()
}

// ExecutionResult represents the output and status of the code execution.
//
// Success is true exactly when Kind is KindNone, and Error is empty in that case.
type ExecutionResult struct {
	Success         bool          `json:"success"`
	Output          string        `json:"output"`
	Error           string        `json:"error,omitempty"`
	Kind            ErrorKind     `json:"errorKind"`
	OutputTruncated bool          `json:"outputTruncated"`
	ExitCode        int           `json:"exitCode"`
	Line            int           `json:"line,omitempty"`
	Duration        time.Duration `json:"duration"`
}

// Validator checks code without running it.
//
// It returns (nil, nil) for valid code and a *SyntaxError for invalid code.
// A non-nil error is reserved for infrastructure problems.
type Validator interface {
	Validate(ctx context.Context, code string) (*SyntaxError, error)
}

// Executor represents the core interface for running code in an isolated environment.
//
// Runtime faults and timeouts are reported inside the result. A non-nil error
// means the code could not be run at all.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
}

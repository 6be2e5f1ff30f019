// Package explain turns an execution outcome into student-facing guidance.
//
// The text-generation service is reached through the Explainer interface so
// that the debug flow can run against a stub in tests, and so that Guarded
// can put a deadline and a fallback around whatever implementation is wired in.
package explain

import (
	"context"

	"github.com/sakif/ai-debugger/internal/executor"
)

// Where a Result came from. Only used for logging and metrics.
const (
	SourceAI          = "ai"
	SourceFallback    = "fallback"
	SourceUnavailable = "unavailable"
	SourceStatic      = "static"
)

// Request is what the collaborator gets to see: the snippet and how it ran.
type Request struct {
	Code      string
	Execution executor.ExecutionResult
}

// Result is opaque text. SuggestedFix and FixExplanation are nil when the
// model offered no fix.
type Result struct {
	Explanation    string
	SuggestedFix   *string
	FixExplanation *string
	Source         string
}

// Explainer produces an explanation for one execution.
type Explainer interface {
	Explain(ctx context.Context, req Request) (*Result, error)
}

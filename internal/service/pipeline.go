// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Executor (Process layer) → parses and runs code in a child process
//
// Pipeline is the strict validate-then-execute gate. DebugService sits on top
// of it and adds request validation, the explanation step and metrics. Both
// depend on interfaces only (executor.Validator, executor.Executor,
// explain.Explainer) so the tests in this package never start a process.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/ai-debugger/internal/executor"
)

// Pipeline runs the validator and, only if the code parses, the executor.
// There are no retries at either stage.
type Pipeline struct {
	validator executor.Validator
	executor  executor.Executor
}

// NewPipeline creates a new Pipeline.
func NewPipeline(v executor.Validator, e executor.Executor) *Pipeline {
	return &Pipeline{validator: v, executor: e}
}

// Run classifies one snippet.
//
// A syntax error short-circuits with KindSyntax and the executor is never
// called. Otherwise the executor's result is returned as is. The returned
// error is reserved for infrastructure failures.
func (p *Pipeline) Run(ctx context.Context, code string) (*executor.ExecutionResult, error) {
	start := time.Now()

	diag, err := p.validator.Validate(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("validating code: %w", err)
	}
	if diag != nil {
		return &executor.ExecutionResult{
			Success:  false,
			Error:    diag.Diagnostic(),
			Kind:     executor.KindSyntax,
			ExitCode: -1,
			Line:     diag.Line,
			Duration: time.Since(start),
		}, nil
	}

	res, err := p.executor.Execute(ctx, executor.ExecutionRequest{Code: code})
	if err != nil {
		return nil, fmt.Errorf("executing code: %w", err)
	}
	return res, nil
}

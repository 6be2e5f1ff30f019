package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/ai-debugger/internal/apperror"
	"github.com/sakif/ai-debugger/internal/executor"
	"github.com/sakif/ai-debugger/internal/explain"
)

const (
	// MaxCodeLength caps the snippet size in characters.
	MaxCodeLength = 100000

	// SuccessMessage is the explanation shown for clean runs when the
	// collaborator is not asked about them.
	SuccessMessage = "Code executed successfully! 🎉"

	internalMessage = "An unexpected error occurred. Please try again."
)

// Recorder receives pipeline and explanation observations.
// *metrics.Collector satisfies it.
type Recorder interface {
	ObserveExecution(kind string, d time.Duration)
	ObserveExplanation(source string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveExecution(string, time.Duration)   {}
func (nopRecorder) ObserveExplanation(string, time.Duration) {}

// DebugConfig holds the knobs of the debug flow.
type DebugConfig struct {
	// ExplainSuccess asks the collaborator to describe programs that ran
	// cleanly instead of returning SuccessMessage.
	ExplainSuccess bool
}

// DebugReport is everything the caller needs for one response.
type DebugReport struct {
	Execution   executor.ExecutionResult
	Explanation explain.Result
}

// DebugService validates a request, runs it through the Pipeline and attaches
// an explanation.
type DebugService struct {
	pipeline  *Pipeline
	explainer explain.Explainer
	recorder  Recorder
	config    DebugConfig
	logger    *slog.Logger
}

// NewDebugService creates a DebugService. explainer should never fail or
// block for long; wrap real implementations in explain.Guarded. A nil
// recorder disables metrics.
func NewDebugService(pipeline *Pipeline, explainer explain.Explainer, recorder Recorder, cfg DebugConfig, logger *slog.Logger) *DebugService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &DebugService{
		pipeline:  pipeline,
		explainer: explainer,
		recorder:  recorder,
		config:    cfg,
		logger:    logger,
	}
}

// Debug runs code and explains the outcome.
//
// Request-level problems come back as apperror.ErrValidation. Failures to run
// the interpreter at all come back as apperror.ErrInternal. Everything the
// code itself does, including failing to parse or looping forever, is a
// successful call with the classification inside the report.
func (s *DebugService) Debug(ctx context.Context, code string) (*DebugReport, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.ValidationFailed("code", "No code provided")
	}
	if utf8.RuneCountInString(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}

	start := time.Now()
	res, err := s.pipeline.Run(ctx, code)
	if err != nil {
		s.recorder.ObserveExecution("error", time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperror.Unavailable("The request was cancelled before the code finished running.")
		}
		s.logger.Error("pipeline failed", slog.String("error", err.Error()))
		return nil, apperror.Internal(internalMessage, err)
	}
	s.recorder.ObserveExecution(string(res.Kind), time.Since(start))

	s.logger.Info("code executed",
		slog.String("kind", string(res.Kind)),
		slog.Int("exitCode", res.ExitCode),
		slog.Bool("truncated", res.OutputTruncated),
		slog.Duration("duration", res.Duration),
	)

	expl := s.explain(ctx, code, res)
	return &DebugReport{Execution: *res, Explanation: *expl}, nil
}

func (s *DebugService) explain(ctx context.Context, code string, res *executor.ExecutionResult) *explain.Result {
	if res.Success && !s.config.ExplainSuccess {
		s.recorder.ObserveExplanation(explain.SourceStatic, 0)
		return &explain.Result{Explanation: SuccessMessage, Source: explain.SourceStatic}
	}

	start := time.Now()
	req := explain.Request{Code: code, Execution: *res}
	out, err := s.explainer.Explain(ctx, req)
	if err != nil || out == nil || strings.TrimSpace(out.Explanation) == "" {
		// The wired explainer is Guarded and never gets here; a bare one might.
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("explainer failed", slog.String("error", err.Error()))
		}
		out = explain.Fallback(req)
	}
	s.recorder.ObserveExplanation(out.Source, time.Since(start))
	return out
}

package explain

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// UnavailableMessage is returned when no API key has been configured.
const UnavailableMessage = "AI explanation unavailable - please set GEMINI_API_KEY environment variable"

// Unavailable stands in for the collaborator when it is not configured.
type Unavailable struct{}

var _ Explainer = Unavailable{}

func (Unavailable) Explain(context.Context, Request) (*Result, error) {
	return &Result{Explanation: UnavailableMessage, Source: SourceUnavailable}, nil
}

// Fallback is the deterministic answer used when the collaborator fails.
func Fallback(req Request) *Result {
	if req.Execution.Success {
		return &Result{
			Explanation: "AI analysis temporarily unavailable. The code ran without errors.",
			Source:      SourceFallback,
		}
	}
	details := req.Execution.Error
	if details == "" {
		details = "Unknown error"
	}
	return &Result{
		Explanation: "AI analysis temporarily unavailable. Error details: " + details,
		Source:      SourceFallback,
	}
}

// Guarded bounds another Explainer with its own deadline and never fails:
// errors, timeouts and empty answers all become Fallback.
type Guarded struct {
	next    Explainer
	timeout time.Duration
	logger  *slog.Logger
}

var _ Explainer = (*Guarded)(nil)

// NewGuarded wraps next. timeout must be positive.
func NewGuarded(next Explainer, timeout time.Duration, logger *slog.Logger) *Guarded {
	return &Guarded{next: next, timeout: timeout, logger: logger}
}

// Explain always returns a non-empty explanation and a nil error. It returns
// by the deadline even if the wrapped explainer ignores its context.
func (g *Guarded) Explain(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type answer struct {
		res *Result
		err error
	}
	done := make(chan answer, 1)
	go func() {
		res, err := g.next.Explain(ctx, req)
		done <- answer{res: res, err: err}
	}()

	select {
	case a := <-done:
		if a.err != nil {
			g.logger.Error("AI analysis failed", slog.String("error", a.err.Error()))
			return Fallback(req), nil
		}
		if a.res == nil || strings.TrimSpace(a.res.Explanation) == "" {
			g.logger.Warn("AI analysis returned no explanation")
			return Fallback(req), nil
		}
		return a.res, nil
	case <-ctx.Done():
		g.logger.Warn("AI analysis timed out", slog.Duration("timeout", g.timeout))
		return Fallback(req), nil
	}
}

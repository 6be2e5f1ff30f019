package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/sakif/ai-debugger/internal/executor"
)

// =========================================================================
// STUBS
// =========================================================================
//
// The pipeline only sees the executor.Validator and executor.Executor
// interfaces, so hand-written stubs let these tests control every outcome
// without a Python interpreter.

type stubValidator struct {
	diag  *executor.SyntaxError
	err   error
	calls int
}

func (s *stubValidator) Validate(_ context.Context, _ string) (*executor.SyntaxError, error) {
	s.calls++
	return s.diag, s.err
}

type stubExecutor struct {
	res      *executor.ExecutionResult
	err      error
	calls    int
	lastCode string
}

func (s *stubExecutor) Execute(_ context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	s.calls++
	s.lastCode = req.Code
	return s.res, s.err
}

// panicExecutor fails the test if the pipeline ever tries to run code.
type panicExecutor struct{ t *testing.T }

func (p panicExecutor) Execute(context.Context, executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	p.t.Fatal("executor must not be invoked after a syntax error")
	return nil, nil
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("syntax error short-circuits", func(t *testing.T) {
		v := &stubValidator{diag: &executor.SyntaxError{
			Type:    "SyntaxError",
			Message: "invalid syntax",
			Line:    1,
			Offset:  7,
			Text:    "def f(:\n",
		}}
		p := NewPipeline(v, panicExecutor{t})

		res, err := p.Run(ctx, "def f(:\n  pass")
		require.NoError(t, err)

		assert.False(t, res.Success)
		assert.Equal(t, executor.KindSyntax, res.Kind)
		assert.Equal(t, 1, res.Line)
		assert.Contains(t, res.Error, "SyntaxError: invalid syntax")
		assert.Contains(t, res.Error, "def f(:")
		assert.Empty(t, res.Output)
	})

	t.Run("valid code adopts executor result verbatim", func(t *testing.T) {
		want := &executor.ExecutionResult{
			Success:  false,
			Output:   "partial\n",
			Error:    "Traceback ...\nZeroDivisionError: division by zero\n",
			Kind:     executor.KindRuntime,
			ExitCode: 1,
		}
		v := &stubValidator{}
		e := &stubExecutor{res: want}
		p := NewPipeline(v, e)

		res, err := p.Run(ctx, "print('partial')\n1/0")
		require.NoError(t, err)

		assert.Same(t, want, res)
		assert.Equal(t, 1, v.calls)
		assert.Equal(t, 1, e.calls)
		assert.Equal(t, "print('partial')\n1/0", e.lastCode)
	})

	t.Run("validator infrastructure error", func(t *testing.T) {
		boom := errors.New("interpreter vanished")
		p := NewPipeline(&stubValidator{err: boom}, panicExecutor{t})

		_, err := p.Run(ctx, "print(1)")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("executor infrastructure error is not retried", func(t *testing.T) {
		e := &stubExecutor{err: executor.ErrSpawn}
		p := NewPipeline(&stubValidator{}, e)

		_, err := p.Run(ctx, "print(1)")
		assert.ErrorIs(t, err, executor.ErrSpawn)
		assert.Equal(t, 1, e.calls)
	})
}

// Any input the validator rejects must come back as a syntax result without
// the executor being touched.
func TestProperty_SyntaxErrorsNeverExecute(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		code := rapid.String().Draw(rt, "code")
		line := rapid.IntRange(0, 1000).Draw(rt, "line")
		offset := rapid.IntRange(0, 200).Draw(rt, "offset")
		typ := rapid.SampledFrom([]string{"SyntaxError", "IndentationError", "TabError", "ValueError"}).Draw(rt, "type")

		e := &stubExecutor{}
		p := NewPipeline(&stubValidator{diag: &executor.SyntaxError{
			Type: typ, Message: "bad", Line: line, Offset: offset, Text: code,
		}}, e)

		res, err := p.Run(context.Background(), code)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if e.calls != 0 {
			rt.Fatalf("executor invoked %d times", e.calls)
		}
		if res.Kind != executor.KindSyntax || res.Success {
			rt.Fatalf("got kind %q success %v", res.Kind, res.Success)
		}
		if res.Line != line {
			rt.Fatalf("line = %d, want %d", res.Line, line)
		}
	})
}

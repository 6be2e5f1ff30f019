package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/ai-debugger/internal/executor"
)

func TestParseResponse(t *testing.T) {
	t.Run("all three sections", func(t *testing.T) {
		res := parseResponse("EXPLANATION: You divided by zero.\nFIXED_CODE:\n```python\nx = 1 / 1\n```\nCHANGES: Use a non-zero divisor.")

		assert.Equal(t, "You divided by zero.", res.Explanation)
		require.NotNil(t, res.SuggestedFix)
		assert.Equal(t, "x = 1 / 1", *res.SuggestedFix)
		require.NotNil(t, res.FixExplanation)
		assert.Equal(t, "Use a non-zero divisor.", *res.FixExplanation)
		assert.Equal(t, SourceAI, res.Source)
	})

	t.Run("no fix available", func(t *testing.T) {
		res := parseResponse("EXPLANATION: It works.\nFIXED_CODE: \"No fix available\"\nCHANGES: Nothing to change.")

		assert.Equal(t, "It works.", res.Explanation)
		assert.Nil(t, res.SuggestedFix)
		require.NotNil(t, res.FixExplanation)
	})

	t.Run("unlabelled answer", func(t *testing.T) {
		res := parseResponse("I am not sure what happened here.")

		assert.Equal(t, "Unable to analyze the error.", res.Explanation)
		assert.Nil(t, res.SuggestedFix)
		assert.Nil(t, res.FixExplanation)
	})

	t.Run("multi-line explanation", func(t *testing.T) {
		res := parseResponse("EXPLANATION: Line one.\nLine two.\nFIXED_CODE: print(1)")

		assert.Equal(t, "Line one.\nLine two.", res.Explanation)
		require.NotNil(t, res.SuggestedFix)
		assert.Equal(t, "print(1)", *res.SuggestedFix)
		assert.Nil(t, res.FixExplanation)
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Run("failure", func(t *testing.T) {
		p := buildPrompt(Request{
			Code: "x = 1 / 0",
			Execution: executor.ExecutionResult{
				Kind:  executor.KindRuntime,
				Error: "ZeroDivisionError: division by zero",
			},
		})

		assert.Contains(t, p, "buggy Python code")
		assert.Contains(t, p, "x = 1 / 0")
		assert.Contains(t, p, "ERROR (runtime):\nZeroDivisionError: division by zero")
		assert.Contains(t, p, "FIXED_CODE:")
	})

	t.Run("success", func(t *testing.T) {
		p := buildPrompt(Request{
			Code:      "print('hi')",
			Execution: executor.ExecutionResult{Success: true, Kind: executor.KindNone, Output: "hi\n"},
		})

		assert.Contains(t, p, "what this Python program does")
		assert.Contains(t, p, "OUTPUT:\nhi\n")
		assert.NotContains(t, p, "ERROR")
	})
}

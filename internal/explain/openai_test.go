package explain_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/ai-debugger/internal/executor"
	"github.com/sakif/ai-debugger/internal/explain"
)

// fakeCompletions serves the chat-completions route with a canned answer.
func fakeCompletions(t *testing.T, status int, content string) (*httptest.Server, *[]string) {
	t.Helper()
	var prompts []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, m := range body.Messages {
			prompts = append(prompts, m.Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"message":"bad request","type":"invalid_request_error"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &prompts
}

func TestOpenAIExplainer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := explain.Request{
		Code: "x = 1 / 0",
		Execution: executor.ExecutionResult{
			Kind:  executor.KindRuntime,
			Error: "ZeroDivisionError: division by zero",
		},
	}

	t.Run("parses the labelled answer", func(t *testing.T) {
		srv, prompts := fakeCompletions(t, http.StatusOK,
			"EXPLANATION: You divided by zero.\nFIXED_CODE: x = 1 / 1\nCHANGES: Changed the divisor.")

		e, err := explain.NewOpenAIExplainer(explain.OpenAIConfig{
			BaseURL: srv.URL + "/v1/",
			APIKey:  "test-key",
			Model:   "test-model",
		}, logger)
		require.NoError(t, err)

		res, err := e.Explain(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "You divided by zero.", res.Explanation)
		require.NotNil(t, res.SuggestedFix)
		assert.Equal(t, "x = 1 / 1", *res.SuggestedFix)
		assert.Equal(t, explain.SourceAI, res.Source)

		require.Len(t, *prompts, 2)
		assert.Contains(t, (*prompts)[1], "ZeroDivisionError")
		assert.Contains(t, (*prompts)[1], "x = 1 / 0")
	})

	t.Run("endpoint error", func(t *testing.T) {
		srv, _ := fakeCompletions(t, http.StatusBadRequest, "")

		e, err := explain.NewOpenAIExplainer(explain.OpenAIConfig{
			BaseURL: srv.URL + "/v1/",
			APIKey:  "test-key",
		}, logger)
		require.NoError(t, err)

		_, err = e.Explain(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("requires an API key", func(t *testing.T) {
		_, err := explain.NewOpenAIExplainer(explain.OpenAIConfig{}, logger)
		assert.Error(t, err)
	})
}

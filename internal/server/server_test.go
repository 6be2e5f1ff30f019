package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/ai-debugger/internal/executor"
	"github.com/sakif/ai-debugger/internal/explain"
	"github.com/sakif/ai-debugger/internal/metrics"
	"github.com/sakif/ai-debugger/internal/service"
)

type stubDebugger struct{}

func (stubDebugger) Debug(_ context.Context, code string) (*service.DebugReport, error) {
	return &service.DebugReport{
		Execution:   executor.ExecutionResult{Success: true, Kind: executor.KindNone, Output: code},
		Explanation: explain.Result{Explanation: service.SuccessMessage},
	}, nil
}

func newTestServer(t *testing.T, cfg Config) (*Server, *metrics.Collector) {
	t.Helper()
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 100
	}
	if cfg.CORSOrigins == nil {
		cfg.CORSOrigins = []string{"*"}
	}
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(cfg, Deps{Debugger: stubDebugger{}, Metrics: m}, logger)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, m
}

func do(s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func TestRoutes(t *testing.T) {
	s, _ := newTestServer(t, Config{AIAvailable: true})

	t.Run("index page", func(t *testing.T) {
		rr := do(s, http.MethodGet, "/", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "AI Python Debugger")
	})

	t.Run("health", func(t *testing.T) {
		rr := do(s, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"ai_available":true`)
	})

	t.Run("debug", func(t *testing.T) {
		rr := do(s, http.MethodPost, "/debug", `{"code":"print(1)"}`, jsonHeaders)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"success":true`)
	})

	t.Run("unknown route is JSON 404", func(t *testing.T) {
		rr := do(s, http.MethodGet, "/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error":"not_found","message":"Endpoint not found"}`, rr.Body.String())
	})

	t.Run("wrong method is JSON 405", func(t *testing.T) {
		rr := do(s, http.MethodGet, "/debug", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		assert.JSONEq(t, `{"error":"method_not_allowed","message":"Method not allowed"}`, rr.Body.String())
	})

	t.Run("CORS preflight", func(t *testing.T) {
		rr := do(s, http.MethodOptions, "/debug", "", map[string]string{
			"Origin":                        "http://localhost:3000",
			"Access-Control-Request-Method": http.MethodPost,
		})
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("metrics", func(t *testing.T) {
		rr := do(s, http.MethodGet, "/metrics", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `ai_debugger_http_requests_total{method="POST",path="/debug",status="200"} 1`)
	})
}

func TestDebugIsRateLimited(t *testing.T) {
	s, _ := newTestServer(t, Config{RateLimitRPS: 0.001, RateLimitBurst: 1})

	first := do(s, http.MethodPost, "/debug", `{"code":"print(1)"}`, jsonHeaders)
	second := do(s, http.MethodPost, "/debug", `{"code":"print(1)"}`, jsonHeaders)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/health", "", nil).Code)
}

func TestHTTPServer_WriteTimeoutCoversRequestBudget(t *testing.T) {
	s, _ := newTestServer(t, Config{Port: 8080, RequestBudget: 25 * time.Second})

	srv := s.httpServer()
	assert.Equal(t, ":8080", srv.Addr)
	assert.Greater(t, srv.WriteTimeout, 25*time.Second)
}

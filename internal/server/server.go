// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer: it connects handlers, middleware, and
// routes, and decides how the server starts and stops. The dependency graph
// itself (executor, explainer, service) is built in cmd/server and passed in
// through Deps, so tests can assemble a server around stubs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/ai-debugger/internal/handler"
	"github.com/sakif/ai-debugger/internal/metrics"
	"github.com/sakif/ai-debugger/internal/middleware"
)

// Config holds server configuration.
type Config struct {
	Port           int
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	AIAvailable    bool

	// RequestBudget is the longest a /debug request may legitimately take
	// (execution timeout plus explanation timeout). The write timeout is
	// derived from it.
	RequestBudget time.Duration
}

// Deps are the collaborators the routes need.
type Deps struct {
	Debugger handler.Debugger
	Metrics  *metrics.Collector
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger

	// stop ends background work owned by the server (the rate limiter's janitor).
	stop context.CancelFunc
}

// New creates a new Server with the given config.
func New(cfg Config, deps Deps, logger *slog.Logger) (*Server, error) {
	ctx, stop := context.WithCancel(context.Background())
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		stop:   stop,
	}

	if err := s.setupRoutes(ctx, deps); err != nil {
		stop()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET  /         → Debugger page (HTML)
// POST /debug    → Validate, run and explain a snippet (JSON, rate limited)
// GET  /health   → Liveness and AI availability (JSON)
// GET  /metrics  → Prometheus exposition
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers (the rate limiter keys on it)
// 3. Recoverer: catches panics and returns 500 instead of crashing
// 4. CORS: answers preflight requests before they reach a handler
// 5. Logger: logs each request with timing info
// 6. Metrics: counts requests per route pattern
func (s *Server) setupRoutes(ctx context.Context, deps Deps) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))
	s.router.Use(middleware.Logger(s.logger))
	if deps.Metrics != nil {
		s.router.Use(middleware.Metrics(deps.Metrics))
	}

	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	pageHandler, err := handler.NewPageHandler(s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	s.router.Get("/", pageHandler.HandleIndex(s.config.AIAvailable))

	healthHandler := handler.NewHealthHandler(s.config.AIAvailable)
	s.router.Get("/health", healthHandler.HandleHealth)

	if deps.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	limiter := middleware.NewRateLimiter(ctx, s.config.RateLimitRPS, s.config.RateLimitBurst, s.logger)
	debugHandler := handler.NewDebugHandler(deps.Debugger, s.logger)
	s.router.With(limiter.Handler).Post("/debug", debugHandler.HandleDebug)

	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// httpServer builds the http.Server. WriteTimeout must outlast the slowest
// legitimate /debug response or the client sees a reset connection.
func (s *Server) httpServer() *http.Server {
	write := 15 * time.Second
	if budget := s.config.RequestBudget + 10*time.Second; budget > write {
		write = budget
	}
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
	}
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Stop background goroutines
//
// In-flight /debug requests finish normally: their child processes are
// bounded by the execution timeout, well inside the shutdown window.
func (s *Server) Start() error {
	defer s.stop()

	srv := s.httpServer()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Bool("aiAvailable", s.config.AIAvailable),
			slog.Duration("writeTimeout", srv.WriteTimeout),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Close releases background resources of a server that was never started.
func (s *Server) Close() {
	s.stop()
}

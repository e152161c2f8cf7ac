// Package api provides the HTTP surface of AdPilot: the streaming chat
// endpoint, guided-session management, and health checks.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adpilot/adpilot/internal/flow"
	"github.com/adpilot/adpilot/internal/genai"
	"github.com/adpilot/adpilot/internal/store"
	"github.com/adpilot/adpilot/internal/tools"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// shutdownTimeout bounds how long in-flight requests may run after a stop
// signal before the listener is torn down.
const shutdownTimeout = 10 * time.Second

// Opts holds optional configuration for the API server.
type Opts struct {
	Addr          string
	SystemPrompt  string
	MaxToolRounds int
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(opts *Opts) {
		if addr != "" {
			opts.Addr = addr
		}
	}
}

// WithSystemPrompt overrides the assistant's system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(opts *Opts) {
		opts.SystemPrompt = prompt
	}
}

// WithMaxToolRounds overrides the per-request tool round cap.
func WithMaxToolRounds(n int) Option {
	return func(opts *Opts) {
		opts.MaxToolRounds = n
	}
}

// Server wires the conversation driver, tool registry, and flow state
// store behind the HTTP endpoints.
type Server struct {
	addr         string
	st           store.Store
	registry     *tools.Registry
	driver       *flow.Driver
	stateManager flow.StateManager
	httpServer   *http.Server
}

// NewServer creates the API server around its collaborators.
func NewServer(st store.Store, genaiClient genai.ClientInterface, registry *tools.Registry, options ...Option) *Server {
	opts := &Opts{Addr: DefaultAddr}
	for _, opt := range options {
		opt(opts)
	}

	stateManager := flow.NewStoreBasedStateManager(st)
	driver := flow.NewDriver(genaiClient, registry)
	driver.SetStateManager(stateManager)
	if opts.SystemPrompt != "" {
		driver.SetSystemPrompt(opts.SystemPrompt)
	}
	if opts.MaxToolRounds > 0 {
		driver.SetMaxToolRounds(opts.MaxToolRounds)
	}

	slog.Debug("Server.NewServer: creating server", "addr", opts.Addr, "catalogFlavor", registry.Flavor())
	return &Server{
		addr:         opts.Addr,
		st:           st,
		registry:     registry,
		driver:       driver,
		stateManager: stateManager,
	}
}

// routes registers all endpoints on a fresh mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.chatHandler)
	mux.HandleFunc("POST /api/sessions", s.createSessionHandler)
	mux.HandleFunc("GET /api/sessions/{id}/state", s.getSessionStateHandler)
	mux.HandleFunc("POST /api/sessions/{id}/advance", s.advanceSessionHandler)
	mux.HandleFunc("POST /api/sessions/{id}/detour", s.enterDetourHandler)
	mux.HandleFunc("POST /api/sessions/{id}/detour/exit", s.exitDetourHandler)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.deleteSessionHandler)
	mux.HandleFunc("GET /health", s.healthHandler)
	return mux
}

// Handler returns the server's HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Server.Run: shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown failed: %w", err)
	}
	return nil
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

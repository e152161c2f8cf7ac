// Package store provides storage backends for AdPilot session flow state.
//
// It includes an in-memory store for tests and single-process deployments,
// plus SQLite and PostgreSQL backends for persistence.
package store

import (
	"strings"
	"sync"

	"github.com/adpilot/adpilot/internal/models"
)

// Store defines the persistence operations the flow state machine needs.
// Flow state is keyed by session identifier; one writer per session is
// assumed (the owning request handler).
type Store interface {
	// GetFlowState retrieves flow state for a session. Returns (nil, nil)
	// when no state exists.
	GetFlowState(sessionID string) (*models.FlowState, error)

	// SaveFlowState stores or updates flow state for a session.
	SaveFlowState(state models.FlowState) error

	// DeleteFlowState removes flow state for a session.
	DeleteFlowState(sessionID string) error

	// Close releases any resources held by the store.
	Close() error
}

// Opts holds configuration for persistent store backends.
type Opts struct {
	DSN string
}

// Option configures a store backend.
type Option func(*Opts)

// WithDSN sets the database DSN (file path for SQLite, URL for Postgres).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". Postgres is
// recognized by URL scheme or key=value connection strings; anything else
// is treated as a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is a simple mutex-guarded in-memory store for flow state.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]models.FlowState
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]models.FlowState)}
}

// GetFlowState retrieves flow state for a session.
func (s *InMemoryStore) GetFlowState(sessionID string) (*models.FlowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sessionID]
	if !ok {
		return nil, nil
	}
	// Copy so callers never mutate the stored value in place.
	out := state
	out.CompletedSteps = append([]models.FlowStep(nil), state.CompletedSteps...)
	out.DetourStack = append([]models.FlowStep(nil), state.DetourStack...)
	out.Selections = make(map[models.SelectionKey]string, len(state.Selections))
	for k, v := range state.Selections {
		out.Selections[k] = v
	}
	return &out, nil
}

// SaveFlowState stores or updates flow state for a session.
func (s *InMemoryStore) SaveFlowState(state models.FlowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.SessionID] = state
	return nil
}

// DeleteFlowState removes flow state for a session.
func (s *InMemoryStore) DeleteFlowState(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}

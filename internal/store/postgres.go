// Package store provides storage backends for AdPilot.
//
// This file implements a PostgreSQL-backed store for session flow state.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/adpilot/adpilot/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists flow state in a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run PostgreSQL migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// SaveFlowState stores or updates flow state for a session.
func (s *PostgresStore) SaveFlowState(state models.FlowState) error {
	completed, selections, detours, err := marshalFlowState(state)
	if err != nil {
		slog.Error("PostgresStore SaveFlowState marshal failed", "error", err, "sessionID", state.SessionID)
		return err
	}

	query := `
		INSERT INTO flow_states (` + flowStateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id)
		DO UPDATE SET
			current_step = EXCLUDED.current_step,
			completed_steps = EXCLUDED.completed_steps,
			selections = EXCLUDED.selections,
			detour_stack = EXCLUDED.detour_stack,
			updated_at = EXCLUDED.updated_at`

	_, err = s.db.Exec(query, state.SessionID, string(state.CurrentStep),
		completed, selections, detours, state.CreatedAt, state.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveFlowState failed", "error", err, "sessionID", state.SessionID)
		return err
	}
	slog.Debug("PostgresStore SaveFlowState succeeded", "sessionID", state.SessionID, "step", state.CurrentStep)
	return nil
}

// GetFlowState retrieves flow state for a session.
func (s *PostgresStore) GetFlowState(sessionID string) (*models.FlowState, error) {
	query := `SELECT ` + flowStateColumns + ` FROM flow_states WHERE session_id = $1`

	var state models.FlowState
	var step string
	var completed, selections, detours []byte

	err := s.db.QueryRow(query, sessionID).Scan(
		&state.SessionID, &step, &completed, &selections, &detours,
		&state.CreatedAt, &state.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetFlowState not found", "sessionID", sessionID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetFlowState failed", "error", err, "sessionID", sessionID)
		return nil, err
	}

	state.CurrentStep = models.FlowStep(step)
	unmarshalFlowState(&state, completed, selections, detours)

	slog.Debug("PostgresStore GetFlowState found", "sessionID", sessionID, "step", state.CurrentStep)
	return &state, nil
}

// DeleteFlowState removes flow state for a session.
func (s *PostgresStore) DeleteFlowState(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM flow_states WHERE session_id = $1`, sessionID)
	if err != nil {
		slog.Error("PostgresStore DeleteFlowState failed", "error", err, "sessionID", sessionID)
		return err
	}
	slog.Debug("PostgresStore DeleteFlowState succeeded", "sessionID", sessionID)
	return nil
}

// Close closes the PostgreSQL database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing PostgreSQL database connection")
	return s.db.Close()
}

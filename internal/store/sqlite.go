// Package store provides storage backends for AdPilot.
//
// This file implements an SQLite-backed store for session flow state.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/adpilot/adpilot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists flow state in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN (a file path).
// The parent directory is created if it does not exist.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveFlowState stores or updates flow state for a session.
func (s *SQLiteStore) SaveFlowState(state models.FlowState) error {
	completed, selections, detours, err := marshalFlowState(state)
	if err != nil {
		slog.Error("SQLiteStore SaveFlowState marshal failed", "error", err, "sessionID", state.SessionID)
		return err
	}

	query := `
		INSERT INTO flow_states (` + flowStateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id)
		DO UPDATE SET
			current_step = excluded.current_step,
			completed_steps = excluded.completed_steps,
			selections = excluded.selections,
			detour_stack = excluded.detour_stack,
			updated_at = excluded.updated_at`

	_, err = s.db.Exec(query, state.SessionID, string(state.CurrentStep),
		completed, selections, detours, state.CreatedAt, state.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveFlowState failed", "error", err, "sessionID", state.SessionID)
		return err
	}
	slog.Debug("SQLiteStore SaveFlowState succeeded", "sessionID", state.SessionID, "step", state.CurrentStep)
	return nil
}

// GetFlowState retrieves flow state for a session.
func (s *SQLiteStore) GetFlowState(sessionID string) (*models.FlowState, error) {
	query := `SELECT ` + flowStateColumns + ` FROM flow_states WHERE session_id = ?`

	var state models.FlowState
	var step string
	var completed, selections, detours []byte

	err := s.db.QueryRow(query, sessionID).Scan(
		&state.SessionID, &step, &completed, &selections, &detours,
		&state.CreatedAt, &state.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetFlowState not found", "sessionID", sessionID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetFlowState failed", "error", err, "sessionID", sessionID)
		return nil, err
	}

	state.CurrentStep = models.FlowStep(step)
	unmarshalFlowState(&state, completed, selections, detours)

	slog.Debug("SQLiteStore GetFlowState found", "sessionID", sessionID, "step", state.CurrentStep)
	return &state, nil
}

// DeleteFlowState removes flow state for a session.
func (s *SQLiteStore) DeleteFlowState(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM flow_states WHERE session_id = ?`, sessionID)
	if err != nil {
		slog.Error("SQLiteStore DeleteFlowState failed", "error", err, "sessionID", sessionID)
		return err
	}
	slog.Debug("SQLiteStore DeleteFlowState succeeded", "sessionID", sessionID)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}

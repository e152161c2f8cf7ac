package flow

import (
	"context"
	"log/slog"

	"github.com/adpilot/adpilot/internal/models"
	"github.com/adpilot/adpilot/internal/store"
)

// StateManager defines the interface for managing session flow state.
type StateManager interface {
	// GetFlowState retrieves the flow state for a session. Returns (nil, nil)
	// when the session has no state yet.
	GetFlowState(ctx context.Context, sessionID string) (*models.FlowState, error)

	// SaveFlowState persists the flow state for a session.
	SaveFlowState(ctx context.Context, state *models.FlowState) error

	// ResetFlowState removes all flow state for a session.
	ResetFlowState(ctx context.Context, sessionID string) error
}

// StoreBasedStateManager implements StateManager using a Store backend.
type StoreBasedStateManager struct {
	store store.Store
}

// NewStoreBasedStateManager creates a new StateManager backed by a Store.
func NewStoreBasedStateManager(st store.Store) *StoreBasedStateManager {
	slog.Debug("Creating StoreBasedStateManager")
	return &StoreBasedStateManager{store: st}
}

// GetFlowState retrieves the flow state for a session.
func (sm *StoreBasedStateManager) GetFlowState(ctx context.Context, sessionID string) (*models.FlowState, error) {
	slog.Debug("StateManager GetFlowState", "sessionID", sessionID)

	state, err := sm.store.GetFlowState(sessionID)
	if err != nil {
		slog.Error("StateManager GetFlowState error", "error", err, "sessionID", sessionID)
		return nil, err
	}
	if state == nil {
		slog.Debug("StateManager GetFlowState not found", "sessionID", sessionID)
		return nil, nil
	}

	slog.Debug("StateManager GetFlowState found", "sessionID", sessionID, "step", state.CurrentStep)
	return state, nil
}

// SaveFlowState persists the flow state for a session.
func (sm *StoreBasedStateManager) SaveFlowState(ctx context.Context, state *models.FlowState) error {
	slog.Debug("StateManager SaveFlowState", "sessionID", state.SessionID, "step", state.CurrentStep)

	if err := sm.store.SaveFlowState(*state); err != nil {
		slog.Error("StateManager SaveFlowState error", "error", err, "sessionID", state.SessionID)
		return err
	}
	return nil
}

// ResetFlowState removes all flow state for a session.
func (sm *StoreBasedStateManager) ResetFlowState(ctx context.Context, sessionID string) error {
	slog.Debug("StateManager ResetFlowState", "sessionID", sessionID)

	if err := sm.store.DeleteFlowState(sessionID); err != nil {
		slog.Error("StateManager ResetFlowState error", "error", err, "sessionID", sessionID)
		return err
	}
	slog.Info("StateManager ResetFlowState succeeded", "sessionID", sessionID)
	return nil
}

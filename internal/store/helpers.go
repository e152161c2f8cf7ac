package store

import (
	"encoding/json"
	"fmt"

	"github.com/adpilot/adpilot/internal/models"
)

// flowStateColumns is the shared column order for flow_states rows.
const flowStateColumns = "session_id, current_step, completed_steps, selections, detour_stack, created_at, updated_at"

// marshalFlowState converts the slice/map fields of a FlowState into the
// JSON column values used by both SQL backends. Empty collections are stored
// as NULL.
func marshalFlowState(state models.FlowState) (completed, selections, detours interface{}, err error) {
	if len(state.CompletedSteps) > 0 {
		b, err := json.Marshal(state.CompletedSteps)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal completed_steps failed: %w", err)
		}
		completed = string(b)
	}
	if len(state.Selections) > 0 {
		b, err := json.Marshal(state.Selections)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal selections failed: %w", err)
		}
		selections = string(b)
	}
	if len(state.DetourStack) > 0 {
		b, err := json.Marshal(state.DetourStack)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal detour_stack failed: %w", err)
		}
		detours = string(b)
	}
	return completed, selections, detours, nil
}

// unmarshalFlowState fills the slice/map fields of a FlowState from JSON
// column values. Corrupt JSON degrades to empty collections rather than
// failing the read.
func unmarshalFlowState(state *models.FlowState, completed, selections, detours []byte) {
	state.CompletedSteps = []models.FlowStep{}
	if len(completed) > 0 {
		if err := json.Unmarshal(completed, &state.CompletedSteps); err != nil {
			state.CompletedSteps = []models.FlowStep{}
		}
	}
	state.Selections = make(map[models.SelectionKey]string)
	if len(selections) > 0 {
		if err := json.Unmarshal(selections, &state.Selections); err != nil {
			state.Selections = make(map[models.SelectionKey]string)
		}
	}
	state.DetourStack = []models.FlowStep{}
	if len(detours) > 0 {
		if err := json.Unmarshal(detours, &state.DetourStack); err != nil {
			state.DetourStack = []models.FlowStep{}
		}
	}
}

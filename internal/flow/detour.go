package flow

import (
	"fmt"
	"time"

	"github.com/adpilot/adpilot/internal/models"
)

// Detour protocol: entering a detour pushes the interrupted golden-path step
// onto the stack; exiting pops it back into CurrentStep. The stack only ever
// holds golden-path steps, so nested detours are rejected rather than
// silently allowed.

// EnterDetour moves the session into a detour step, pausing the current
// golden-path step on the detour stack.
func EnterDetour(state *models.FlowState, detour models.FlowStep) error {
	if !IsDetourStep(detour) {
		return fmt.Errorf("step %q is not a detour step", detour)
	}
	if !IsGoldenPathStep(state.CurrentStep) {
		return fmt.Errorf("cannot enter detour %q from %q: already in a detour", detour, state.CurrentStep)
	}
	state.DetourStack = append(state.DetourStack, state.CurrentStep)
	state.CurrentStep = detour
	state.UpdatedAt = time.Now()
	return nil
}

// ExitDetour resumes the golden-path step paused by the most recent detour.
// Returns an error when there is no detour to exit.
func ExitDetour(state *models.FlowState) error {
	if len(state.DetourStack) == 0 {
		return fmt.Errorf("detour stack is empty")
	}
	top := state.DetourStack[len(state.DetourStack)-1]
	state.DetourStack = state.DetourStack[:len(state.DetourStack)-1]
	state.CurrentStep = top
	state.UpdatedAt = time.Now()
	return nil
}

// CompleteStep records the current golden-path step as completed and
// advances to the next one. Calling it mid-detour is an error; the detour
// must be exited first.
func CompleteStep(state *models.FlowState, hasEducationalContent bool) error {
	if !IsGoldenPathStep(state.CurrentStep) {
		return fmt.Errorf("cannot complete %q: not a golden-path step", state.CurrentStep)
	}
	if state.CurrentStep != models.StepWrapUp {
		state.CompletedSteps = append(state.CompletedSteps, state.CurrentStep)
	}
	state.CurrentStep = Advance(state.CurrentStep, hasEducationalContent)
	state.UpdatedAt = time.Now()
	return nil
}

// RecordSelection stores an accumulated user selection on the session.
func RecordSelection(state *models.FlowState, key models.SelectionKey, value string) {
	if state.Selections == nil {
		state.Selections = make(map[models.SelectionKey]string)
	}
	state.Selections[key] = value
	state.UpdatedAt = time.Now()
}

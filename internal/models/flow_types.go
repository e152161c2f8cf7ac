// Package models defines state structures for the guided weekly flow.
package models

import "time"

// FlowStep identifies one step of a guided session. Every FlowStep value
// belongs to exactly one of the golden path or the detour set.
type FlowStep string

const (
	// StepPerformanceDashboard reviews last week's results. First golden-path step.
	StepPerformanceDashboard FlowStep = "performance_dashboard"
	// StepThemeSelector picks the weekly theme.
	StepThemeSelector FlowStep = "theme_selector"
	// StepTopicSelector picks educational topics. Present only when the plan
	// includes educational content.
	StepTopicSelector FlowStep = "topic_selector"
	// StepAdPlan reviews and adjusts the weekly ad plan.
	StepAdPlan FlowStep = "ad_plan"
	// StepVehicleSelector assigns inventory vehicles to planned ads.
	StepVehicleSelector FlowStep = "vehicle_selector"
	// StepScriptApproval reviews and approves generated scripts.
	StepScriptApproval FlowStep = "script_approval"
	// StepGenerationProgress tracks video generation.
	StepGenerationProgress FlowStep = "generation_progress"
	// StepPublishWidget publishes the finished ads.
	StepPublishWidget FlowStep = "publish_widget"
	// StepWrapUp closes the session. Terminal step.
	StepWrapUp FlowStep = "wrap_up"

	// StepRecommendations is a detour into performance recommendations.
	StepRecommendations FlowStep = "recommendations"
	// StepGuidanceRules is a detour into standing guidance rules.
	StepGuidanceRules FlowStep = "guidance_rules"
	// StepAvatarCapture is a detour into avatar capture.
	StepAvatarCapture FlowStep = "avatar_capture"
	// StepBilling is a detour into plan and billing.
	StepBilling FlowStep = "billing"
)

// SelectionKey names an accumulated user selection stored in flow state.
// Structured values are stored JSON-encoded, mirroring how state data is
// persisted elsewhere in the system.
type SelectionKey string

const (
	// SelectionTheme stores the chosen weekly theme.
	SelectionTheme SelectionKey = "theme"
	// SelectionTopics stores the chosen educational topics (JSON array).
	SelectionTopics SelectionKey = "topics"
	// SelectionAdPlan stores the accepted ad plan entries (JSON array).
	SelectionAdPlan SelectionKey = "ad_plan"
	// SelectionVehicles stores per-ad vehicle assignments (JSON object).
	SelectionVehicles SelectionKey = "vehicles"
	// SelectionApprovedScripts stores approved script identifiers (JSON array).
	SelectionApprovedScripts SelectionKey = "approved_scripts"
	// SelectionApprovedVideos stores approved video identifiers (JSON array).
	SelectionApprovedVideos SelectionKey = "approved_videos"
)

// FlowState represents the guided-flow position of one session.
//
// Invariants: DetourStack only ever holds golden-path steps (a detour never
// pauses another detour), and CompletedSteps never records a detour step.
type FlowState struct {
	SessionID      string                  `json:"session_id"`
	CurrentStep    FlowStep                `json:"current_step"`
	CompletedSteps []FlowStep              `json:"completed_steps,omitempty"`
	Selections     map[SelectionKey]string `json:"selections,omitempty"`
	DetourStack    []FlowStep              `json:"detour_stack,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// NewFlowState creates the initial flow state for a session: positioned on
// the first golden-path step with nothing completed, selected, or stacked.
func NewFlowState(sessionID string) *FlowState {
	now := time.Now()
	return &FlowState{
		SessionID:      sessionID,
		CurrentStep:    StepPerformanceDashboard,
		CompletedSteps: []FlowStep{},
		Selections:     make(map[SelectionKey]string),
		DetourStack:    []FlowStep{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

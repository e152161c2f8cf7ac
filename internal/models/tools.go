// Package models defines tool structures for LLM function calling.
package models

import (
	"encoding/json"
	"fmt"
)

// WidgetType identifies which rich UI element a tool result asks the client to render.
type WidgetType string

const (
	// WidgetPerformanceDashboard shows last week's ad performance metrics.
	WidgetPerformanceDashboard WidgetType = "performance_dashboard"
	// WidgetThemeSelector shows the weekly theme options.
	WidgetThemeSelector WidgetType = "theme_selector"
	// WidgetTopicSelector shows educational topic options.
	WidgetTopicSelector WidgetType = "topic_selector"
	// WidgetAdPlan shows the proposed weekly ad plan table.
	WidgetAdPlan WidgetType = "ad_plan"
	// WidgetVehicleSelector shows the inventory grid for vehicle assignment.
	WidgetVehicleSelector WidgetType = "vehicle_selector"
	// WidgetScriptApproval shows generated scripts for review.
	WidgetScriptApproval WidgetType = "script_approval"
	// WidgetGenerationProgress shows video generation progress.
	WidgetGenerationProgress WidgetType = "generation_progress"
	// WidgetPublish shows the publish summary and controls.
	WidgetPublish WidgetType = "publish_widget"
	// WidgetWrapUp shows the end-of-session summary.
	WidgetWrapUp WidgetType = "wrap_up"
	// WidgetRecommendations shows performance recommendations (detour).
	WidgetRecommendations WidgetType = "recommendations"
	// WidgetGuidanceRules shows the user's standing guidance rules (detour).
	WidgetGuidanceRules WidgetType = "guidance_rules"
	// WidgetAvatarCapture shows the avatar capture card (detour).
	WidgetAvatarCapture WidgetType = "avatar_capture"
	// WidgetBilling shows plan and billing information (detour).
	WidgetBilling WidgetType = "billing"
)

// Widget is a structured payload describing which UI element to render and
// with what data. The data is opaque to the conversation core beyond its type tag.
type Widget struct {
	Type WidgetType     `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// ToolCall represents an LLM tool function call.
type ToolCall struct {
	ID       string       `json:"id"`       // Tool call ID from the provider
	Type     string       `json:"type"`     // Always "function"
	Function FunctionCall `json:"function"` // Function details
}

// FunctionCall represents the function details within a tool call.
type FunctionCall struct {
	Name      string          `json:"name"`      // Function name (e.g., "show_ad_plan")
	Arguments json.RawMessage `json:"arguments"` // JSON arguments as raw message
}

// ToolResult represents the result of executing a tool. At least one of
// Widget, Text, or Error is always populated.
type ToolResult struct {
	ToolCallID string  `json:"tool_call_id,omitempty"` // ID of the tool call this responds to
	Widget     *Widget `json:"widget,omitempty"`       // widget payload to render
	Text       string  `json:"text,omitempty"`         // accompanying free text
	Error      string  `json:"error,omitempty"`        // error message if execution failed
}

// IsError reports whether the result carries only an error.
func (tr *ToolResult) IsError() bool {
	return tr.Error != "" && tr.Widget == nil && tr.Text == ""
}

// ModelSummary renders the result as a short string for the follow-up tool
// message sent back to the LLM. The model needs to know what was shown, not
// the full widget payload.
func (tr *ToolResult) ModelSummary() string {
	if tr.Error != "" {
		return fmt.Sprintf("ERROR: %s", tr.Error)
	}
	summary := "Tool executed successfully"
	if tr.Widget != nil {
		summary = fmt.Sprintf("Displayed the %s widget to the user", tr.Widget.Type)
	}
	if tr.Text != "" {
		summary = summary + ". " + tr.Text
	}
	return summary
}

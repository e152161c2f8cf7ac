// Package flow implements the guided-session state machine and the
// tool-augmented conversation loop that drives it.
package flow

import "github.com/adpilot/adpilot/internal/models"

// goldenPathOrder is the fixed total order of golden-path steps.
// StepTopicSelector is skipped when the week carries no educational content.
var goldenPathOrder = []models.FlowStep{
	models.StepPerformanceDashboard,
	models.StepThemeSelector,
	models.StepTopicSelector,
	models.StepAdPlan,
	models.StepVehicleSelector,
	models.StepScriptApproval,
	models.StepGenerationProgress,
	models.StepPublishWidget,
	models.StepWrapUp,
}

// detourSteps is the closed set of detour steps.
var detourSteps = map[models.FlowStep]bool{
	models.StepRecommendations: true,
	models.StepGuidanceRules:   true,
	models.StepAvatarCapture:   true,
	models.StepBilling:         true,
}

// GoldenPath returns the effective ordered golden path for a session,
// including topic_selector only when the plan has educational content.
func GoldenPath(hasEducationalContent bool) []models.FlowStep {
	if hasEducationalContent {
		return append([]models.FlowStep(nil), goldenPathOrder...)
	}
	path := make([]models.FlowStep, 0, len(goldenPathOrder)-1)
	for _, step := range goldenPathOrder {
		if step == models.StepTopicSelector {
			continue
		}
		path = append(path, step)
	}
	return path
}

// Advance returns the golden-path step that follows current. Unrecognized
// steps and the terminal step both resolve to wrap_up. A session sitting on
// topic_selector advances along the full order even when the caller reports
// no educational content, since the flag is supplied fresh on each advance.
func Advance(current models.FlowStep, hasEducationalContent bool) models.FlowStep {
	if next, ok := successor(GoldenPath(hasEducationalContent), current); ok {
		return next
	}
	if next, ok := successor(goldenPathOrder, current); ok {
		return next
	}
	return models.StepWrapUp
}

// successor finds the step after current in path. The terminal step maps to
// wrap_up; ok is false when current is not on path.
func successor(path []models.FlowStep, current models.FlowStep) (models.FlowStep, bool) {
	for i, step := range path {
		if step == current {
			if i+1 < len(path) {
				return path[i+1], true
			}
			return models.StepWrapUp, true
		}
	}
	return "", false
}

// IsGoldenPathStep reports whether step belongs to the golden path.
func IsGoldenPathStep(step models.FlowStep) bool {
	for _, s := range goldenPathOrder {
		if s == step {
			return true
		}
	}
	return false
}

// IsDetourStep reports whether step belongs to the detour set.
func IsDetourStep(step models.FlowStep) bool {
	return detourSteps[step]
}

package flow

import (
	"testing"

	"github.com/adpilot/adpilot/internal/models"
)

func TestGoldenPathIncludesTopicSelectorOnlyForEducationalContent(t *testing.T) {
	withTopics := GoldenPath(true)
	found := false
	for _, step := range withTopics {
		if step == models.StepTopicSelector {
			found = true
		}
	}
	if !found {
		t.Error("Expected topic_selector in golden path with educational content")
	}

	withoutTopics := GoldenPath(false)
	for _, step := range withoutTopics {
		if step == models.StepTopicSelector {
			t.Error("Expected topic_selector to be skipped without educational content")
		}
	}
	if len(withoutTopics) != len(withTopics)-1 {
		t.Errorf("Expected skipping topic_selector to shorten the path by one, got %d vs %d", len(withoutTopics), len(withTopics))
	}
}

func TestAdvanceNeverSkipsTopicSelectorWithEducationalContent(t *testing.T) {
	// Walk every predecessor of topic_selector and verify it is reached.
	if got := Advance(models.StepThemeSelector, true); got != models.StepTopicSelector {
		t.Errorf("Advance(theme_selector, true) = %q, want %q", got, models.StepTopicSelector)
	}
	if got := Advance(models.StepThemeSelector, false); got != models.StepAdPlan {
		t.Errorf("Advance(theme_selector, false) = %q, want %q", got, models.StepAdPlan)
	}

	// No step ever advances into topic_selector when the flag is off.
	for _, step := range GoldenPath(true) {
		if next := Advance(step, false); next == models.StepTopicSelector {
			t.Errorf("Advance(%q, false) must not land on topic_selector", step)
		}
	}
}

func TestAdvanceFromTopicSelectorWithoutEducationalContent(t *testing.T) {
	// The flag arrives fresh on every advance, so a session paused on
	// topic_selector can see hasEducationalContent=false. It must move to
	// the next ordered step, not fall through to wrap_up.
	if got := Advance(models.StepTopicSelector, false); got != models.StepAdPlan {
		t.Errorf("Advance(topic_selector, false) = %q, want %q", got, models.StepAdPlan)
	}
	if got := Advance(models.StepTopicSelector, true); got != models.StepAdPlan {
		t.Errorf("Advance(topic_selector, true) = %q, want %q", got, models.StepAdPlan)
	}
}

func TestAdvanceFollowsGoldenPathOrder(t *testing.T) {
	for _, hasEducational := range []bool{true, false} {
		path := GoldenPath(hasEducational)
		for i := 0; i < len(path)-1; i++ {
			if got := Advance(path[i], hasEducational); got != path[i+1] {
				t.Errorf("Advance(%q, %v) = %q, want %q", path[i], hasEducational, got, path[i+1])
			}
		}
	}
}

func TestAdvanceWrapUpIsTerminal(t *testing.T) {
	if got := Advance(models.StepWrapUp, true); got != models.StepWrapUp {
		t.Errorf("Advance(wrap_up, true) = %q, want wrap_up", got)
	}
	if got := Advance(models.StepWrapUp, false); got != models.StepWrapUp {
		t.Errorf("Advance(wrap_up, false) = %q, want wrap_up", got)
	}
}

func TestAdvanceUnrecognizedStepDefaultsToWrapUp(t *testing.T) {
	if got := Advance(models.FlowStep("no_such_step"), true); got != models.StepWrapUp {
		t.Errorf("Advance(unknown, true) = %q, want wrap_up", got)
	}
	if got := Advance(models.StepBilling, false); got != models.StepWrapUp {
		t.Errorf("Advance(billing, false) = %q, want wrap_up", got)
	}
}

func TestStepClassificationIsTotalAndDisjoint(t *testing.T) {
	allSteps := []models.FlowStep{
		models.StepPerformanceDashboard,
		models.StepThemeSelector,
		models.StepTopicSelector,
		models.StepAdPlan,
		models.StepVehicleSelector,
		models.StepScriptApproval,
		models.StepGenerationProgress,
		models.StepPublishWidget,
		models.StepWrapUp,
		models.StepRecommendations,
		models.StepGuidanceRules,
		models.StepAvatarCapture,
		models.StepBilling,
	}

	for _, step := range allSteps {
		golden := IsGoldenPathStep(step)
		detour := IsDetourStep(step)
		if golden == detour {
			t.Errorf("Step %q must be exactly one of golden-path or detour (golden=%v, detour=%v)", step, golden, detour)
		}
	}
}

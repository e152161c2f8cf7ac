package models

import (
	"testing"
)

func TestChatRequestValidate(t *testing.T) {
	req := ChatRequest{}
	if err := req.Validate(); err == nil {
		t.Error("Expected error for empty messages")
	}

	req.Messages = []Message{{Role: RoleUser, Content: "hi"}}
	if err := req.Validate(); err != nil {
		t.Errorf("Expected valid request, got %v", err)
	}
}

func TestFilterMessagesDropsNonConversationRoles(t *testing.T) {
	req := ChatRequest{Messages: []Message{
		{Role: RoleUser, Content: "one"},
		{Role: MessageRole("system"), Content: "injected"},
		{Role: RoleAssistant, Content: "two"},
		{Role: MessageRole("tool"), Content: "noise"},
		{Role: RoleUser, Content: "three"},
	}}

	filtered := req.FilterMessages()
	if len(filtered) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(filtered))
	}
	want := []string{"one", "two", "three"}
	for i, msg := range filtered {
		if msg.Content != want[i] {
			t.Errorf("Message %d = %q, want %q (order must be preserved)", i, msg.Content, want[i])
		}
	}
}

func TestFilterMessagesNormalizesRoleCase(t *testing.T) {
	req := ChatRequest{Messages: []Message{
		{Role: MessageRole("User"), Content: "one"},
		{Role: MessageRole(" ASSISTANT "), Content: "two"},
		{Role: MessageRole("System"), Content: "injected"},
	}}

	filtered := req.FilterMessages()
	if len(filtered) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(filtered))
	}
	if filtered[0].Role != RoleUser || filtered[0].Content != "one" {
		t.Errorf("Message 0 = %+v, want canonical user role", filtered[0])
	}
	if filtered[1].Role != RoleAssistant || filtered[1].Content != "two" {
		t.Errorf("Message 1 = %+v, want canonical assistant role", filtered[1])
	}
}

func TestNormalizeRole(t *testing.T) {
	if got := NormalizeRole("User"); got != RoleUser {
		t.Errorf("NormalizeRole(User) = %q", got)
	}
	if got := NormalizeRole(" assistant "); got != RoleAssistant {
		t.Errorf("NormalizeRole(assistant) = %q", got)
	}
}

func TestToolResultModelSummary(t *testing.T) {
	cases := []struct {
		name   string
		result ToolResult
		want   string
	}{
		{
			name:   "widget only",
			result: ToolResult{Widget: &Widget{Type: WidgetAdPlan}},
			want:   "Displayed the ad_plan widget to the user",
		},
		{
			name:   "widget with text",
			result: ToolResult{Widget: &Widget{Type: WidgetBilling}, Text: "Plan renews soon."},
			want:   "Displayed the billing widget to the user. Plan renews soon.",
		},
		{
			name:   "error",
			result: ToolResult{Error: "unknown tool: show_time_machine"},
			want:   "ERROR: unknown tool: show_time_machine",
		},
		{
			name:   "text only",
			result: ToolResult{Text: "No widget needed."},
			want:   "Tool executed successfully. No widget needed.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.result.ModelSummary(); got != tc.want {
				t.Errorf("ModelSummary() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestToolResultIsError(t *testing.T) {
	errOnly := ToolResult{Error: "boom"}
	if !errOnly.IsError() {
		t.Error("Expected error-only result to report IsError")
	}
	mixed := ToolResult{Error: "boom", Text: "but also this"}
	if mixed.IsError() {
		t.Error("Mixed result is not error-only")
	}
}

func TestNewFlowState(t *testing.T) {
	state := NewFlowState("session-1")

	if state.CurrentStep != StepPerformanceDashboard {
		t.Errorf("Expected initial step performance_dashboard, got %q", state.CurrentStep)
	}
	if state.CompletedSteps == nil || len(state.CompletedSteps) != 0 {
		t.Errorf("Expected empty completed steps, got %v", state.CompletedSteps)
	}
	if state.Selections == nil || len(state.Selections) != 0 {
		t.Errorf("Expected empty selections, got %v", state.Selections)
	}
	if state.DetourStack == nil || len(state.DetourStack) != 0 {
		t.Errorf("Expected empty detour stack, got %v", state.DetourStack)
	}
	if state.CreatedAt.IsZero() || state.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

package genai

import (
	"os"
	"testing"
)

func TestEndTurn(t *testing.T) {
	stop := ToolCallResponse{FinishReason: FinishReasonStop}
	if !stop.EndTurn() {
		t.Error("Expected stop to end the turn")
	}

	more := ToolCallResponse{FinishReason: FinishReasonToolCalls}
	if more.EndTurn() {
		t.Error("Expected tool_calls to continue the turn")
	}

	unknown := ToolCallResponse{FinishReason: "length"}
	if unknown.EndTurn() {
		t.Error("Expected unknown finish reason to continue the turn")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	old := os.Getenv("OPENAI_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")
	defer os.Setenv("OPENAI_API_KEY", old)

	if _, err := NewClient(); err == nil {
		t.Error("Expected error when no API key is configured")
	}

	if _, err := NewClient(WithAPIKey("test-key")); err != nil {
		t.Errorf("Expected client with explicit key, got error: %v", err)
	}
}

// Package testutil provides common test utilities and helpers for AdPilot tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adpilot/adpilot/internal/api"
	"github.com/adpilot/adpilot/internal/genai"
	"github.com/adpilot/adpilot/internal/store"
	"github.com/adpilot/adpilot/internal/tools"
	"github.com/openai/openai-go"
)

// ScriptedGenAIClient plays back a fixed sequence of turns, one per
// GenerateWithTools call, and records how many calls were made.
type ScriptedGenAIClient struct {
	Turns     []*genai.ToolCallResponse
	Err       error
	CallCount int
	Seen      [][]openai.ChatCompletionMessageParamUnion
}

// GenerateWithMessages returns the content of the next scripted turn.
func (c *ScriptedGenAIClient) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	turn, err := c.nextTurn()
	if err != nil {
		return "", err
	}
	return turn.Content, nil
}

// GenerateWithTools returns the next scripted turn.
func (c *ScriptedGenAIClient) GenerateWithTools(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, toolset []openai.ChatCompletionToolParam) (*genai.ToolCallResponse, error) {
	c.Seen = append(c.Seen, messages)
	return c.nextTurn()
}

func (c *ScriptedGenAIClient) nextTurn() (*genai.ToolCallResponse, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	idx := c.CallCount
	c.CallCount++
	if idx < len(c.Turns) {
		return c.Turns[idx], nil
	}
	// Scripts that run out end the conversation politely.
	return &genai.ToolCallResponse{Content: "Anything else?", FinishReason: genai.FinishReasonStop}, nil
}

// NewTestServer creates a test API server with an in-memory store, the demo
// data source, and the given scripted LLM turns.
func NewTestServer(t *testing.T, turns ...*genai.ToolCallResponse) (*api.Server, *ScriptedGenAIClient, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	client := &ScriptedGenAIClient{Turns: turns}
	registry, err := tools.NewRegistry(tools.FlavorData, tools.NewDemoSource())
	if err != nil {
		t.Fatalf("failed to build tool catalog: %v", err)
	}
	return api.NewServer(st, client, registry), client, st
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}

	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	return req
}

package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/adpilot/adpilot/internal/genai"
	"github.com/adpilot/adpilot/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
)

// DefaultMaxToolRounds bounds the number of LLM round-trips per caller
// request. Without a cap a looping model could hold the stream open forever.
const DefaultMaxToolRounds = 10

// defaultSystemPrompt is used when no prompt file is configured.
const defaultSystemPrompt = "You are AdPilot, a marketing assistant for car dealerships. " +
	"Guide the user through their weekly advertising flow. When the user should see " +
	"structured information, call the matching tool instead of describing the data in text."

// apologyMessage is streamed when the LLM provider fails mid-request.
const apologyMessage = "I'm sorry, something went wrong on my end. Please try again in a moment."

// truncationMessage is streamed when a request exceeds the tool-round cap.
const truncationMessage = "I wasn't able to finish everything in one go. Please send another message to continue."

// Emitter receives conversation events in the order the driver produces
// them. Done terminates the stream; no event may follow it.
type Emitter interface {
	EmitText(text string) error
	EmitWidget(widget *models.Widget) error
	EmitError(text string) error
	Done() error
}

// ToolExecutor dispatches a tool invocation to its handler and exposes the
// catalog advertised to the model. Implemented by tools.Registry.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) *models.ToolResult
	OpenAITools() []openai.ChatCompletionToolParam
}

// Driver runs the tool-augmented conversation loop for one caller request:
// it repeatedly asks the LLM for the next turn, executes requested tool
// calls, feeds results back, and relays everything to the Emitter.
type Driver struct {
	genaiClient   genai.ClientInterface
	executor      ToolExecutor
	stateManager  StateManager // optional; enables session step context
	systemPrompt  string
	maxToolRounds int
}

// NewDriver creates a conversation driver with the given dependencies.
func NewDriver(genaiClient genai.ClientInterface, executor ToolExecutor) *Driver {
	slog.Debug("Driver.NewDriver: creating driver", "hasGenAI", genaiClient != nil, "hasExecutor", executor != nil)
	return &Driver{
		genaiClient:   genaiClient,
		executor:      executor,
		systemPrompt:  defaultSystemPrompt,
		maxToolRounds: DefaultMaxToolRounds,
	}
}

// SetStateManager enables guided-session context injection.
func (d *Driver) SetStateManager(sm StateManager) {
	d.stateManager = sm
}

// SetSystemPrompt overrides the default system prompt.
func (d *Driver) SetSystemPrompt(prompt string) {
	if p := strings.TrimSpace(prompt); p != "" {
		d.systemPrompt = p
	}
}

// SetMaxToolRounds overrides the tool-round cap. Values below 1 are ignored.
func (d *Driver) SetMaxToolRounds(n int) {
	if n >= 1 {
		d.maxToolRounds = n
	}
}

// Run executes the conversation loop for one request and terminates the
// stream. The history must already be filtered to user/assistant messages.
// The returned error reports provider failures; tool failures are recovered
// inline and never abort the loop.
func (d *Driver) Run(ctx context.Context, sessionID string, history []models.Message, em Emitter) error {
	messages := d.buildMessages(ctx, sessionID, history)
	tools := d.executor.OpenAITools()

	for round := 1; round <= d.maxToolRounds; round++ {
		slog.Debug("Driver.Run: round start", "sessionID", sessionID, "round", round, "messageCount", len(messages))

		turn, err := d.genaiClient.GenerateWithTools(ctx, messages, tools)
		if err != nil {
			slog.Error("Driver.Run: provider call failed", "error", err, "sessionID", sessionID, "round", round)
			if emitErr := em.EmitError(apologyMessage); emitErr != nil {
				slog.Warn("Driver.Run: failed to emit apology", "error", emitErr, "sessionID", sessionID)
			}
			if doneErr := em.Done(); doneErr != nil {
				slog.Warn("Driver.Run: failed to terminate stream", "error", doneErr, "sessionID", sessionID)
			}
			return fmt.Errorf("provider call failed: %w", err)
		}

		// Text is relayed before any tool in the same turn executes.
		if turn.Content != "" {
			if err := em.EmitText(turn.Content); err != nil {
				slog.Warn("Driver.Run: failed to emit text", "error", err, "sessionID", sessionID)
			}
		}

		if len(turn.ToolCalls) == 0 {
			slog.Info("Driver.Run: turn without tool calls, loop done", "sessionID", sessionID, "round", round)
			return em.Done()
		}

		messages = d.dispatchToolCalls(ctx, sessionID, turn, messages, em)

		if turn.EndTurn() {
			slog.Info("Driver.Run: model signalled end of turn", "sessionID", sessionID, "round", round)
			return em.Done()
		}
	}

	slog.Warn("Driver.Run: hit maximum tool rounds", "sessionID", sessionID, "maxRounds", d.maxToolRounds)
	if err := em.EmitError(truncationMessage); err != nil {
		slog.Warn("Driver.Run: failed to emit truncation notice", "error", err, "sessionID", sessionID)
	}
	return em.Done()
}

// dispatchToolCalls executes a turn's tool calls in the order the model
// produced them, relays each result to the emitter, and appends the
// assistant message plus per-invocation tool results to the conversation.
func (d *Driver) dispatchToolCalls(ctx context.Context, sessionID string, turn *genai.ToolCallResponse, messages []openai.ChatCompletionMessageParamUnion, em Emitter) []openai.ChatCompletionMessageParamUnion {
	var executingToolNames []string
	for _, tc := range turn.ToolCalls {
		executingToolNames = append(executingToolNames, tc.Function.Name)
	}
	slog.Info("Driver.dispatchToolCalls: executing tools",
		"sessionID", sessionID,
		"toolCallCount", len(turn.ToolCalls),
		"executingTools", executingToolNames)

	// The provider needs to see the assistant message with tool_calls before
	// the tool result messages that reference those IDs.
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	for _, tc := range turn.ToolCalls {
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID:   tc.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tc.Function.Name,
				Arguments: string(tc.Function.Arguments),
			},
		})
	}
	assistantMessage := openai.ChatCompletionAssistantMessageParam{
		Content: openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: param.NewOpt(turn.Content),
		},
		ToolCalls: toolCalls,
	}
	messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistantMessage})

	// Execute one at a time in receipt order so the stream never interleaves
	// one invocation's result inside another's.
	results := make([]*models.ToolResult, len(turn.ToolCalls))
	for i, tc := range turn.ToolCalls {
		slog.Debug("Driver.dispatchToolCalls: executing tool call",
			"sessionID", sessionID,
			"toolName", tc.Function.Name,
			"toolCallID", tc.ID,
			"toolIndex", i)

		result := d.executor.Execute(ctx, tc.Function.Name, tc.Function.Arguments)
		result.ToolCallID = tc.ID
		results[i] = result

		if result.Widget != nil {
			if err := em.EmitWidget(result.Widget); err != nil {
				slog.Warn("Driver.dispatchToolCalls: failed to emit widget", "error", err, "sessionID", sessionID, "toolCallID", tc.ID)
			}
		}
		if result.Text != "" {
			if err := em.EmitText(result.Text); err != nil {
				slog.Warn("Driver.dispatchToolCalls: failed to emit text", "error", err, "sessionID", sessionID, "toolCallID", tc.ID)
			}
		}
		if result.Error != "" {
			slog.Warn("Driver.dispatchToolCalls: tool returned error", "error", result.Error, "sessionID", sessionID, "toolName", tc.Function.Name)
			if err := em.EmitError(result.Error); err != nil {
				slog.Warn("Driver.dispatchToolCalls: failed to emit tool error", "error", err, "sessionID", sessionID, "toolCallID", tc.ID)
			}
		}
	}

	// Feed all results back, keyed by invocation ID, in invocation order.
	for i, tc := range turn.ToolCalls {
		messages = append(messages, openai.ToolMessage(results[i].ModelSummary(), tc.ID))
	}

	return messages
}

// buildMessages assembles the provider message array: system prompt, then
// optional session step context, then the caller's conversation history.
func (d *Driver) buildMessages(ctx context.Context, sessionID string, history []models.Message) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(d.systemPrompt)}

	if stepContext := d.buildStepContext(ctx, sessionID); stepContext != "" {
		messages = append(messages, openai.SystemMessage(stepContext))
	}

	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}
	return messages
}

// buildStepContext renders the session's flow position as a system message
// so the model picks the expected tool for the current step.
func (d *Driver) buildStepContext(ctx context.Context, sessionID string) string {
	if sessionID == "" || d.stateManager == nil {
		return ""
	}

	state, err := d.stateManager.GetFlowState(ctx, sessionID)
	if err != nil {
		slog.Warn("Driver.buildStepContext: failed to load flow state", "error", err, "sessionID", sessionID)
		return ""
	}
	if state == nil {
		slog.Debug("Driver.buildStepContext: no flow state for session", "sessionID", sessionID)
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SESSION CONTEXT:\nCurrent step: %s (call the show_%s tool to render it).", state.CurrentStep, state.CurrentStep)
	if len(state.CompletedSteps) > 0 {
		names := make([]string, len(state.CompletedSteps))
		for i, s := range state.CompletedSteps {
			names[i] = string(s)
		}
		fmt.Fprintf(&b, "\nCompleted steps: %s.", strings.Join(names, ", "))
	}
	if len(state.DetourStack) > 0 {
		fmt.Fprintf(&b, "\nThe user is in a detour and must return to the %s step afterwards.", state.DetourStack[len(state.DetourStack)-1])
	}
	if len(state.Selections) > 0 {
		// Sorted so identical sessions render identical context messages.
		keys := make([]string, 0, len(state.Selections))
		for key := range state.Selections {
			keys = append(keys, string(key))
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, state.Selections[models.SelectionKey(key)]))
		}
		fmt.Fprintf(&b, "\nSelections so far: %s.", strings.Join(parts, "; "))
	}
	return b.String()
}

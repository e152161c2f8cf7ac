// Package genai wraps the OpenAI chat-completion API for the conversation loop.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/adpilot/adpilot/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Finish reasons reported by the provider for one turn.
const (
	// FinishReasonStop means the model considers the turn complete (end_turn).
	FinishReasonStop = "stop"
	// FinishReasonToolCalls means the model expects its tool calls to be
	// executed and the conversation continued.
	FinishReasonToolCalls = "tool_calls"
)

// ToolCallResponse is one model turn: any text the model produced, the tool
// calls it requested (in the order it produced them), and its stop reason.
type ToolCallResponse struct {
	Content      string
	ToolCalls    []models.ToolCall
	FinishReason string
}

// EndTurn reports whether the model explicitly signalled the turn is done.
func (r *ToolCallResponse) EndTurn() bool {
	return r.FinishReason == FinishReasonStop
}

// ClientInterface defines the chat operations the conversation loop needs.
// Implemented by Client; tests substitute mocks.
type ClientInterface interface {
	// GenerateWithMessages produces a plain text completion for the messages.
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)

	// GenerateWithTools produces one turn, advertising the given tool catalog.
	GenerateWithTools(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolParam) (*ToolCallResponse, error)
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey string
	Model  openai.ChatModel
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key, overriding the environment.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model used for completions.
func WithModel(model openai.ChatModel) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat-completion service.
type Client struct {
	client openai.Client
	model  openai.ChatModel
}

// NewClient initializes a new GenAI client. The API key falls back to the
// OPENAI_API_KEY environment variable when not set via options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		slog.Error("GenAI.NewClient: no API key configured")
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4o
	}
	slog.Debug("GenAI.NewClient: creating client", "model", cfg.Model)
	return &Client{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}, nil
}

// GenerateWithMessages generates a plain response for the given messages.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	slog.Debug("GenAI.GenerateWithMessages: requesting completion", "messageCount", len(messages))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		slog.Error("GenAI.GenerateWithMessages: completion failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("GenAI.GenerateWithMessages: no choices returned")
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateWithTools generates one conversation turn with the tool catalog
// advertised to the model.
func (c *Client) GenerateWithTools(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolParam) (*ToolCallResponse, error) {
	slog.Debug("GenAI.GenerateWithTools: requesting completion", "messageCount", len(messages), "toolCount", len(tools))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		slog.Error("GenAI.GenerateWithTools: completion failed", "error", err)
		return nil, fmt.Errorf("chat completion with tools failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("GenAI.GenerateWithTools: no choices returned")
		return nil, fmt.Errorf("no choices returned")
	}

	choice := resp.Choices[0]
	result := &ToolCallResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
	}
	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, models.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: models.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			},
		})
	}

	slog.Debug("GenAI.GenerateWithTools: received turn",
		"hasContent", result.Content != "",
		"toolCallCount", len(result.ToolCalls),
		"finishReason", result.FinishReason)
	return result, nil
}

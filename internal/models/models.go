// Package models defines core data structures shared across AdPilot components.
package models

import (
	"fmt"
	"strings"
)

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	// RoleUser marks a message authored by the end user.
	RoleUser MessageRole = "user"
	// RoleAssistant marks a message authored by the assistant.
	RoleAssistant MessageRole = "assistant"
)

// Message is a single entry in the conversation history sent by the caller.
// Messages are append-only; once sent they are never edited.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest is the inbound payload for the streaming chat endpoint.
type ChatRequest struct {
	SessionID string    `json:"session_id,omitempty"` // optional guided-session identifier
	Messages  []Message `json:"messages"`
}

// Validate ensures the chat request carries at least one usable message.
func (r *ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty")
	}
	return nil
}

// FilterMessages returns only the user/assistant messages from the request,
// preserving order. Roles are matched case-insensitively and rewritten to
// their canonical form; any other role is silently dropped.
func (r *ChatRequest) FilterMessages() []Message {
	filtered := make([]Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		if role := NormalizeRole(string(m.Role)); role == RoleUser || role == RoleAssistant {
			filtered = append(filtered, Message{Role: role, Content: m.Content})
		}
	}
	return filtered
}

// APIStatus represents the status of a non-streaming API response.
type APIStatus string

const (
	// APIStatusOK indicates a successful operation.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates a failed operation.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{
		response: APIResponse{},
	}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithResult sets the result data of the API response.
func (b *APIResponseBuilder) WithResult(result interface{}) *APIResponseBuilder {
	b.response.Result = result
	return b
}

// Build returns the constructed APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithResult(result).
		Build()
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithMessage(message).
		WithResult(result).
		Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusError).
		WithMessage(message).
		Build()
}

// StreamError is the non-streaming error body returned when a chat request
// fails before any streaming begins.
type StreamError struct {
	Error string `json:"error"`
}

// NormalizeRole lowercases and trims a role string for comparison.
func NormalizeRole(role string) MessageRole {
	return MessageRole(strings.ToLower(strings.TrimSpace(role)))
}

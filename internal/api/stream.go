package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/adpilot/adpilot/internal/models"
)

// doneSentinel terminates every event stream.
const doneSentinel = "[DONE]"

// streamEvent is one wire event: exactly one field is ever set.
type streamEvent struct {
	Content string         `json:"content,omitempty"`
	Widget  *models.Widget `json:"widget,omitempty"`
}

// sseEmitter serializes conversation events as server-sent events, in the
// order they are emitted. Once Done has written the sentinel the stream is
// closed and any further emit is an error.
type sseEmitter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	closed  bool
}

// newSSEEmitter prepares the response for streaming and returns the
// emitter. Fails when the underlying writer cannot flush incrementally.
func newSSEEmitter(w http.ResponseWriter) (*sseEmitter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseEmitter{w: w, flusher: flusher}, nil
}

// EmitText streams one text chunk.
func (e *sseEmitter) EmitText(text string) error {
	return e.emit(streamEvent{Content: text})
}

// EmitWidget streams one widget payload.
func (e *sseEmitter) EmitWidget(widget *models.Widget) error {
	return e.emit(streamEvent{Widget: widget})
}

// EmitError streams a human-readable failure notice. Error text rides the
// content channel so every client renders it without special handling.
func (e *sseEmitter) EmitError(text string) error {
	return e.emit(streamEvent{Content: text})
}

// Done writes the terminal sentinel and seals the stream.
func (e *sseEmitter) Done() error {
	if e.closed {
		return fmt.Errorf("stream already terminated")
	}
	e.closed = true
	if err := e.write(doneSentinel); err != nil {
		return fmt.Errorf("failed to write stream sentinel: %w", err)
	}
	return nil
}

func (e *sseEmitter) emit(event streamEvent) error {
	if e.closed {
		return fmt.Errorf("emit after stream terminated")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("sseEmitter.emit: failed to marshal event", "error", err)
		return fmt.Errorf("failed to marshal stream event: %w", err)
	}
	return e.write(string(payload))
}

func (e *sseEmitter) write(data string) error {
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write stream event: %w", err)
	}
	e.flusher.Flush()
	return nil
}

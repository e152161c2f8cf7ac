package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adpilot/adpilot/internal/models"
)

// chatHandler handles POST /api/chat: it validates the caller's message
// history, then hands the request to the conversation driver, which streams
// text, widgets, and the terminal sentinel over SSE. All request problems
// are reported before streaming starts; nothing non-stream is written after.
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.chatHandler: processing chat request", "method", r.Method, "path", r.URL.Path)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.StreamError{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.chatHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.StreamError{Error: err.Error()})
		return
	}

	// Non-conversation roles are dropped; the request still succeeds.
	history := req.FilterMessages()
	slog.Debug("Server.chatHandler: history filtered",
		"sessionID", req.SessionID,
		"receivedCount", len(req.Messages),
		"forwardedCount", len(history))

	emitter, err := newSSEEmitter(w)
	if err != nil {
		slog.Error("Server.chatHandler: failed to set up stream", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.StreamError{Error: "streaming unsupported"})
		return
	}

	if err := s.driver.Run(r.Context(), req.SessionID, history, emitter); err != nil {
		// The driver already streamed an apology and the sentinel; the
		// request itself is over, so this is log-only.
		slog.Error("Server.chatHandler: conversation loop failed", "error", err, "sessionID", req.SessionID)
		return
	}
	slog.Info("Server.chatHandler: chat request completed", "sessionID", req.SessionID)
}

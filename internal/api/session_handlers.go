package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adpilot/adpilot/internal/flow"
	"github.com/adpilot/adpilot/internal/models"
	"github.com/google/uuid"
)

// createSessionHandler handles POST /api/sessions. A new session starts at
// the top of the golden path with no completions or selections.
func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	state := models.NewFlowState(sessionID)

	if err := s.stateManager.SaveFlowState(r.Context(), state); err != nil {
		slog.Error("Server.createSessionHandler: failed to save new session", "error", err, "sessionID", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create session"))
		return
	}

	slog.Info("Server.createSessionHandler: session created", "sessionID", sessionID)
	writeJSONResponse(w, http.StatusCreated, models.Success(state))
}

// getSessionStateHandler handles GET /api/sessions/{id}/state.
func (s *Server) getSessionStateHandler(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(state))
}

// advanceRequest carries the inputs of a step-completion event.
type advanceRequest struct {
	HasEducationalContent bool                           `json:"has_educational_content"`
	Selections            map[models.SelectionKey]string `json:"selections,omitempty"`
}

// advanceSessionHandler handles POST /api/sessions/{id}/advance: it records
// any selections made on the current step, marks the step complete, and
// moves the session to the next golden path step.
func (s *Server) advanceSessionHandler(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.advanceSessionHandler: failed to decode JSON", "error", err, "sessionID", state.SessionID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	for key, value := range req.Selections {
		flow.RecordSelection(state, key, value)
	}
	if err := flow.CompleteStep(state, req.HasEducationalContent); err != nil {
		slog.Warn("Server.advanceSessionHandler: step completion rejected", "error", err, "sessionID", state.SessionID, "currentStep", state.CurrentStep)
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
		return
	}

	if err := s.stateManager.SaveFlowState(r.Context(), state); err != nil {
		slog.Error("Server.advanceSessionHandler: failed to save state", "error", err, "sessionID", state.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save session state"))
		return
	}

	slog.Info("Server.advanceSessionHandler: session advanced", "sessionID", state.SessionID, "currentStep", state.CurrentStep)
	writeJSONResponse(w, http.StatusOK, models.Success(state))
}

// detourRequest names the detour step to enter.
type detourRequest struct {
	Step models.FlowStep `json:"step"`
}

// enterDetourHandler handles POST /api/sessions/{id}/detour.
func (s *Server) enterDetourHandler(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	var req detourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.enterDetourHandler: failed to decode JSON", "error", err, "sessionID", state.SessionID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := flow.EnterDetour(state, req.Step); err != nil {
		slog.Warn("Server.enterDetourHandler: detour rejected", "error", err, "sessionID", state.SessionID, "step", req.Step)
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
		return
	}

	if err := s.stateManager.SaveFlowState(r.Context(), state); err != nil {
		slog.Error("Server.enterDetourHandler: failed to save state", "error", err, "sessionID", state.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save session state"))
		return
	}

	slog.Info("Server.enterDetourHandler: detour entered", "sessionID", state.SessionID, "step", req.Step)
	writeJSONResponse(w, http.StatusOK, models.Success(state))
}

// exitDetourHandler handles POST /api/sessions/{id}/detour/exit.
func (s *Server) exitDetourHandler(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	if err := flow.ExitDetour(state); err != nil {
		slog.Warn("Server.exitDetourHandler: detour exit rejected", "error", err, "sessionID", state.SessionID)
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
		return
	}

	if err := s.stateManager.SaveFlowState(r.Context(), state); err != nil {
		slog.Error("Server.exitDetourHandler: failed to save state", "error", err, "sessionID", state.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save session state"))
		return
	}

	slog.Info("Server.exitDetourHandler: detour exited", "sessionID", state.SessionID, "currentStep", state.CurrentStep)
	writeJSONResponse(w, http.StatusOK, models.Success(state))
}

// deleteSessionHandler handles DELETE /api/sessions/{id}.
func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Session ID is required"))
		return
	}

	if err := s.stateManager.ResetFlowState(r.Context(), sessionID); err != nil {
		slog.Error("Server.deleteSessionHandler: failed to delete session", "error", err, "sessionID", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete session"))
		return
	}

	slog.Info("Server.deleteSessionHandler: session deleted", "sessionID", sessionID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session deleted", nil))
}

// loadSession resolves the {id} path value to its flow state, writing the
// appropriate error response when it cannot.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*models.FlowState, bool) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Session ID is required"))
		return nil, false
	}

	state, err := s.stateManager.GetFlowState(r.Context(), sessionID)
	if err != nil {
		slog.Error("Server.loadSession: failed to load session", "error", err, "sessionID", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load session"))
		return nil, false
	}
	if state == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return nil, false
	}
	return state, true
}

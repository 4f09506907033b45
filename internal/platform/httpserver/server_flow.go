package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	flowerrors "funnelforge/contexts/funnel-runtime/flow-engine/domain/errors"
	flowhttp "funnelforge/contexts/funnel-runtime/flow-engine/transport/http"
)

func writeFlowError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, flowhttp.ErrorResponse{Code: code, Message: message})
}

func writeFlowDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, flowerrors.ErrInvalidSessionInput):
		writeFlowError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, flowerrors.ErrSessionNotFound),
		errors.Is(err, flowerrors.ErrFunnelNotFound),
		errors.Is(err, flowerrors.ErrStageNotFound):
		writeFlowError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, flowerrors.ErrSessionComplete):
		writeFlowError(w, http.StatusConflict, "session_complete", err.Error())
	case errors.Is(err, flowerrors.ErrConflict):
		writeFlowError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeFlowError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req flowhttp.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFlowError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.flow.Handler.StartSessionHandler(r.Context(), req)
	if err != nil {
		writeFlowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	resp, err := s.flow.Handler.GetSessionHandler(r.Context(), sessionID)
	if err != nil {
		writeFlowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordAnswer(w http.ResponseWriter, r *http.Request) {
	var req flowhttp.RecordAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFlowError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	resp, err := s.flow.Handler.RecordAnswerHandler(r.Context(), sessionID, req)
	if err != nil {
		writeFlowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	resp, err := s.flow.Handler.AdvanceHandler(r.Context(), sessionID)
	if err != nil {
		writeFlowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	resp, err := s.flow.Handler.RetreatHandler(r.Context(), sessionID)
	if err != nil {
		writeFlowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	resp, err := s.flow.Handler.ResetHandler(r.Context(), sessionID)
	if err != nil {
		writeFlowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionResult(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	resp, err := s.flow.Handler.SessionResultHandler(r.Context(), sessionID)
	if err != nil {
		writeFlowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

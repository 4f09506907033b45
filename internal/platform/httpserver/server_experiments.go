package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	experimenterrors "funnelforge/contexts/growth-experiments/ab-testing-service/domain/errors"
	experimenthttp "funnelforge/contexts/growth-experiments/ab-testing-service/transport/http"
)

func writeExperimentError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, experimenthttp.ErrorResponse{Code: code, Message: message})
}

func writeExperimentDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, experimenterrors.ErrInvalidExperimentInput),
		errors.Is(err, experimenterrors.ErrNoVariants):
		writeExperimentError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, experimenterrors.ErrAssignmentNotFound):
		writeExperimentError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, experimenterrors.ErrConflict):
		writeExperimentError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeExperimentError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleAssignVariant(w http.ResponseWriter, r *http.Request) {
	var req experimenthttp.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeExperimentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.experiments.Handler.AssignHandler(r.Context(), req)
	if err != nil {
		writeExperimentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrackConversion(w http.ResponseWriter, r *http.Request) {
	var req experimenthttp.TrackConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeExperimentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.experiments.Handler.TrackConversionHandler(r.Context(), req); err != nil {
		writeExperimentDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	testName := strings.TrimSpace(r.PathValue("test_name"))
	visitorID := strings.TrimSpace(r.PathValue("visitor_id"))
	resp, err := s.experiments.Handler.GetAssignmentHandler(r.Context(), visitorID, testName)
	if err != nil {
		writeExperimentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExperimentResults(w http.ResponseWriter, r *http.Request) {
	testName := strings.TrimSpace(r.PathValue("test_name"))
	resp, err := s.experiments.Handler.ExperimentResultsHandler(r.Context(), testName)
	if err != nil {
		writeExperimentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	funnelerrors "funnelforge/contexts/funnel-builder/funnel-service/domain/errors"
	funnelhttp "funnelforge/contexts/funnel-builder/funnel-service/transport/http"
)

func writeFunnelError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, funnelhttp.ErrorResponse{Code: code, Message: message})
}

func writeFunnelDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, funnelerrors.ErrInvalidFunnelInput),
		errors.Is(err, funnelerrors.ErrInvalidStageType):
		writeFunnelError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, funnelerrors.ErrFunnelNotFound),
		errors.Is(err, funnelerrors.ErrStageNotFound),
		errors.Is(err, funnelerrors.ErrOptionNotFound):
		writeFunnelError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, funnelerrors.ErrConflict):
		writeFunnelError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeFunnelError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateFunnel(w http.ResponseWriter, r *http.Request) {
	var req funnelhttp.CreateFunnelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunnelError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.funnels.Handler.CreateFunnelHandler(r.Context(), req)
	if err != nil {
		writeFunnelDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleImportFunnel(w http.ResponseWriter, r *http.Request) {
	var req funnelhttp.ImportFunnelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunnelError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.funnels.Handler.ImportFunnelHandler(r.Context(), req)
	if err != nil {
		writeFunnelDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetFunnel(w http.ResponseWriter, r *http.Request) {
	funnelID := strings.TrimSpace(r.PathValue("funnel_id"))
	resp, err := s.funnels.Handler.GetFunnelHandler(r.Context(), funnelID)
	if err != nil {
		writeFunnelDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddStage(w http.ResponseWriter, r *http.Request) {
	var req funnelhttp.AddStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunnelError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	funnelID := strings.TrimSpace(r.PathValue("funnel_id"))
	resp, err := s.funnels.Handler.AddStageHandler(r.Context(), funnelID, req)
	if err != nil {
		writeFunnelDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleReorderStages(w http.ResponseWriter, r *http.Request) {
	var req funnelhttp.ReorderStagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunnelError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	funnelID := strings.TrimSpace(r.PathValue("funnel_id"))
	resp, err := s.funnels.Handler.ReorderStagesHandler(r.Context(), funnelID, req)
	if err != nil {
		writeFunnelDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDefineCategory(w http.ResponseWriter, r *http.Request) {
	var req funnelhttp.ImportCategoryPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunnelError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	funnelID := strings.TrimSpace(r.PathValue("funnel_id"))
	resp, err := s.funnels.Handler.DefineCategoryHandler(r.Context(), funnelID, req)
	if err != nil {
		writeFunnelDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateStageConfig(w http.ResponseWriter, r *http.Request) {
	var req funnelhttp.UpdateStageConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunnelError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	stageID := strings.TrimSpace(r.PathValue("stage_id"))
	resp, err := s.funnels.Handler.UpdateStageConfigHandler(r.Context(), stageID, req)
	if err != nil {
		writeFunnelDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetStageEnabled(w http.ResponseWriter, r *http.Request) {
	var req funnelhttp.SetStageEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunnelError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	stageID := strings.TrimSpace(r.PathValue("stage_id"))
	resp, err := s.funnels.Handler.SetStageEnabledHandler(r.Context(), stageID, req)
	if err != nil {
		writeFunnelDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpsertOption(w http.ResponseWriter, r *http.Request) {
	var req funnelhttp.OptionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunnelError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	stageID := strings.TrimSpace(r.PathValue("stage_id"))
	resp, err := s.funnels.Handler.UpsertOptionHandler(r.Context(), stageID, req)
	if err != nil {
		writeFunnelDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListOptions(w http.ResponseWriter, r *http.Request) {
	stageID := strings.TrimSpace(r.PathValue("stage_id"))
	resp, err := s.funnels.Handler.ListOptionsHandler(r.Context(), stageID)
	if err != nil {
		writeFunnelDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	editorerrors "funnelforge/contexts/funnel-builder/editor-service/domain/errors"
	editorhttp "funnelforge/contexts/funnel-builder/editor-service/transport/http"
)

func writeEditorError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, editorhttp.ErrorResponse{Code: code, Message: message})
}

func writeEditorDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editorerrors.ErrInvalidEditorInput):
		writeEditorError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, editorerrors.ErrEditorNotFound),
		errors.Is(err, editorerrors.ErrDraftNotFound),
		errors.Is(err, editorerrors.ErrStageNotFound):
		writeEditorError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, editorerrors.ErrConflict):
		writeEditorError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeEditorError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleOpenEditor(w http.ResponseWriter, r *http.Request) {
	var req editorhttp.OpenEditorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEditorError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.editors.Handler.OpenEditorHandler(r.Context(), req)
	if err != nil {
		writeEditorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetEditor(w http.ResponseWriter, r *http.Request) {
	editorID := strings.TrimSpace(r.PathValue("editor_id"))
	resp, err := s.editors.Handler.GetEditorHandler(r.Context(), editorID)
	if err != nil {
		writeEditorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApplyEdit(w http.ResponseWriter, r *http.Request) {
	var req editorhttp.ApplyEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEditorError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	editorID := strings.TrimSpace(r.PathValue("editor_id"))
	resp, err := s.editors.Handler.ApplyEditHandler(r.Context(), editorID, req)
	if err != nil {
		writeEditorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	editorID := strings.TrimSpace(r.PathValue("editor_id"))
	resp, err := s.editors.Handler.UndoHandler(r.Context(), editorID)
	if err != nil {
		writeEditorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	editorID := strings.TrimSpace(r.PathValue("editor_id"))
	resp, err := s.editors.Handler.RedoHandler(r.Context(), editorID)
	if err != nil {
		writeEditorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReloadEditor(w http.ResponseWriter, r *http.Request) {
	editorID := strings.TrimSpace(r.PathValue("editor_id"))
	resp, err := s.editors.Handler.ReloadEditorHandler(r.Context(), editorID)
	if err != nil {
		writeEditorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseEditor(w http.ResponseWriter, r *http.Request) {
	editorID := strings.TrimSpace(r.PathValue("editor_id"))
	if err := s.editors.Handler.CloseEditorHandler(r.Context(), editorID); err != nil {
		writeEditorDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	editorID := strings.TrimSpace(r.PathValue("editor_id"))
	resp, err := s.editors.Handler.GetDraftHandler(r.Context(), editorID)
	if err != nil {
		writeEditorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

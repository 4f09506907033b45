package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	editorservice "funnelforge/contexts/funnel-builder/editor-service"
	funnelservice "funnelforge/contexts/funnel-builder/funnel-service"
	flowengine "funnelforge/contexts/funnel-runtime/flow-engine"
	abtesting "funnelforge/contexts/growth-experiments/ab-testing-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "funnelforge/internal/platform/httpserver/docs"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	flow        flowengine.Module
	funnels     funnelservice.Module
	editors     editorservice.Module
	experiments abtesting.Module
}

func New(
	flow flowengine.Module,
	funnels funnelservice.Module,
	editors editorservice.Module,
	experiments abtesting.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		flow:        flow,
		funnels:     funnels,
		editors:     editors,
		experiments: experiments,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/flow/sessions", s.handleStartSession)
	s.mux.HandleFunc("GET /v1/flow/sessions/{session_id}", s.handleGetSession)
	s.mux.HandleFunc("POST /v1/flow/sessions/{session_id}/answers", s.handleRecordAnswer)
	s.mux.HandleFunc("POST /v1/flow/sessions/{session_id}/advance", s.handleAdvance)
	s.mux.HandleFunc("POST /v1/flow/sessions/{session_id}/retreat", s.handleRetreat)
	s.mux.HandleFunc("POST /v1/flow/sessions/{session_id}/reset", s.handleReset)
	s.mux.HandleFunc("GET /v1/flow/sessions/{session_id}/result", s.handleSessionResult)

	s.mux.HandleFunc("POST /v1/funnels", s.handleCreateFunnel)
	s.mux.HandleFunc("POST /v1/funnels/import", s.handleImportFunnel)
	s.mux.HandleFunc("GET /v1/funnels/{funnel_id}", s.handleGetFunnel)
	s.mux.HandleFunc("POST /v1/funnels/{funnel_id}/stages", s.handleAddStage)
	s.mux.HandleFunc("POST /v1/funnels/{funnel_id}/stages/reorder", s.handleReorderStages)
	s.mux.HandleFunc("POST /v1/funnels/{funnel_id}/categories", s.handleDefineCategory)
	s.mux.HandleFunc("PUT /v1/stages/{stage_id}/config", s.handleUpdateStageConfig)
	s.mux.HandleFunc("PUT /v1/stages/{stage_id}/enabled", s.handleSetStageEnabled)
	s.mux.HandleFunc("POST /v1/stages/{stage_id}/options", s.handleUpsertOption)
	s.mux.HandleFunc("GET /v1/stages/{stage_id}/options", s.handleListOptions)

	s.mux.HandleFunc("POST /v1/editors", s.handleOpenEditor)
	s.mux.HandleFunc("GET /v1/editors/{editor_id}", s.handleGetEditor)
	s.mux.HandleFunc("POST /v1/editors/{editor_id}/edits", s.handleApplyEdit)
	s.mux.HandleFunc("POST /v1/editors/{editor_id}/undo", s.handleUndo)
	s.mux.HandleFunc("POST /v1/editors/{editor_id}/redo", s.handleRedo)
	s.mux.HandleFunc("POST /v1/editors/{editor_id}/reload", s.handleReloadEditor)
	s.mux.HandleFunc("DELETE /v1/editors/{editor_id}", s.handleCloseEditor)
	s.mux.HandleFunc("GET /v1/editors/{editor_id}/draft", s.handleGetDraft)

	s.mux.HandleFunc("POST /v1/experiments/assignments", s.handleAssignVariant)
	s.mux.HandleFunc("POST /v1/experiments/conversions", s.handleTrackConversion)
	s.mux.HandleFunc("GET /v1/experiments/{test_name}/assignments/{visitor_id}", s.handleGetAssignment)
	s.mux.HandleFunc("GET /v1/experiments/{test_name}/results", s.handleExperimentResults)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

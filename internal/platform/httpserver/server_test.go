package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	editorservice "funnelforge/contexts/funnel-builder/editor-service"
	funnelservice "funnelforge/contexts/funnel-builder/funnel-service"
	flowengine "funnelforge/contexts/funnel-runtime/flow-engine"
	abtesting "funnelforge/contexts/growth-experiments/ab-testing-service"
)

func newTestServer() *Server {
	return New(
		flowengine.NewInMemoryModule(nil, slog.Default()),
		funnelservice.NewInMemoryModule(nil, slog.Default()),
		editorservice.NewInMemoryModule(slog.Default()),
		abtesting.NewInMemoryModule(slog.Default()),
		slog.Default(),
		":0",
	)
}

func TestStartSessionRejectsInvalidJSON(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/flow/sessions", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetSessionReturnsNotFoundForUnknownID(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/flow/sessions/missing-session", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateFunnelRejectsBlankName(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"name":"   "}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/funnels", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAssignVariantRoundTrip(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"visitorId":"visitor-1","testName":"headline-test","variants":[{"variantId":"control","weight":50},{"variantId":"challenger","weight":50}]}`)

	req := httptest.NewRequest(http.MethodPost, "/v1/experiments/assignments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var first struct {
		VariantID string `json:"variantId"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode assignment: %v", err)
	}
	if first.VariantID == "" {
		t.Fatal("expected a variant id in the response")
	}

	lookup := httptest.NewRequest(http.MethodGet, "/v1/experiments/headline-test/assignments/visitor-1", nil)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, lookup)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var second struct {
		VariantID string `json:"variantId"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode lookup: %v", err)
	}
	if second.VariantID != first.VariantID {
		t.Fatalf("assignment changed between calls: %q then %q", first.VariantID, second.VariantID)
	}
}

func TestUndoOnUnknownEditorReturnsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/editors/missing-editor/undo", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

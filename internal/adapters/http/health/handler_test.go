package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apphealth "dadosabertos/relatorio/internal/application/health"
	corehealth "dadosabertos/relatorio/internal/core/health"
)

func TestHandler_Status(t *testing.T) {
	meta := apphealth.Metadata{
		Service:        "relatorio",
		Version:        "1.0.0",
		Environment:    "test",
		ReportEndpoint: "https://relatorios.test/api/gerar_relatorio_matricula",
	}
	handler := NewHandler(apphealth.NewService(meta))

	w := httptest.NewRecorder()
	handler.Status(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status code %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected Cache-Control no-store, got %s", cc)
	}

	var status corehealth.Status
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if status.Service != meta.Service {
		t.Errorf("expected service %q, got %q", meta.Service, status.Service)
	}
	if status.ReportEndpoint != meta.ReportEndpoint {
		t.Errorf("expected report endpoint %q, got %q", meta.ReportEndpoint, status.ReportEndpoint)
	}
	if status.Status != corehealth.StatusUp {
		t.Errorf("expected status %q, got %q", corehealth.StatusUp, status.Status)
	}
}

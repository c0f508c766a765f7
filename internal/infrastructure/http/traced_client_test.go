package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ctxutil "dadosabertos/relatorio/internal/infrastructure/context"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		records = append(records, record)
	}
	return records
}

func TestTracingTransport_ForwardsCorrelationID(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(ctxutil.HeaderCorrelationID)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log, buf := jsonLogger()
	client := &http.Client{Transport: NewTracingTransport(nil, log, "report-api")}

	ctx := ctxutil.WithCorrelationID(context.Background(), "corr-1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api?matricula=1&code=segredo", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if gotHeader != "corr-1" {
		t.Errorf("expected correlation header 'corr-1', got %q", gotHeader)
	}
	if req.Header.Get(ctxutil.HeaderCorrelationID) != "" {
		t.Error("caller's request must not be modified")
	}

	records := logRecords(t, buf)
	if len(records) != 2 {
		t.Fatalf("expected request and response records, got %d", len(records))
	}
	for _, record := range records {
		if record["correlation_id"] != "corr-1" {
			t.Errorf("expected correlation id in %v", record)
		}
		if strings.Contains(record["url"].(string), "segredo") {
			t.Errorf("expected sensitive query to be redacted, got %v", record["url"])
		}
	}
	if records[1]["status"] != float64(http.StatusOK) {
		t.Errorf("expected status logged, got %v", records[1]["status"])
	}
}

func TestTracingTransport_ErrorStatusLogsWarn(t *testing.T) {
	log, buf := jsonLogger()
	tr := NewTracingTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Header: http.Header{}, Body: http.NoBody, Request: req}, nil
	}), log, "report-api")

	req := httptest.NewRequest(http.MethodGet, "https://relatorios.test/api", nil)
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 passed through, got %d", resp.StatusCode)
	}

	records := logRecords(t, buf)
	if last := records[len(records)-1]; last["level"] != "WARN" {
		t.Errorf("expected WARN for 404, got %v", last["level"])
	}
}

func TestTracingTransport_TransportError(t *testing.T) {
	log, buf := jsonLogger()
	boom := errors.New("connection refused")
	tr := NewTracingTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, boom
	}), log, "report-api")

	resp, err := tr.RoundTrip(httptest.NewRequest(http.MethodGet, "https://relatorios.test/api", nil))
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if resp != nil {
		t.Error("expected nil response")
	}

	records := logRecords(t, buf)
	last := records[len(records)-1]
	if last["level"] != "WARN" || last["msg"] != "Outbound request failed" {
		t.Errorf("unexpected record %v", last)
	}
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	ctxutil "dadosabertos/relatorio/internal/infrastructure/context"
	"dadosabertos/relatorio/internal/infrastructure/security"
)

// TracingTransport logs every outbound request and its outcome with the correlation
// id of the request context, which is also forwarded as X-Correlation-ID.
// Bodies are never read; report responses are binary spreadsheets.
type TracingTransport struct {
	next http.RoundTripper
	log  *slog.Logger
	name string
}

// NewTracingTransport wraps next. name identifies the remote service in the logs.
func NewTracingTransport(next http.RoundTripper, log *slog.Logger, name string) *TracingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &TracingTransport{next: next, log: log, name: name}
}

// RoundTrip implements http.RoundTripper.
func (t *TracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	correlationID := ctxutil.GetCorrelationID(req.Context())
	if correlationID != "" && req.Header.Get(ctxutil.HeaderCorrelationID) == "" {
		// RoundTrippers must not modify the caller's request
		req = req.Clone(req.Context())
		req.Header.Set(ctxutil.HeaderCorrelationID, correlationID)
	}

	url := security.SanitizeURL(req.URL.String())
	t.log.Debug("Outbound request",
		"service", t.name,
		"method", req.Method,
		"url", url,
		"headers", security.SanitizeHeaders(req.Header),
		"correlation_id", correlationID,
	)

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.log.Warn("Outbound request failed",
			"service", t.name,
			"method", req.Method,
			"url", url,
			"error", err,
			"duration_ms", duration.Milliseconds(),
			"correlation_id", correlationID,
		)
		return nil, err
	}

	attrs := []any{
		"service", t.name,
		"method", req.Method,
		"url", url,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"content_length", resp.ContentLength,
		"duration_ms", duration.Milliseconds(),
		"correlation_id", correlationID,
	}
	if resp.StatusCode >= 400 {
		t.log.Warn("Outbound request answered with error", attrs...)
	} else {
		t.log.Debug("Outbound response", attrs...)
	}
	return resp, nil
}

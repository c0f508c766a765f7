package testutil

import (
	"context"
	"sync"

	"dadosabertos/relatorio/internal/core/report"
)

// MockFetcher is a mock implementation of report.Fetcher for testing.
type MockFetcher struct {
	FetchFunc   func(ctx context.Context, req report.Request) (*report.Artifact, error)
	EndpointURL string

	mu    sync.Mutex
	calls []report.Request
}

// Fetch records the request and calls the mock function if set, otherwise returns an
// artifact named after the request.
func (m *MockFetcher) Fetch(ctx context.Context, req report.Request) (*report.Artifact, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, req)
	}
	return &report.Artifact{
		Filename:    req.Filename(),
		ContentType: report.ContentTypeXLSX,
		Data:        []byte("xlsx"),
	}, nil
}

// Endpoint returns EndpointURL, or a fixed test URL when unset.
func (m *MockFetcher) Endpoint() string {
	if m.EndpointURL != "" {
		return m.EndpointURL
	}
	return "https://relatorios.test/api/gerar_relatorio_matricula"
}

// Calls returns the requests seen so far.
func (m *MockFetcher) Calls() []report.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]report.Request(nil), m.calls...)
}

// Ensure MockFetcher implements report.Fetcher interface.
var _ report.Fetcher = (*MockFetcher)(nil)

// MockSink records delivered artifacts.
type MockSink struct {
	DeliverFunc func(ctx context.Context, artifact *report.Artifact) error

	mu        sync.Mutex
	Delivered []*report.Artifact
}

// Deliver calls the mock function if set and records successful deliveries.
func (m *MockSink) Deliver(ctx context.Context, artifact *report.Artifact) error {
	if m.DeliverFunc != nil {
		if err := m.DeliverFunc(ctx, artifact); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Delivered = append(m.Delivered, artifact)
	return nil
}

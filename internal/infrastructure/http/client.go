package http

import (
	"log/slog"
	"net/http"
	"time"
)

// ClientConfig holds configuration for outbound HTTP clients.
type ClientConfig struct {
	Timeout         time.Duration
	MaxConnsPerHost int // 0 means 10
	Transport       http.RoundTripper
	CheckRedirect   func(req *http.Request, via []*http.Request) error
	// Logger, when set, traces every request through a TracingTransport.
	Logger          *slog.Logger
	ServiceName     string
}

// NewClient creates an HTTP client for the report endpoint.
// If config is nil, a 5 minute timeout is used; report generation is slow.
func NewClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = &ClientConfig{
			Timeout: 5 * time.Minute,
		}
	}

	client := &http.Client{
		Timeout:   config.Timeout,
		Transport: newTransport(config),
	}

	if config.Transport != nil {
		client.Transport = config.Transport
	}

	if config.Logger != nil {
		client.Transport = NewTracingTransport(client.Transport, config.Logger, config.ServiceName)
	}

	if config.CheckRedirect != nil {
		client.CheckRedirect = config.CheckRedirect
	}

	return client
}

func newTransport(config *ClientConfig) *http.Transport {
	maxConns := config.MaxConnsPerHost
	if maxConns <= 0 {
		maxConns = 10
	}

	// The endpoint only starts answering once the spreadsheet is built.
	headerTimeout := config.Timeout
	if headerTimeout <= 0 || headerTimeout < 60*time.Second {
		headerTimeout = 60 * time.Second
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          maxConns,
		MaxIdleConnsPerHost:   maxConns,
		MaxConnsPerHost:       maxConns,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: headerTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

package reportapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"dadosabertos/relatorio/internal/core/report"
	ctxutil "dadosabertos/relatorio/internal/infrastructure/context"
	"dadosabertos/relatorio/internal/infrastructure/metrics"
)

const (
	// DefaultMaxConcurrent bounds simultaneous calls to the report endpoint.
	DefaultMaxConcurrent = 10
	// maxDetailBytes bounds how much of an error body is kept for display.
	maxDetailBytes = 512
)

// Options configures a Client.
type Options struct {
	BaseURL       string
	HTTPClient    *http.Client
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	MaxConcurrent int
}

// Client implements report.Fetcher against the remote report generator.
// Identical requests issued while one is in flight share its result.
type Client struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics
	slots   *semaphore.Weighted
	group   singleflight.Group
}

// NewClient creates a report endpoint client.
// If BaseURL is empty, report.DefaultEndpoint is used.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = report.DefaultEndpoint
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}

	return &Client{
		baseURL: opts.BaseURL,
		client:  opts.HTTPClient,
		log:     opts.Logger,
		metrics: opts.Metrics,
		slots:   semaphore.NewWeighted(int64(opts.MaxConcurrent)),
	}
}

// Endpoint returns the configured base URL.
func (c *Client) Endpoint() string {
	return c.baseURL
}

// Fetch downloads the spreadsheet for req. The request must already be valid.
func (c *Client) Fetch(ctx context.Context, req report.Request) (*report.Artifact, error) {
	rawURL := req.URL(c.baseURL)

	// The shared call must outlive a caller that gives up; each caller still
	// stops waiting when its own context ends.
	ch := c.group.DoChan(rawURL, func() (any, error) {
		return c.do(context.WithoutCancel(ctx), rawURL)
	})

	select {
	case <-ctx.Done():
		return nil, report.NewTransportError(rawURL, ctx.Err())
	case res := <-ch:
		if res.Shared {
			c.metrics.IncCoalesced()
			c.log.Debug("Report request joined an identical request in flight",
				"url", rawURL,
				"correlation_id", ctxutil.GetCorrelationID(ctx))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.(*report.Artifact)
		artifact := *shared
		artifact.Filename = req.Filename()
		return &artifact, nil
	}
}

func (c *Client) do(ctx context.Context, rawURL string) (*report.Artifact, error) {
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, report.NewTransportError(rawURL, err)
	}
	defer c.slots.Release(1)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, report.NewTransportError(rawURL, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Accept", report.ContentTypeXLSX)

	correlationID := ctxutil.GetCorrelationID(ctx)
	if correlationID != "" {
		httpReq.Header.Set(ctxutil.HeaderCorrelationID, correlationID)
	}

	c.log.Debug("Requesting report", "url", rawURL, "correlation_id", correlationID)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.metrics.ObserveUpstream(report.KindTransport.String(), time.Since(start), 0)
		c.log.Warn("Report endpoint unreachable", "error", err, "url", rawURL, "correlation_id", correlationID)
		return nil, report.NewTransportError(rawURL, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readDetail(resp.Body)
		c.metrics.ObserveUpstream(report.KindHTTP.String(), time.Since(start), 0)
		c.log.Warn("Report endpoint returned non-2xx status",
			"status", resp.StatusCode,
			"detail", detail,
			"url", rawURL,
			"correlation_id", correlationID)

		fetchErr := report.NewHTTPError(rawURL, resp.StatusCode, detail)
		if text := statusText(resp); text != "" {
			fetchErr.Status = text
		}
		return nil, fetchErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveUpstream(report.KindTransport.String(), time.Since(start), 0)
		c.log.Warn("Report body interrupted", "error", err, "url", rawURL, "correlation_id", correlationID)
		return nil, report.NewTransportError(rawURL, fmt.Errorf("read response body: %w", err))
	}

	elapsed := time.Since(start)
	c.metrics.ObserveUpstream("ok", elapsed, len(data))

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = report.ContentTypeXLSX
	}

	c.log.Debug("Report received",
		"url", rawURL,
		"bytes", len(data),
		"duration_ms", elapsed.Milliseconds(),
		"correlation_id", correlationID)

	return &report.Artifact{
		ContentType:      contentType,
		Data:             data,
		UpstreamFilename: dispositionFilename(resp.Header.Get("Content-Disposition")),
	}, nil
}

// statusText strips the numeric code from resp.Status ("404 Not Found" -> "Not Found").
func statusText(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}

func readDetail(body io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(body, maxDetailBytes))
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeTransport  = "transport"
	OutcomeHTTP       = "http"
	OutcomeDelivery   = "delivery"
)

// Metrics holds the Prometheus collectors of the report service.
// A nil *Metrics is valid and records nothing, which keeps the CLI free of registries.
type Metrics struct {
	Submissions      *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	DownloadedBytes  prometheus.Counter
	Coalesced        prometheus.Counter
	RateLimited      prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relatorio_submissions_total",
			Help: "Report submissions by outcome",
		}, []string{"outcome"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relatorio_upstream_request_duration_seconds",
			Help:    "Duration of requests to the report endpoint",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"result"}),
		DownloadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "relatorio_downloaded_bytes_total",
			Help: "Spreadsheet bytes received from the report endpoint",
		}),
		Coalesced: factory.NewCounter(prometheus.CounterOpts{
			Name: "relatorio_coalesced_requests_total",
			Help: "Submissions whose upstream call was shared with an identical submission",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "relatorio_rate_limited_total",
			Help: "Submissions rejected by the per-client rate limit",
		}),
	}
}

// ObserveSubmission counts one finished submission.
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records one call to the report endpoint.
func (m *Metrics) ObserveUpstream(result string, elapsed time.Duration, bytes int) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(result).Observe(elapsed.Seconds())
	if bytes > 0 {
		m.DownloadedBytes.Add(float64(bytes))
	}
}

// IncCoalesced counts a submission whose upstream call was shared.
func (m *Metrics) IncCoalesced() {
	if m == nil {
		return
	}
	m.Coalesced.Inc()
}

// IncRateLimited counts a rejected submission.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

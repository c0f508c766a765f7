package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"dadosabertos/relatorio/internal/core/report"
	ctxutil "dadosabertos/relatorio/internal/infrastructure/context"
	"dadosabertos/relatorio/internal/infrastructure/metrics"
)

// ErrNothingToRetry is returned by Retry before any submission was made.
var ErrNothingToRetry = errors.New("no previous submission to retry")

// View is the presentation surface the workflow drives: the form inputs, the
// loading indicator, the error panel and the direct link.
type View interface {
	// MarkField toggles the invalid state of one input.
	MarkField(field string, valid bool)
	// Notify shows a blocking notice.
	Notify(notice string)
	SetLoading(visible bool)
	// ShowError reveals the error panel. fallbackURL is empty when no direct link
	// should be offered.
	ShowError(message, fallbackURL string)
	HideError()
	SetDirectLink(rawURL string)
}

// Sink receives a downloaded spreadsheet (browser response, file on disk).
// Implementations release whatever they stage on every return path.
type Sink interface {
	Deliver(ctx context.Context, artifact *report.Artifact) error
}

// Options configures a Controller.
type Options struct {
	Fetcher report.Fetcher
	View    View
	Sink    Sink
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Controller runs the report request workflow for one form.
// Idle -> Validating -> Loading -> Success | Failed, back to Idle when validation fails.
type Controller struct {
	fetcher report.Fetcher
	view    View
	sink    Sink
	log     *slog.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	state State
	last  *report.Request
}

// NewController validates the collaborators and returns an idle controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if opts.View == nil {
		return nil, errors.New("view is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("sink is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Controller{
		fetcher: opts.Fetcher,
		view:    opts.View,
		sink:    opts.Sink,
		log:     opts.Logger,
		metrics: opts.Metrics,
		state:   StateIdle,
	}, nil
}

// State returns the current workflow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Blur re-validates a single field after it loses focus. Empty values are left alone.
func (c *Controller) Blur(field, value string) bool {
	err := report.CheckField(field, value)

	var verr *report.ValidationError
	if errors.As(err, &verr) {
		c.view.MarkField(field, false)
		c.view.Notify(verr.Notice)
		return false
	}
	c.view.MarkField(field, true)
	return err == nil
}

// Submit validates form and, when valid, downloads the report and hands it to the sink.
// It returns nil on success, a *report.ValidationError when no request was sent, or a
// *report.FetchError when the download failed.
func (c *Controller) Submit(ctx context.Context, form report.Request) error {
	c.mu.Lock()
	saved := form
	c.last = &saved
	c.state = StateValidating
	c.mu.Unlock()

	if err := c.validate(form); err != nil {
		c.setState(StateIdle)
		c.metrics.ObserveSubmission(metrics.OutcomeValidation)
		return err
	}

	ctx, correlationID := ctxutil.EnsureCorrelationID(ctx)

	c.setState(StateLoading)
	c.view.SetLoading(true)
	defer c.view.SetLoading(false)
	c.view.HideError()

	rawURL := form.URL(c.fetcher.Endpoint())
	c.view.SetDirectLink(rawURL)

	attrs := []any{
		"matricula", form.Identifier,
		"start_date", form.StartDate,
		"end_date", form.EndDate,
		"correlation_id", correlationID,
	}
	if r, err := form.Range(); err == nil {
		attrs = append(attrs, "months", r.Months())
	}
	c.log.Info("Report requested", attrs...)

	artifact, err := c.fetcher.Fetch(ctx, form)
	if err != nil {
		fetchErr := asFetchError(err, rawURL)
		c.fail(fetchErr.Message(), fetchErr.FallbackLink())
		c.metrics.ObserveSubmission(outcomeFor(fetchErr))
		c.log.Warn("Report download failed",
			"kind", fetchErr.Kind.String(),
			"status", fetchErr.StatusCode,
			"error", fetchErr,
			"correlation_id", correlationID)
		return fetchErr
	}

	// The synthesized name wins over whatever the endpoint suggested.
	artifact.Filename = form.Filename()

	if err := c.sink.Deliver(ctx, artifact); err != nil {
		c.fail(fmt.Sprintf("Erro ao salvar o arquivo: %v", err), rawURL)
		c.metrics.ObserveSubmission(metrics.OutcomeDelivery)
		c.log.Error("Report delivery failed", "error", err, "filename", artifact.Filename, "correlation_id", correlationID)
		return fmt.Errorf("deliver report: %w", err)
	}

	c.setState(StateSuccess)
	c.metrics.ObserveSubmission(metrics.OutcomeSuccess)
	c.log.Info("Report delivered",
		"filename", artifact.Filename,
		"bytes", artifact.Size(),
		"correlation_id", correlationID)
	return nil
}

// Retry hides the error panel and submits the last form again.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()

	c.view.HideError()
	if last == nil {
		return ErrNothingToRetry
	}
	return c.Submit(ctx, *last)
}

// DirectLink validates form and returns the endpoint URL to be used as a plain
// navigation target, bypassing the download workflow.
func (c *Controller) DirectLink(form report.Request) (string, error) {
	if err := c.validate(form); err != nil {
		return "", err
	}
	rawURL := form.URL(c.fetcher.Endpoint())
	c.view.SetDirectLink(rawURL)
	return rawURL, nil
}

func (c *Controller) validate(form report.Request) error {
	err := form.Validate()
	if err == nil {
		return nil
	}
	var verr *report.ValidationError
	if errors.As(err, &verr) {
		c.view.MarkField(verr.Field, false)
		c.view.Notify(verr.Notice)
	}
	return err
}

func (c *Controller) fail(message, fallbackURL string) {
	c.setState(StateFailed)
	c.view.ShowError(message, fallbackURL)
}

// asFetchError keeps typed failures and treats anything else as a request that
// never completed.
func asFetchError(err error, rawURL string) *report.FetchError {
	var fetchErr *report.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.URL == "" {
			fetchErr.URL = rawURL
		}
		return fetchErr
	}
	return report.NewTransportError(rawURL, err)
}

func outcomeFor(err *report.FetchError) string {
	if err.Kind == report.KindHTTP {
		return metrics.OutcomeHTTP
	}
	return metrics.OutcomeTransport
}

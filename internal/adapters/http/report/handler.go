package report

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"dadosabertos/relatorio/internal/adapters/sink"
	"dadosabertos/relatorio/internal/application/download"
	corereport "dadosabertos/relatorio/internal/core/report"
	"dadosabertos/relatorio/internal/infrastructure/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

// Handler serves the report request form and proxies the spreadsheet download.
type Handler struct {
	fetcher corereport.Fetcher
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler creates a report HTTP handler. m may be nil.
func NewHandler(fetcher corereport.Fetcher, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		fetcher: fetcher,
		log:     log,
		metrics: m,
	}
}

// Index handles GET / and renders an empty form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newPage(corereport.Request{}))
}

// Submit handles POST /relatorio.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		page := newPage(corereport.Request{})
		page.Notify("Formulário inválido.")
		h.render(w, http.StatusBadRequest, page)
		return
	}

	form := corereport.Request{
		Identifier: r.PostFormValue(corereport.FieldIdentifier),
		StartDate:  r.PostFormValue(corereport.FieldStartDate),
		EndDate:    r.PostFormValue(corereport.FieldEndDate),
	}.Normalize()

	page := newPage(form)
	out := &responseSink{w: w}

	ctrl, err := download.NewController(download.Options{
		Fetcher: h.fetcher,
		View:    page,
		Sink:    out,
		Logger:  h.log,
		Metrics: h.metrics,
	})
	if err != nil {
		h.log.Error("Failed to create download controller", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	err = ctrl.Submit(r.Context(), form)
	if err == nil {
		return
	}

	var verr *corereport.ValidationError
	if errors.As(err, &verr) {
		h.render(w, http.StatusBadRequest, page)
		return
	}

	if out.written {
		// headers are gone; the client sees a truncated body
		h.log.Warn("Report response interrupted", "error", err, "filename", form.Filename())
		return
	}

	var fetchErr *corereport.FetchError
	if errors.As(err, &fetchErr) {
		page.attachDetail(fetchErr.Detail)
	}
	h.render(w, http.StatusBadGateway, page)
}

// DirectLink handles GET /relatorio/link. A valid query redirects to the report
// endpoint itself; an invalid one re-renders the form with the notice.
func (h *Handler) DirectLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	form := corereport.Request{
		Identifier: q.Get(corereport.FieldIdentifier),
		StartDate:  firstNonEmpty(q.Get("start_date"), q.Get(corereport.FieldStartDate)),
		EndDate:    firstNonEmpty(q.Get("end_date"), q.Get(corereport.FieldEndDate)),
	}.Normalize()

	page := newPage(form)
	ctrl, err := download.NewController(download.Options{
		Fetcher: h.fetcher,
		View:    page,
		Sink:    sink.Discard{},
		Logger:  h.log,
		Metrics: h.metrics,
	})
	if err != nil {
		h.log.Error("Failed to create download controller", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rawURL, err := ctrl.DirectLink(form)
	if err != nil {
		h.render(w, http.StatusBadRequest, page)
		return
	}

	http.Redirect(w, r, rawURL, http.StatusFound)
}

func (h *Handler) render(w http.ResponseWriter, status int, page *Page) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.log.Error("Failed to render report form", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

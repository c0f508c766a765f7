package report

import (
	"sync"

	corereport "dadosabertos/relatorio/internal/core/report"
)

// ErrorPanel is the visible error block of the form.
type ErrorPanel struct {
	Message     string
	Detail      string
	FallbackURL string
}

// Page is the render model of the report form. It implements download.View so the
// workflow controller fills it in while handling a single HTTP request.
type Page struct {
	Matricula  string
	DataInicio string
	DataFim    string

	Invalid    map[string]bool
	Notices    []string
	Loading    bool
	Error      *ErrorPanel
	DirectLink string

	mu sync.Mutex
}

func newPage(form corereport.Request) *Page {
	return &Page{
		Matricula:  form.Identifier,
		DataInicio: form.StartDate,
		DataFim:    form.EndDate,
		Invalid:    make(map[string]bool),
	}
}

func (p *Page) MarkField(field string, valid bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Invalid[field] = !valid
}

func (p *Page) Notify(notice string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Notices = append(p.Notices, notice)
}

func (p *Page) SetLoading(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Loading = visible
}

func (p *Page) ShowError(message, fallbackURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Error = &ErrorPanel{Message: message, FallbackURL: fallbackURL}
}

func (p *Page) HideError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Error = nil
}

func (p *Page) SetDirectLink(rawURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DirectLink = rawURL
}

// attachDetail adds the endpoint's own explanation under the status line.
func (p *Page) attachDetail(detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Error != nil {
		p.Error.Detail = detail
	}
}

// Months is shown next to the form after a submission.
func (p *Page) Months() []string {
	form := corereport.Request{StartDate: p.DataInicio, EndDate: p.DataFim}
	r, err := form.Range()
	if err != nil {
		return nil
	}
	return r.Months()
}

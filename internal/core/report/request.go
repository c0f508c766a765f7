package report

import (
	"fmt"
	"strings"
	"time"
)

// DefaultEndpoint is the report generator used when no base URL is configured.
const DefaultEndpoint = "https://dados-abertos-itajai.azurewebsites.net/api/gerar_relatorio_matricula"

// Request carries the raw form values of one report submission.
type Request struct {
	Identifier string
	StartDate  string
	EndDate    string
}

// Validate runs the form-level checks in order and returns the first failure as a
// *ValidationError.
func (r Request) Validate() error {
	if !ValidIdentifier(r.Identifier) {
		return errInvalidIdentifier()
	}
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return errInvalidStartDate()
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return errInvalidEndDate()
	}
	if end.Before(start) {
		return errInvertedRange()
	}
	return nil
}

// Range parses both dates. Callers are expected to have validated the request.
func (r Request) Range() (DateRange, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse start date: %w", err)
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse end date: %w", err)
	}
	return DateRange{Start: start, End: end}, nil
}

// URL builds the endpoint query. The dates travel in their DD/MM/YYYY form exactly as
// typed; they are not percent-encoded or converted to ISO.
func (r Request) URL(base string) string {
	if base == "" {
		base = DefaultEndpoint
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "matricula=" + r.Identifier +
		"&start_date=" + r.StartDate +
		"&end_date=" + r.EndDate
}

// Filename is the name given to the downloaded spreadsheet.
func (r Request) Filename() string {
	return fmt.Sprintf("relatorio_matricula_%s_%s_a_%s.xlsx",
		r.Identifier, monthYear(r.StartDate), monthYear(r.EndDate))
}

// Normalize applies the date mask to both date fields.
func (r Request) Normalize() Request {
	return Request{
		Identifier: strings.TrimSpace(r.Identifier),
		StartDate:  FormatDateInput(r.StartDate),
		EndDate:    FormatDateInput(r.EndDate),
	}
}

// DateRange is an inclusive pair of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Months lists the MM_YYYY keys covered by the range, from the month of Start through
// the month of End. The report endpoint keeps one payroll record per month under
// these keys.
func (d DateRange) Months() []string {
	if d.End.Before(d.Start) {
		return nil
	}
	current := time.Date(d.Start.Year(), d.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	var months []string
	for !current.After(d.End) {
		months = append(months, current.Format("01_2006"))
		current = current.AddDate(0, 1, 0)
	}
	return months
}

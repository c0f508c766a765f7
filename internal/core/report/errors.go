package report

import (
	"fmt"
	"net/http"
)

// Field names as used by the form inputs.
const (
	FieldIdentifier = "matricula"
	FieldStartDate  = "data_inicio"
	FieldEndDate    = "data_fim"
)

// User-facing notices shown when a field or the range is rejected.
const (
	NoticeInvalidIdentifier = "Matrícula inválida. Use somente números."
	NoticeInvalidStartDate  = "Data inicial inválida. Use o formato DD/MM/AAAA"
	NoticeInvalidEndDate    = "Data final inválida. Use o formato DD/MM/AAAA"
	NoticeInvertedRange     = "A data final deve ser maior ou igual à data inicial."
)

// ValidationError is returned when a report request fails form validation.
// No request reaches the report endpoint when one of these is produced.
type ValidationError struct {
	Field  string // input that should be marked invalid
	Reason string
	Notice string // message shown to the user
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Each call returns a new value so callers may annotate the error they receive.
func errInvalidIdentifier() *ValidationError {
	return &ValidationError{Field: FieldIdentifier, Reason: "invalid identifier", Notice: NoticeInvalidIdentifier}
}

func errInvalidStartDate() *ValidationError {
	return &ValidationError{Field: FieldStartDate, Reason: "invalid start date", Notice: NoticeInvalidStartDate}
}

func errInvalidEndDate() *ValidationError {
	return &ValidationError{Field: FieldEndDate, Reason: "invalid end date", Notice: NoticeInvalidEndDate}
}

func errInvertedRange() *ValidationError {
	return &ValidationError{Field: FieldEndDate, Reason: "end date must be on or after start date", Notice: NoticeInvertedRange}
}

// FailureKind separates requests that never completed from requests the server rejected.
type FailureKind int

const (
	// KindTransport means no HTTP response was obtained (network, TLS, timeout, policy).
	KindTransport FailureKind = iota + 1
	// KindHTTP means the endpoint answered with a non-2xx status.
	KindHTTP
)

func (k FailureKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// TransportGuidance is shown together with the fallback link when the request never completed.
const TransportGuidance = "Problema de acesso à API: não foi possível concluir a requisição ao servidor de relatórios. " +
	"Entre em contato com o administrador do sistema ou use a URL direta para baixar o arquivo."

// FetchError describes a failed attempt to obtain the spreadsheet.
type FetchError struct {
	Kind       FailureKind
	URL        string // constructed request URL, usable as the fallback link
	StatusCode int
	Status     string // status text, without the code
	Detail     string // bounded excerpt of the error body sent by the endpoint
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("Erro na requisição: %d - %s", e.StatusCode, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("report request failed: %v", e.Err)
	}
	return "report request failed"
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Message is the text for the error panel.
func (e *FetchError) Message() string {
	if e.Kind == KindTransport {
		return TransportGuidance
	}
	return "Erro ao processar a solicitação: " + e.Error()
}

// FallbackLink returns the direct link to offer, or "" when the failure does not call for one.
func (e *FetchError) FallbackLink() string {
	if e.Kind == KindTransport {
		return e.URL
	}
	return ""
}

// NewHTTPError builds a KindHTTP failure from a status code.
func NewHTTPError(rawURL string, code int, detail string) *FetchError {
	return &FetchError{
		Kind:       KindHTTP,
		URL:        rawURL,
		StatusCode: code,
		Status:     http.StatusText(code),
		Detail:     detail,
	}
}

// NewTransportError builds a KindTransport failure wrapping err.
func NewTransportError(rawURL string, err error) *FetchError {
	return &FetchError{
		Kind: KindTransport,
		URL:  rawURL,
		Err:  err,
	}
}

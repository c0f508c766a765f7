package report

import "context"

// ContentTypeXLSX is the media type the report endpoint answers with.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Artifact is a downloaded spreadsheet held in memory until it is delivered.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	// UpstreamFilename is the name suggested by Content-Disposition, if any.
	UpstreamFilename string
}

// Size returns the body length in bytes.
func (a *Artifact) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

// Fetcher obtains the spreadsheet for a validated request. Failures are reported as
// *FetchError so callers can tell transport problems from HTTP rejections.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Artifact, error)
	// Endpoint returns the base URL requests are built against.
	Endpoint() string
}

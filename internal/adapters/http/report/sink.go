package report

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	corereport "dadosabertos/relatorio/internal/core/report"
)

// responseSink streams the spreadsheet to the browser as an attachment.
type responseSink struct {
	w       http.ResponseWriter
	written bool
}

func (s *responseSink) Deliver(ctx context.Context, artifact *corereport.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	contentType := artifact.ContentType
	if contentType == "" {
		contentType = corereport.ContentTypeXLSX
	}

	h := s.w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	h.Set("Content-Length", strconv.Itoa(artifact.Size()))
	h.Set("Cache-Control", "no-store")
	s.w.WriteHeader(http.StatusOK)
	s.written = true

	if _, err := s.w.Write(artifact.Data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

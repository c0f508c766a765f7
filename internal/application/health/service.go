package health

import (
	"context"
	"time"

	corehealth "dadosabertos/relatorio/internal/core/health"
)

// Metadata describes the running service.
type Metadata struct {
	Service        string
	Version        string
	Environment    string
	ReportEndpoint string
}

// Service answers health checks.
type Service struct {
	meta      Metadata
	startedAt time.Time
	now       func() time.Time
}

func NewService(meta Metadata) *Service {
	return &Service{
		meta:      meta,
		startedAt: time.Now().UTC(),
		now:       time.Now,
	}
}

// Status returns the current availability snapshot.
func (s *Service) Status(_ context.Context) corehealth.Status {
	uptime := s.now().Sub(s.startedAt).Truncate(time.Second)
	return corehealth.Status{
		Service:        s.meta.Service,
		Version:        s.meta.Version,
		Environment:    s.meta.Environment,
		Status:         corehealth.StatusUp,
		StartedAt:      s.startedAt,
		Uptime:         uptime.String(),
		UptimeSecs:     int64(uptime.Seconds()),
		ReportEndpoint: s.meta.ReportEndpoint,
	}
}

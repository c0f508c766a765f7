package health

import "time"

// Status is the snapshot served by GET /health.
type Status struct {
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	Environment string    `json:"environment"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"startedAt"`
	Uptime      string    `json:"uptime"`
	UptimeSecs  int64     `json:"uptimeSeconds"`
	// ReportEndpoint is the spreadsheet generator downloads are proxied to.
	ReportEndpoint string `json:"reportEndpoint,omitempty"`
}

// StatusUp is the only state the service reports; it does not probe the endpoint.
const StatusUp = "UP"

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	healthhttp "dadosabertos/relatorio/internal/adapters/http/health"
	reporthttp "dadosabertos/relatorio/internal/adapters/http/report"
	apphealth "dadosabertos/relatorio/internal/application/health"
	"dadosabertos/relatorio/internal/infrastructure/config"
	"dadosabertos/relatorio/internal/infrastructure/http/server"
	"dadosabertos/relatorio/internal/infrastructure/metrics"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the report form web server",
		Long: `Start the web server that renders the report form and proxies downloads.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (--env-file, or .env in the current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  APP_PORT                 Server port (default: 8080)
  APP_ENV                  local, dev, production... (default: local)
  LOG_LEVEL                debug, info, warn, error (default: info)
  REPORT_API_BASE_URL      Report endpoint URL
  REPORT_API_TIMEOUT       Upstream request timeout (default: 5m)
  REPORT_MAX_CONCURRENT    Simultaneous upstream requests (default: 4)
  HTTP_REPORT_TIMEOUT      Deadline of a form submission (default: 6m)
  CORS_ALLOWED_ORIGINS     Origins allowed on /api/v1 (default: *)
  RATE_LIMIT_ENABLED       Limit submissions per client (default: true)
  RATE_LIMIT_PER_MINUTE    Submissions per minute (default: 10)
  RATE_LIMIT_BURST         Burst size (default: 3)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: APP_PORT)")

	return cmd
}

func runServe(parent context.Context, envFile string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.HTTP.Port = port
	}

	log := newLogger(os.Stdout, cfg)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(cfg, log)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("service stopped: %w", err)
	}
	log.Info("Service stopped")
	return nil
}

// newServer wires the report form, health and metrics handlers into a server.
func newServer(cfg config.AppConfig, log *slog.Logger) (*server.Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	fetcher := newFetcher(cfg, log, m)
	log.Info("Report endpoint configured",
		"base_url", fetcher.Endpoint(),
		"timeout", cfg.ReportAPI.Timeout.String(),
		"max_concurrent", cfg.ReportAPI.MaxConcurrent)

	healthService := apphealth.NewService(apphealth.Metadata{
		Service:        cfg.App.Name,
		Version:        cfg.App.Version,
		Environment:    cfg.App.Environment,
		ReportEndpoint: fetcher.Endpoint(),
	})

	return server.New(server.Options{
		Config:         cfg,
		Logger:         log,
		HealthHandler:  http.HandlerFunc(healthhttp.NewHandler(healthService).Status),
		ReportHandler:  reporthttp.NewHandler(fetcher, log, m),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Metrics:        m,
	})
}

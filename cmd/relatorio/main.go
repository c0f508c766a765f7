// Package main is the entry point for the relatorio CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dadosabertos/relatorio/internal/adapters/reportapi"
	"dadosabertos/relatorio/internal/infrastructure/config"
	infrahttp "dadosabertos/relatorio/internal/infrastructure/http"
	"dadosabertos/relatorio/internal/infrastructure/logger"
	"dadosabertos/relatorio/internal/infrastructure/metrics"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "relatorio: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relatorio",
		Short: "Relatório de registros por matrícula",
		Long: `Requests the spreadsheet report of one matrícula over a date range from the
open data report endpoint, either through a web form (serve) or directly from the
command line (baixar).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(baixarCmd())
	cmd.AddCommand(linkCmd())
	cmd.AddCommand(mascaraCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from the env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.AppConfig) *slog.Logger {
	return logger.New(w, cfg.App.Name, cfg.Log.Level, cfg.App.Environment)
}

// newFetcher builds the report endpoint client shared by serve and baixar.
func newFetcher(cfg config.AppConfig, log *slog.Logger, m *metrics.Metrics) *reportapi.Client {
	httpClient := infrahttp.NewClient(&infrahttp.ClientConfig{
		Timeout:         cfg.ReportAPI.Timeout,
		MaxConnsPerHost: cfg.ReportAPI.MaxConcurrent,
		Logger:          log,
		ServiceName:     "report-api",
	})
	return reportapi.NewClient(reportapi.Options{
		BaseURL:       cfg.ReportAPI.BaseURL,
		HTTPClient:    httpClient,
		Logger:        log,
		Metrics:       m,
		MaxConcurrent: cfg.ReportAPI.MaxConcurrent,
	})
}

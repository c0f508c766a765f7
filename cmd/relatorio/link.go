package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dadosabertos/relatorio/internal/adapters/sink"
	"dadosabertos/relatorio/internal/application/download"
	"dadosabertos/relatorio/internal/core/report"
)

func linkCmd() *cobra.Command {
	var (
		envFile string
		baseURL string
		form    report.Request
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print the direct report URL without downloading",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.ReportAPI.BaseURL = baseURL
			}

			ctrl, err := download.NewController(download.Options{
				Fetcher: newFetcher(cfg, newLogger(cmd.ErrOrStderr(), cfg), nil),
				View:    newTerminalView(cmd.ErrOrStderr()),
				Sink:    sink.Discard{},
			})
			if err != nil {
				return err
			}

			rawURL, err := ctrl.DirectLink(form.Normalize())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rawURL)
			return nil
		},
	}

	addFormFlags(cmd, &form)
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Report endpoint URL (default: REPORT_API_BASE_URL)")

	return cmd
}

func addFormFlags(cmd *cobra.Command, form *report.Request) {
	cmd.Flags().StringVarP(&form.Identifier, "matricula", "m", "", "Matrícula (somente números)")
	cmd.Flags().StringVarP(&form.StartDate, "inicio", "i", "", "Data inicial DD/MM/AAAA")
	cmd.Flags().StringVarP(&form.EndDate, "fim", "f", "", "Data final DD/MM/AAAA")
	_ = cmd.MarkFlagRequired("matricula")
	_ = cmd.MarkFlagRequired("inicio")
	_ = cmd.MarkFlagRequired("fim")
}

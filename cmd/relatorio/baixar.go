package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dadosabertos/relatorio/internal/adapters/sink"
	"dadosabertos/relatorio/internal/application/download"
	"dadosabertos/relatorio/internal/core/report"
	"dadosabertos/relatorio/internal/infrastructure/config"
	ctxutil "dadosabertos/relatorio/internal/infrastructure/context"
)

func baixarCmd() *cobra.Command {
	var (
		envFile string
		baseURL string
		dir     string
		form    report.Request
	)

	cmd := &cobra.Command{
		Use:   "baixar",
		Short: "Download the report spreadsheet into a directory",
		Long: `Download the report spreadsheet of one matrícula for a date range.

The file is saved as relatorio_matricula_{matrícula}_{MM-AAAA}_a_{MM-AAAA}.xlsx in the
target directory and its path is printed on stdout. When the download fails the
direct report URL is printed so it can be opened in a browser; on an interactive
terminal the download can be retried.`,
		Example: `  relatorio baixar --matricula 4521 --inicio 01/01/2024 --fim 31/01/2024 --dir ./relatorios`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.ReportAPI.BaseURL = baseURL
			}
			if dir == "" {
				dir = cfg.Download.Dir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runBaixar(ctx, cmd, cfg, dir, form.Normalize())
		},
	}

	addFormFlags(cmd, &form)
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Target directory (default: DOWNLOAD_DIR)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Report endpoint URL (default: REPORT_API_BASE_URL)")

	return cmd
}

func runBaixar(ctx context.Context, cmd *cobra.Command, cfg config.AppConfig, dir string, form report.Request) error {
	stderr := cmd.ErrOrStderr()
	log := newLogger(stderr, cfg)

	files, err := sink.NewFile(dir, log)
	if err != nil {
		return err
	}

	ctrl, err := download.NewController(download.Options{
		Fetcher: newFetcher(cfg, log, nil),
		View:    newTerminalView(stderr),
		Sink:    files,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	if r, err := form.Range(); err == nil {
		if months := r.Months(); len(months) > 0 {
			fmt.Fprintf(stderr, "Meses incluídos: %s\n", strings.Join(months, ", "))
		}
	}

	ctx, _ = ctxutil.EnsureCorrelationID(ctx)
	err = ctrl.Submit(ctx, form)

	var fetchErr *report.FetchError
	for err != nil && errors.As(err, &fetchErr) && isInteractive(cmd.InOrStdin()) {
		if !confirm(cmd.InOrStdin(), stderr, "Tentar novamente? [s/N] ") {
			break
		}
		err = ctrl.Retry(ctx)
	}
	if err != nil {
		if errors.As(err, &fetchErr) && fetchErr.Detail != "" {
			fmt.Fprintln(stderr, fetchErr.Detail)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), files.LastSaved())
	return nil
}

func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "sim", "y", "yes":
		return true
	default:
		return false
	}
}

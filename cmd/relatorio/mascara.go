package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dadosabertos/relatorio/internal/core/report"
)

func mascaraCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mascara VALOR...",
		Short: "Format partial dates the way the form input does",
		Example: `  relatorio mascara 12032024
  relatorio mascara 1 120 1203`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, arg := range args {
				fmt.Fprintln(cmd.OutOrStdout(), report.FormatDateInput(arg))
			}
		},
	}
}

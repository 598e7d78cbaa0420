package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bitcoin-commons/bench-cli/internal/export"
	"github.com/bitcoin-commons/bench-cli/internal/report"
)

var (
	exportReport string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a report JSON to a spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(exportReport)
		if err != nil {
			return eris.Wrap(err, "read report")
		}

		rpt, err := report.DecodeJSON(data)
		if err != nil {
			return err
		}

		if err := export.WriteXLSX(rpt, exportOut); err != nil {
			return err
		}

		zap.L().Info("report exported",
			zap.String("report", exportReport),
			zap.String("out", exportOut),
			zap.Int("comparisons", rpt.Summary.Comparisons),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportReport, "report", "", "path to a report JSON produced by compare")
	exportCmd.Flags().StringVar(&exportOut, "out", "report.xlsx", "output spreadsheet path")
	_ = exportCmd.MarkFlagRequired("report")
	rootCmd.AddCommand(exportCmd)
}

package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bitcoin-commons/bench-cli/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted report history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		reports, err := st.ListReports(ctx, store.ReportFilter{Limit: runsLimit})
		if err != nil {
			return err
		}

		type row struct {
			ID          string `json:"id"`
			Label       string `json:"label"`
			CreatedAt   string `json:"created_at"`
			Comparisons int    `json:"comparisons"`
			Warnings    int    `json:"warnings"`
		}
		rows := make([]row, 0, len(reports))
		for _, r := range reports {
			rows = append(rows, row{
				ID:          r.ID,
				Label:       r.Label,
				CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
				Comparisons: r.Report.Summary.Comparisons,
				Warnings:    len(r.Report.Warnings),
			})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return eris.Wrap(err, "encode runs")
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of reports to list")
	rootCmd.AddCommand(runsCmd)
}

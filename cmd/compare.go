package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bitcoin-commons/bench-cli/internal/ingest"
	"github.com/bitcoin-commons/bench-cli/internal/model"
	"github.com/bitcoin-commons/bench-cli/internal/pipeline"
	"github.com/bitcoin-commons/bench-cli/internal/report"
)

var (
	compareCoreDir    string
	compareCommonsDir string
	compareOut        string
	compareExpected   int
	compareSave       bool
	compareLabel      string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the full comparison pipeline over two result directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("compare"); err != nil {
			return err
		}

		rpt, err := runCompare(ctx)
		if err != nil {
			return err
		}

		data, err := report.EncodeJSON(rpt)
		if err != nil {
			return err
		}

		if compareOut == "" || compareOut == "-" {
			if _, err := os.Stdout.Write(data); err != nil {
				return eris.Wrap(err, "write report")
			}
		} else {
			if err := os.WriteFile(compareOut, data, 0o644); err != nil {
				return eris.Wrap(err, "write report file")
			}
			zap.L().Info("report written", zap.String("path", compareOut))
		}

		if compareSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
			stored, err := st.SaveReport(ctx, compareLabel, rpt)
			if err != nil {
				return eris.Wrap(err, "save report")
			}
			zap.L().Info("report saved", zap.String("id", stored.ID), zap.String("label", stored.Label))
		}

		return nil
	},
}

// runCompare materializes the batch and runs the normalization pass. Shared
// by the compare command and the report server.
func runCompare(ctx context.Context) (*model.Report, error) {
	coreDir := compareCoreDir
	if coreDir == "" {
		coreDir = cfg.Results.CoreDir
	}
	commonsDir := compareCommonsDir
	if commonsDir == "" {
		commonsDir = cfg.Results.CommonsDir
	}

	coreBatch, err := ingest.LoadDir(coreDir, model.SourceCore)
	if err != nil {
		return nil, eris.Wrap(err, "load core results")
	}
	commonsBatch, err := ingest.LoadDir(commonsDir, model.SourceCommons)
	if err != nil {
		return nil, eris.Wrap(err, "load commons results")
	}
	batch := ingest.Merge(coreBatch, commonsBatch)

	expected := compareExpected
	if expected == 0 {
		expected = cfg.Compare.ExpectedTotal
	}

	p, err := pipeline.New(pipeline.Config{
		MaxDepth:      cfg.Extract.MaxDepth,
		ExpectedTotal: expected,
		Workers:       cfg.Compare.Workers,
		SynonymsFile:  cfg.Names.SynonymsFile,
	})
	if err != nil {
		return nil, err
	}

	return p.Run(ctx, batch.Documents, batch.Warnings)
}

func init() {
	compareCmd.Flags().StringVar(&compareCoreDir, "core-dir", "", "Core results directory (default from config)")
	compareCmd.Flags().StringVar(&compareCommonsDir, "commons-dir", "", "Commons results directory (default from config)")
	compareCmd.Flags().StringVar(&compareOut, "out", "-", "output path for the report JSON, or - for stdout")
	compareCmd.Flags().IntVar(&compareExpected, "expected", 0, "externally declared entry count to reconcile against")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "persist the report to the configured store")
	compareCmd.Flags().StringVar(&compareLabel, "label", "", "label for the saved report")
	rootCmd.AddCommand(compareCmd)
}

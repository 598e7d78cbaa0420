package main

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bitcoin-commons/bench-cli/internal/ingest"
	"github.com/bitcoin-commons/bench-cli/internal/model"
)

var (
	fetchSource string
	fetchURLs   []string
	fetchDir    string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download harness artifacts into a results directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		source := model.Source(fetchSource)
		if source != model.SourceCore && source != model.SourceCommons {
			return eris.Errorf("invalid source %q (expected core or commons)", fetchSource)
		}

		dir := fetchDir
		if dir == "" {
			dir = cfg.Results.CoreDir
			if source == model.SourceCommons {
				dir = cfg.Results.CommonsDir
			}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "create results dir")
		}

		httpFetcher := ingest.NewHTTPFetcher(ingest.HTTPOptions{
			UserAgent:      cfg.Fetch.UserAgent,
			Timeout:        time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries:     cfg.Fetch.MaxRetries,
			RequestsPerSec: cfg.Fetch.RequestsPerSec,
		})
		ftpFetcher := ingest.NewFTPFetcher(ingest.FTPOptions{
			Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		})

		for _, rawURL := range fetchURLs {
			u, err := url.Parse(rawURL)
			if err != nil {
				return eris.Wrapf(err, "parse url %s", rawURL)
			}
			dest := filepath.Join(dir, path.Base(u.Path))

			var n int64
			switch u.Scheme {
			case "http", "https":
				n, err = httpFetcher.DownloadToFile(ctx, rawURL, dest)
			case "ftp":
				n, err = ftpFetcher.DownloadToFile(ctx, rawURL, dest)
			default:
				return eris.Errorf("unsupported scheme %q in %s", u.Scheme, rawURL)
			}
			if err != nil {
				return eris.Wrapf(err, "fetch %s", rawURL)
			}

			zap.L().Info("artifact fetched",
				zap.String("url", rawURL),
				zap.String("dest", dest),
				zap.Int64("bytes", n),
			)
		}

		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchSource, "source", "", "which harness produced the artifacts: core or commons")
	fetchCmd.Flags().StringSliceVar(&fetchURLs, "url", nil, "artifact URL (http, https, or ftp); repeatable")
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "", "destination directory (default from config for the source)")
	_ = fetchCmd.MarkFlagRequired("source")
	_ = fetchCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(fetchCmd)
}

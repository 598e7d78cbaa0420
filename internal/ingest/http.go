package ingest

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/bitcoin-commons/bench-cli/internal/resilience"
)

// HTTPOptions configures the HTTP artifact fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RequestsPerSec throttles requests against the results server; CI
	// artifact hosts tend to rate-limit aggressively. 0 selects the default.
	RequestsPerSec float64
}

// HTTPFetcher downloads harness artifacts from a CI results server with
// retry, exponential backoff, and rate limiting.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
	policy  resilience.Policy
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "bench-cli/1.0"
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 10
	}

	policy := resilience.DefaultPolicy()
	policy.MaxAttempts = opts.MaxRetries
	policy.OnRetry = resilience.Logger("artifact download")

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), int(opts.RequestsPerSec)),
		policy:  policy,
	}
}

// Download fetches the artifact URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	return resilience.Retry(ctx, f.policy, func(ctx context.Context) (io.ReadCloser, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "ingest: rate limiter wait")
		}

		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		}

		_ = resp.Body.Close()
		statusErr := eris.Errorf("ingest: http %d from %s", resp.StatusCode, rawURL)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransient(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	})
}

// DownloadToFile fetches the artifact URL and writes it to path. Returns
// bytes written.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "ingest: create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrap(err, "ingest: write file")
	}
	return n, nil
}

// Package report assembles the canonical benchmark report: the single
// artifact downstream consumers rely on.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/bitcoin-commons/bench-cli/internal/model"
	"github.com/bitcoin-commons/bench-cli/internal/resolve"
)

// Options tunes report assembly.
type Options struct {
	// ExpectedTotal, when positive, is an externally declared entry count to
	// reconcile against. A mismatch is surfaced as a warning, never as a
	// failure: the report always materializes, degraded rather than absent.
	ExpectedTotal int
}

// Build merges the resolver output and accumulated warnings into the final
// Report. Summary counts are produced by enumerating the final category
// lists directly; they are never recomputed independently, so the report can
// not disagree with itself about how many comparisons it holds.
func Build(res resolve.Resolution, results []model.ExtractionResult, warnings []string, opts Options) *model.Report {
	rpt := &model.Report{
		Comparisons: res.Comparisons,
		CoreOnly:    res.CoreOnly,
		CommonsOnly: res.CommonsOnly,
		Warnings:    append([]string{}, warnings...),
	}
	if rpt.Comparisons == nil {
		rpt.Comparisons = []model.ComparisonEntry{}
	}
	if rpt.CoreOnly == nil {
		rpt.CoreOnly = []model.UnpairedEntry{}
	}
	if rpt.CommonsOnly == nil {
		rpt.CommonsOnly = []model.UnpairedEntry{}
	}

	// One warning per identity: duplicate measurements of the same benchmark
	// are superseded under first-ingested-wins, and a superseded value must
	// not leave a warning of its own.
	seen := make(map[model.Identity]bool)
	for _, r := range results {
		if !r.AmbiguousUnit || seen[r.Identity] {
			continue
		}
		seen[r.Identity] = true
		rpt.Warnings = append(rpt.Warnings, fmt.Sprintf(
			"ambiguous unit: %q (%s) read from bare \"time\" field, assumed milliseconds",
			r.Identity.Name, r.Identity.Source))
	}

	rpt.Summary = model.Summary{
		Comparisons: len(rpt.Comparisons),
		CoreOnly:    len(rpt.CoreOnly),
		CommonsOnly: len(rpt.CommonsOnly),
	}
	rpt.Summary.Total = rpt.Summary.Comparisons*2 + rpt.Summary.CoreOnly + rpt.Summary.CommonsOnly

	if opts.ExpectedTotal > 0 && opts.ExpectedTotal != rpt.Summary.Total {
		rpt.Warnings = append(rpt.Warnings, fmt.Sprintf(
			"count mismatch: expected %d entries, enumerated %d",
			opts.ExpectedTotal, rpt.Summary.Total))
	}

	return rpt
}

// EncodeJSON serializes a report in its stable machine-readable form.
// Identical reports encode to identical bytes.
func EncodeJSON(rpt *model.Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rpt); err != nil {
		return nil, eris.Wrap(err, "report: encode json")
	}
	return buf.Bytes(), nil
}

// DecodeJSON parses a serialized report, for consumers such as the
// spreadsheet exporter.
func DecodeJSON(data []byte) (*model.Report, error) {
	var rpt model.Report
	if err := json.Unmarshal(data, &rpt); err != nil {
		return nil, eris.Wrap(err, "report: decode json")
	}
	return &rpt, nil
}

// Package pipeline wires the benchmark normalization stages together:
// ingestion output goes through extraction and classification per document,
// then cross-source resolution, then report assembly. One invocation is a
// pure pass over the batch; there is no state between runs.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bitcoin-commons/bench-cli/internal/classify"
	"github.com/bitcoin-commons/bench-cli/internal/extract"
	"github.com/bitcoin-commons/bench-cli/internal/model"
	"github.com/bitcoin-commons/bench-cli/internal/report"
	"github.com/bitcoin-commons/bench-cli/internal/resolve"
)

// Config tunes a pipeline run.
type Config struct {
	// MaxDepth bounds the extractor's recursion; <= 0 selects the default.
	MaxDepth int
	// ExpectedTotal reconciles the enumerated entry count against an
	// external expectation; 0 disables the check.
	ExpectedTotal int
	// Workers bounds parallel per-document classification. Documents are
	// independent, so this stage parallelizes freely; results are merged in
	// input order to keep the report byte-stable. <= 1 runs serially.
	Workers int
	// SynonymsFile optionally extends the benchmark-name synonym table.
	SynonymsFile string
}

// Pipeline runs the normalization pass.
type Pipeline struct {
	cfg  Config
	norm *classify.Normalizer
}

// New builds a Pipeline, loading the synonym extension file if configured.
func New(cfg Config) (*Pipeline, error) {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = extract.DefaultMaxDepth
	}
	norm := classify.NewNormalizer()
	if cfg.SynonymsFile != "" {
		if err := norm.LoadSynonyms(cfg.SynonymsFile); err != nil {
			return nil, eris.Wrap(err, "pipeline: load synonyms")
		}
	}
	return &Pipeline{cfg: cfg, norm: norm}, nil
}

// Run transforms a batch of tagged documents into the canonical report.
// Nothing in the batch can abort the run; the unit of failure isolation is
// one document, and per-document problems surface as report warnings.
// ingestWarnings carries problems found while materializing the batch
// (malformed artifacts) so they appear in the same report.
//
// A nil batch is a caller contract violation, not a data-quality issue.
func (p *Pipeline) Run(ctx context.Context, docs []model.Document, ingestWarnings []string) (*model.Report, error) {
	if docs == nil {
		return nil, eris.New("pipeline: nil document batch")
	}

	outcomes, err := p.classifyAll(ctx, docs)
	if err != nil {
		return nil, err
	}

	warnings := append([]string{}, ingestWarnings...)
	var results []model.ExtractionResult
	excluded := 0
	for i, out := range outcomes {
		if out.Excluded {
			excluded++
			continue
		}
		if len(out.Results) == 0 {
			warnings = append(warnings, fmt.Sprintf(
				"no timing found in %s (%s)", docs[i].Suite, docs[i].Source))
			continue
		}
		results = append(results, out.Results...)
	}

	res := resolve.Resolve(results, p.norm)
	rpt := report.Build(res, results, warnings, report.Options{ExpectedTotal: p.cfg.ExpectedTotal})

	zap.L().Info("pipeline: report assembled",
		zap.Int("documents", len(docs)),
		zap.Int("excluded", excluded),
		zap.Int("measurements", len(results)),
		zap.Int("comparisons", rpt.Summary.Comparisons),
		zap.Int("core_only", rpt.Summary.CoreOnly),
		zap.Int("commons_only", rpt.Summary.CommonsOnly),
		zap.Int("warnings", len(rpt.Warnings)),
	)
	return rpt, nil
}

// classifyAll runs extraction + classification for every document, in
// parallel when configured. Outcomes land in an index-addressed slice so the
// merge order matches the input order regardless of scheduling.
func (p *Pipeline) classifyAll(ctx context.Context, docs []model.Document) ([]classify.Outcome, error) {
	outcomes := make([]classify.Outcome, len(docs))

	if p.cfg.Workers <= 1 {
		for i, doc := range docs {
			outcomes[i] = classify.Classify(doc, p.cfg.MaxDepth)
		}
		return outcomes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "pipeline: classify cancelled")
			}
			outcomes[i] = classify.Classify(doc, p.cfg.MaxDepth)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Package resolve pairs measurements across the two sources and computes
// winner and relative speedup for every benchmark present on both sides.
package resolve

import (
	"math"

	"github.com/bitcoin-commons/bench-cli/internal/classify"
	"github.com/bitcoin-commons/bench-cli/internal/model"
)

// Resolution partitions all classified measurements into matched pairs and
// the one-sided remainders. A benchmark present on one side only is a
// structural fact, not an error.
type Resolution struct {
	Comparisons []model.ComparisonEntry
	CoreOnly    []model.UnpairedEntry
	CommonsOnly []model.UnpairedEntry
}

// bucket holds the measurements filed under one canonical name, split by
// source, in ingestion order.
type bucket struct {
	core    []model.ExtractionResult
	commons []model.ExtractionResult
}

// Resolve buckets results by normalized canonical name and forms a
// ComparisonEntry for every name present in both sources. Documents are
// expected to contain at most one entry per name per source; when duplicates
// occur the first ingested wins and the rest are superseded.
//
// Output order follows first appearance of each name in the input, which
// keeps reports byte-stable across runs on identical input.
func Resolve(results []model.ExtractionResult, norm *classify.Normalizer) Resolution {
	buckets := make(map[string]*bucket)
	var order []string

	for _, r := range results {
		key := norm.Normalize(r.Identity.Name)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		switch r.Identity.Source {
		case model.SourceCore:
			b.core = append(b.core, r)
		case model.SourceCommons:
			b.commons = append(b.commons, r)
		}
	}

	var res Resolution
	for _, key := range order {
		b := buckets[key]
		switch {
		case len(b.core) > 0 && len(b.commons) > 0:
			resolvePair(&res, b.core[0], b.commons[0])
		case len(b.core) > 0:
			res.CoreOnly = append(res.CoreOnly, unpaired(b.core[0]))
		case len(b.commons) > 0:
			res.CommonsOnly = append(res.CommonsOnly, unpaired(b.commons[0]))
		}
	}
	return res
}

// resolvePair compares one core and one commons measurement. If either side
// carries the absent sentinel the pair cannot be compared numerically; both
// sides are demoted to their unpaired lists instead of producing a bogus
// winner, and neither is dropped.
func resolvePair(res *Resolution, core, commons model.ExtractionResult) {
	if !core.HasTiming() || !commons.HasTiming() {
		res.CoreOnly = append(res.CoreOnly, unpaired(core))
		res.CommonsOnly = append(res.CommonsOnly, unpaired(commons))
		return
	}

	winner := model.SourceCore
	winNs, loseNs := core.TimingNs, commons.TimingNs
	if commons.TimingNs < core.TimingNs {
		winner = model.SourceCommons
		winNs, loseNs = commons.TimingNs, core.TimingNs
	}

	res.Comparisons = append(res.Comparisons, model.ComparisonEntry{
		Name:      core.Identity.Name,
		CoreNs:    core.TimingNs,
		CommonsNs: commons.TimingNs,
		Winner:    winner,
		Speedup:   speedup(loseNs, winNs),
		Partial:   core.Confidence == model.ConfidencePartial || commons.Confidence == model.ConfidencePartial,
	})
}

// speedup is losing time over winning time, rounded to two decimal digits.
func speedup(loseNs, winNs int64) float64 {
	r := float64(loseNs) / float64(winNs)
	return math.Round(r*100) / 100
}

func unpaired(r model.ExtractionResult) model.UnpairedEntry {
	return model.UnpairedEntry{
		Name:     r.Identity.Name,
		TimingNs: r.TimingNs,
		Partial:  r.Confidence == model.ConfidencePartial,
	}
}

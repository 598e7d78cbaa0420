// Package extract implements the deep value extractor: a prioritized,
// depth-bounded search for timing measurements over an arbitrarily shaped
// harness document. It is a pure function over its input and never fails;
// a document with no discoverable timing simply yields no result.
package extract

import (
	"math"

	"github.com/bitcoin-commons/bench-cli/internal/model"
)

// DefaultMaxDepth bounds recursion into nested documents. Timings buried
// deeper than this are treated as not present, not as an error.
const DefaultMaxDepth = 10

// metadataKeys are never descended into: they hold run bookkeeping, not
// measurements.
var metadataKeys = map[string]bool{
	"error":      true,
	"timestamp":  true,
	"log_file":   true,
	"note":       true,
	"raw_output": true,
}

// IsMetadataKey reports whether key belongs to the fixed metadata exclusion
// set shared by the extractor and the classifier.
func IsMetadataKey(key string) bool { return metadataKeys[key] }

// Direct field names checked on each node, highest priority first. The two
// groups carry their unit in the name; the bare "time" field does not and is
// assumed to be milliseconds by convention.
var (
	msFields = []string{"time_ms", "time_per_block_ms"}
	nsFields = []string{"time_ns", "time_per_block_ns"}
)

const nsPerMs = 1_000_000

// msToNs converts milliseconds to canonical nanoseconds, rounding to the
// nearest integer nanosecond.
func msToNs(ms float64) int64 { return int64(math.Round(ms * nsPerMs)) }

// Extraction is the raw outcome of one search: the canonical-nanosecond
// timing, naming context for the classifier, and any embedded statistics.
type Extraction struct {
	Found    bool
	TimingNs int64
	// Ambiguous marks a timing read from the bare "time" field, whose unit
	// is assumed rather than declared.
	Ambiguous bool
	// Name is the explicit "name" field of the matched node, if present.
	Name string
	// ParentKey is the key under which the matched node was reached.
	ParentKey string
	Stats     *model.Stats
	// Benchmarks is the sequence whose first element produced the timing,
	// when the match came through a "benchmarks" sequence at any depth. The
	// remaining elements stay individually addressable; the classifier
	// surfaces them as sub-labeled identities.
	Benchmarks model.Value
}

// Find searches root for the first plausible timing using the fixed priority
// order, evaluated on each node before descending. maxDepth <= 0 selects
// DefaultMaxDepth.
func Find(root model.Value, maxDepth int) Extraction {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return find(root, 0, maxDepth, "")
}

func find(v model.Value, depth, maxDepth int, parentKey string) Extraction {
	if depth > maxDepth || !v.IsMapping() {
		return Extraction{}
	}

	// Priority 1: explicit millisecond fields. The product of a decimal
	// millisecond value and 1e6 rarely lands exactly on an integer, so the
	// cast must round, not truncate.
	for _, f := range msFields {
		if ms, ok := positiveNumber(v, f); ok {
			return matched(v, parentKey, msToNs(ms), false)
		}
	}

	// Priority 2: explicit nanosecond fields.
	for _, f := range nsFields {
		if ns, ok := positiveNumber(v, f); ok {
			return matched(v, parentKey, int64(ns), false)
		}
	}

	// Priority 3: bare "time", assumed milliseconds. Flagged so consumers
	// can audit the value instead of trusting it blindly.
	if ms, ok := positiveNumber(v, "time"); ok {
		return matched(v, parentKey, msToNs(ms), true)
	}

	// Priority 4: criterion-style estimates, already nanoseconds.
	if stats := statsAt(v); stats != nil {
		est := stats.MedianNs
		if est <= 0 {
			est = stats.MeanNs
		}
		if est > 0 {
			ext := matched(v, parentKey, int64(math.Round(est)), false)
			ext.Stats = stats
			return ext
		}
	}

	// Priority 5: a "benchmarks" sequence surfaces its first element as the
	// representative timing. Remaining elements stay addressable as
	// sub-labeled identities, handled by the classifier.
	if bench, ok := v.Field("benchmarks"); ok && bench.IsSequence() && bench.Len() > 0 {
		if ext := find(bench.Items()[0], depth+1, maxDepth, "benchmarks"); ext.Found {
			if !ext.Benchmarks.IsSequence() {
				ext.Benchmarks = bench
			}
			return ext
		}
	}

	// Priority 6: descend into nested mappings in document order, skipping
	// metadata keys. First hit wins.
	for _, key := range v.Keys() {
		if metadataKeys[key] {
			continue
		}
		child, _ := v.Field(key)
		if !child.IsMapping() {
			continue
		}
		if ext := find(child, depth+1, maxDepth, key); ext.Found {
			return ext
		}
	}

	return Extraction{}
}

// matched builds an Extraction for a hit on node v, attaching the node's
// explicit name and statistics when present.
func matched(v model.Value, parentKey string, ns int64, ambiguous bool) Extraction {
	ext := Extraction{
		Found:     true,
		TimingNs:  ns,
		Ambiguous: ambiguous,
		ParentKey: parentKey,
		Stats:     statsAt(v),
	}
	if name, ok := v.Field("name"); ok {
		if s, isStr := name.Str(); isStr {
			ext.Name = s
		}
	}
	return ext
}

// positiveNumber returns the numeric field value if it exists and is a real
// measurement. Zero and negative values are the ingestion failure sentinel
// and count as absent.
func positiveNumber(v model.Value, field string) (float64, bool) {
	f, ok := v.Field(field)
	if !ok {
		return 0, false
	}
	n, isNum := f.Num()
	if !isNum || n <= 0 {
		return 0, false
	}
	return n, true
}

// statsAt reads a nested "statistics" object holding criterion estimator
// output ({"median": {"point_estimate": ...}, "mean": {...}}). Values are
// raw high-resolution estimates in nanoseconds.
func statsAt(v model.Value) *model.Stats {
	statsVal, ok := v.Field("statistics")
	if !ok || !statsVal.IsMapping() {
		return nil
	}

	var s model.Stats
	s.MedianNs = pointEstimate(statsVal, "median")
	s.MeanNs = pointEstimate(statsVal, "mean")
	if s.MedianNs <= 0 && s.MeanNs <= 0 {
		return nil
	}
	s.PointNs = s.MedianNs
	if s.PointNs <= 0 {
		s.PointNs = s.MeanNs
	}
	return &s
}

func pointEstimate(stats model.Value, estimator string) float64 {
	est, ok := stats.Field(estimator)
	if !ok || !est.IsMapping() {
		return 0
	}
	pt, ok := est.Field("point_estimate")
	if !ok {
		return 0
	}
	n, isNum := pt.Num()
	if !isNum {
		return 0
	}
	return n
}

// Package classify decides what each ingested document represents: a
// complete measurement, a partial one (valid timing next to an error
// marker), or nothing usable. It also derives the benchmark identity each
// measurement is filed under.
package classify

import (
	"fmt"

	"github.com/bitcoin-commons/bench-cli/internal/extract"
	"github.com/bitcoin-commons/bench-cli/internal/model"
)

// Outcome is the classification of one document.
type Outcome struct {
	// Results holds zero or more measurements surfaced from the document.
	// Multi-measurement documents yield one entry per measurement, the
	// extras carrying sub-labels.
	Results []model.ExtractionResult
	// Excluded is set only for documents that are empty in every sense:
	// fewer than one non-metadata top-level key and no discoverable timing.
	Excluded bool
}

// Classify inspects one document together with its deep-extraction result.
//
// Inclusion is deliberately lenient: an "error" field does not by itself
// exclude a document. A run that failed partway but still recorded a nested
// timing is surfaced as partial rather than hidden; over-aggressive
// exclusion is exactly the failure mode this system replaces.
func Classify(doc model.Document, maxDepth int) Outcome {
	ext := extract.Find(doc.Root, maxDepth)
	dataKeys := nonMetadataKeys(doc.Root)

	if !ext.Found && dataKeys < 1 {
		return Outcome{Excluded: true}
	}
	if !ext.Found {
		// Document has data but no discoverable timing. Included for
		// diagnostics, with nothing to surface.
		return Outcome{}
	}

	hasError := hasErrorField(doc.Root)

	primary := model.ExtractionResult{
		Identity: model.Identity{
			Name:   deriveName(ext, doc.Suite),
			Source: doc.Source,
		},
		TimingNs:      ext.TimingNs,
		Stats:         ext.Stats,
		Confidence:    model.ConfidenceComplete,
		AmbiguousUnit: ext.Ambiguous,
	}
	if hasError {
		primary.Confidence = model.ConfidencePartial
	}

	results := []model.ExtractionResult{primary}
	results = append(results, extraMeasurements(benchSequence(ext, doc), doc, maxDepth, hasError)...)
	return Outcome{Results: results}
}

// benchSequence picks the "benchmarks" sequence whose remaining elements
// should be surfaced: the one the extractor descended into, at whatever
// depth, falling back to a top-level sequence when the primary timing was
// found elsewhere in the document.
func benchSequence(ext extract.Extraction, doc model.Document) model.Value {
	if ext.Benchmarks.IsSequence() {
		return ext.Benchmarks
	}
	bench, _ := doc.Root.Field("benchmarks")
	return bench
}

// extraMeasurements surfaces the remaining elements of a "benchmarks"
// sequence as individually addressable identities. The first element is
// already represented by the primary extraction.
func extraMeasurements(bench model.Value, doc model.Document, maxDepth int, hasError bool) []model.ExtractionResult {
	if !bench.IsSequence() || bench.Len() < 2 {
		return nil
	}

	var results []model.ExtractionResult
	for i, item := range bench.Items()[1:] {
		ext := extract.Find(item, maxDepth)
		if !ext.Found {
			continue
		}
		idx := i + 1
		name := ext.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", doc.Suite, idx)
		}
		r := model.ExtractionResult{
			Identity: model.Identity{
				Name:     name,
				Source:   doc.Source,
				SubLabel: fmt.Sprintf("benchmarks[%d]", idx),
			},
			TimingNs:      ext.TimingNs,
			Stats:         ext.Stats,
			Confidence:    model.ConfidenceComplete,
			AmbiguousUnit: ext.Ambiguous,
		}
		if hasError {
			r.Confidence = model.ConfidencePartial
		}
		results = append(results, r)
	}
	return results
}

// deriveName picks the most specific available label: the matched node's own
// "name" field, then the parent key the timing was found under, then the
// suite label from the filename.
func deriveName(ext extract.Extraction, suite string) string {
	if ext.Name != "" {
		return ext.Name
	}
	if ext.ParentKey != "" && ext.ParentKey != "benchmarks" {
		return ext.ParentKey
	}
	return suite
}

func nonMetadataKeys(root model.Value) int {
	n := 0
	for _, key := range root.Keys() {
		if !extract.IsMetadataKey(key) {
			n++
		}
	}
	return n
}

func hasErrorField(root model.Value) bool {
	_, ok := root.Field("error")
	return ok
}

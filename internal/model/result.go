package model

// Source identifies which node implementation produced a benchmark artifact.
type Source string

const (
	SourceCore    Source = "core"
	SourceCommons Source = "commons"
)

// Confidence describes how trustworthy an extraction is.
type Confidence string

const (
	ConfidenceComplete Confidence = "complete"
	ConfidencePartial  Confidence = "partial"
	ConfidenceNone     Confidence = "none"
)

// Document is one raw harness artifact: a dynamic value tree tagged with the
// producing source and a suite label (usually derived from the filename).
// The source tag is assigned by the ingestion caller, never inferred from
// document content.
type Document struct {
	Root   Value  `json:"-"`
	Source Source `json:"source"`
	Suite  string `json:"suite"`
}

// Identity names one benchmark measurement. SubLabel distinguishes multiple
// measurements within a single document (e.g. signature-scheme variants under
// one run).
type Identity struct {
	Name     string `json:"name"`
	Source   Source `json:"source"`
	SubLabel string `json:"sub_label,omitempty"`
}

// Stats carries an embedded statistical summary when the document contains
// one (criterion-style estimate records). Values are nanoseconds.
type Stats struct {
	MeanNs   float64 `json:"mean_ns,omitempty"`
	MedianNs float64 `json:"median_ns,omitempty"`
	PointNs  float64 `json:"point_ns,omitempty"`
}

// ExtractionResult is the normalized outcome of deep-searching one document.
// TimingNs is canonical nanoseconds; a value <= 0 means the timing is absent
// (the harnesses never produce a legitimate zero duration, so zero is the
// ingestion failure sentinel).
type ExtractionResult struct {
	Identity   Identity   `json:"identity"`
	TimingNs   int64      `json:"timing_ns"`
	Stats      *Stats     `json:"stats,omitempty"`
	Confidence Confidence `json:"confidence"`
	// AmbiguousUnit marks timings taken from a bare "time" field whose unit
	// is assumed (milliseconds) rather than declared.
	AmbiguousUnit bool `json:"ambiguous_unit,omitempty"`
}

// HasTiming reports whether the extraction carries a usable measurement.
func (e ExtractionResult) HasTiming() bool { return e.TimingNs > 0 }

// ComparisonEntry pairs one core and one commons measurement that share a
// comparable identity.
type ComparisonEntry struct {
	Name      string  `json:"name"`
	CoreNs    int64   `json:"core_ns"`
	CommonsNs int64   `json:"commons_ns"`
	Winner    Source  `json:"winner"`
	Speedup   float64 `json:"speedup"`
	Partial   bool    `json:"partial"`
}

// UnpairedEntry is a measurement present on one side only.
type UnpairedEntry struct {
	Name     string `json:"name"`
	TimingNs int64  `json:"time_ns"`
	Partial  bool   `json:"partial"`
}

// Summary holds the aggregate counts of a report. Counts are produced by
// direct enumeration of the final category lists, never recomputed
// independently, so len(Report.Comparisons) == Summary.Comparisons always.
type Summary struct {
	Total       int `json:"total"`
	CoreOnly    int `json:"core_only"`
	CommonsOnly int `json:"commons_only"`
	Comparisons int `json:"comparisons"`
}

// Report is the canonical output of a pipeline run. It is the sole contract
// consumed by renderers and must stay machine-parseable.
type Report struct {
	Summary     Summary           `json:"summary"`
	Comparisons []ComparisonEntry `json:"comparisons"`
	CoreOnly    []UnpairedEntry   `json:"core_only"`
	CommonsOnly []UnpairedEntry   `json:"commons_only"`
	Warnings    []string          `json:"warnings"`
}

package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-commons/bench-cli/internal/model"
	"github.com/bitcoin-commons/bench-cli/internal/resolve"
)

func sampleResolution() resolve.Resolution {
	return resolve.Resolution{
		Comparisons: []model.ComparisonEntry{
			{Name: "connect_block", CoreNs: 300_000_000, CommonsNs: 250_000_000, Winner: model.SourceCommons, Speedup: 1.2},
			{Name: "verify_script", CoreNs: 100, CommonsNs: 250, Winner: model.SourceCore, Speedup: 2.5},
		},
		CoreOnly: []model.UnpairedEntry{
			{Name: "mempool_eviction", TimingNs: 1000},
		},
		CommonsOnly: []model.UnpairedEntry{
			{Name: "is_standard_tx", TimingNs: 2000},
			{Name: "replacement_checks", TimingNs: 3000, Partial: true},
		},
	}
}

func TestBuild_SummaryByEnumeration(t *testing.T) {
	rpt := Build(sampleResolution(), nil, nil, Options{})

	// The one invariant that must never break: the summary agrees with the
	// enumerated lists.
	assert.Equal(t, len(rpt.Comparisons), rpt.Summary.Comparisons)
	assert.Equal(t, len(rpt.CoreOnly), rpt.Summary.CoreOnly)
	assert.Equal(t, len(rpt.CommonsOnly), rpt.Summary.CommonsOnly)
	assert.Equal(t, 2*2+1+2, rpt.Summary.Total)
}

func TestBuild_EmptyListsNotNil(t *testing.T) {
	rpt := Build(resolve.Resolution{}, nil, nil, Options{})

	// Serialized form must show [] rather than null.
	assert.NotNil(t, rpt.Comparisons)
	assert.NotNil(t, rpt.CoreOnly)
	assert.NotNil(t, rpt.CommonsOnly)
	assert.NotNil(t, rpt.Warnings)
	assert.Equal(t, 0, rpt.Summary.Total)
}

func TestBuild_AmbiguousUnitWarnings(t *testing.T) {
	results := []model.ExtractionResult{
		{
			Identity:      model.Identity{Name: "legacy_bench", Source: model.SourceCore},
			TimingNs:      2_000_000,
			Confidence:    model.ConfidenceComplete,
			AmbiguousUnit: true,
		},
	}

	rpt := Build(resolve.Resolution{}, results, nil, Options{})
	require.Len(t, rpt.Warnings, 1)
	assert.Contains(t, rpt.Warnings[0], "ambiguous unit")
	assert.Contains(t, rpt.Warnings[0], "legacy_bench")
}

func TestBuild_AmbiguousUnitWarningsDeduplicated(t *testing.T) {
	// A duplicate measurement of the same benchmark is superseded under
	// first-ingested-wins; it must not leave a second warning behind.
	ambiguous := model.ExtractionResult{
		Identity:      model.Identity{Name: "legacy_bench", Source: model.SourceCore},
		TimingNs:      2_000_000,
		Confidence:    model.ConfidenceComplete,
		AmbiguousUnit: true,
	}
	superseded := ambiguous
	superseded.TimingNs = 9_000_000

	rpt := Build(resolve.Resolution{}, []model.ExtractionResult{ambiguous, superseded}, nil, Options{})
	require.Len(t, rpt.Warnings, 1)
	assert.Contains(t, rpt.Warnings[0], "legacy_bench")
}

func TestBuild_CountMismatchWarning(t *testing.T) {
	rpt := Build(sampleResolution(), nil, nil, Options{ExpectedTotal: 76})

	require.Len(t, rpt.Warnings, 1)
	assert.Contains(t, rpt.Warnings[0], "count mismatch")
	assert.Contains(t, rpt.Warnings[0], "76")
	// The report still materializes, degraded rather than absent.
	assert.Equal(t, 2, rpt.Summary.Comparisons)
}

func TestBuild_ExpectedTotalMatchNoWarning(t *testing.T) {
	rpt := Build(sampleResolution(), nil, nil, Options{ExpectedTotal: 7})
	assert.Empty(t, rpt.Warnings)
}

func TestBuild_IngestWarningsCarriedThrough(t *testing.T) {
	rpt := Build(resolve.Resolution{}, nil, []string{"skipped malformed artifact x.json"}, Options{})
	require.Len(t, rpt.Warnings, 1)
	assert.Contains(t, rpt.Warnings[0], "x.json")
}

func TestEncodeJSON_Deterministic(t *testing.T) {
	rpt := Build(sampleResolution(), nil, []string{"w1"}, Options{})

	a, err := EncodeJSON(rpt)
	require.NoError(t, err)
	b, err := EncodeJSON(rpt)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	rpt := Build(sampleResolution(), nil, nil, Options{})

	data, err := EncodeJSON(rpt)
	require.NoError(t, err)

	back, err := DecodeJSON(data)
	require.NoError(t, err)
	assert.Equal(t, rpt.Summary, back.Summary)
	assert.Equal(t, rpt.Comparisons, back.Comparisons)
	assert.Equal(t, rpt.CoreOnly, back.CoreOnly)
	assert.Equal(t, rpt.CommonsOnly, back.CommonsOnly)
}

func TestEncodeJSON_ContractFields(t *testing.T) {
	rpt := Build(sampleResolution(), nil, nil, Options{})

	data, err := EncodeJSON(rpt)
	require.NoError(t, err)

	s := string(data)
	for _, field := range []string{
		`"summary"`, `"total"`, `"core_only"`, `"commons_only"`,
		`"comparisons"`, `"name"`, `"core_ns"`, `"commons_ns"`,
		`"winner"`, `"speedup"`, `"partial"`, `"time_ns"`, `"warnings"`,
	} {
		assert.Contains(t, s, field)
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"summary":`))
	require.Error(t, err)
}

package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValue_Mapping(t *testing.T) {
	v, err := DecodeValue(strings.NewReader(`{"name": "connect_block", "time_ms": 259.68, "ok": true, "note": null}`))
	require.NoError(t, err)

	require.True(t, v.IsMapping())
	assert.Equal(t, []string{"name", "time_ms", "ok", "note"}, v.Keys())

	name, ok := v.Field("name")
	require.True(t, ok)
	s, isStr := name.Str()
	require.True(t, isStr)
	assert.Equal(t, "connect_block", s)

	ms, ok := v.Field("time_ms")
	require.True(t, ok)
	n, isNum := ms.Num()
	require.True(t, isNum)
	assert.InDelta(t, 259.68, n, 1e-9)

	note, ok := v.Field("note")
	require.True(t, ok)
	assert.Equal(t, KindNull, note.Kind())
}

func TestDecodeValue_Nested(t *testing.T) {
	v, err := DecodeValue(strings.NewReader(`{"statistics": {"median": {"point_estimate": 12345.6}}}`))
	require.NoError(t, err)

	stats, ok := v.Field("statistics")
	require.True(t, ok)
	median, ok := stats.Field("median")
	require.True(t, ok)
	pt, ok := median.Field("point_estimate")
	require.True(t, ok)
	n, _ := pt.Num()
	assert.InDelta(t, 12345.6, n, 1e-9)
}

func TestDecodeValue_Sequence(t *testing.T) {
	v, err := DecodeValue(strings.NewReader(`{"benchmarks": [{"name": "a"}, {"name": "b"}]}`))
	require.NoError(t, err)

	bench, ok := v.Field("benchmarks")
	require.True(t, ok)
	require.True(t, bench.IsSequence())
	assert.Equal(t, 2, bench.Len())

	first := bench.Items()[0]
	name, _ := first.Field("name")
	s, _ := name.Str()
	assert.Equal(t, "a", s)
}

func TestDecodeValue_KeyOrderPreserved(t *testing.T) {
	v, err := DecodeValue(strings.NewReader(`{"z": 1, "a": 2, "m": 3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, v.Keys())
}

func TestDecodeValue_Malformed(t *testing.T) {
	_, err := DecodeValue(strings.NewReader(`{"truncated": `))
	require.Error(t, err)

	_, err = DecodeValue(strings.NewReader(`not json at all`))
	require.Error(t, err)
}

func TestDecodeValue_TopLevelScalar(t *testing.T) {
	v, err := DecodeValue(strings.NewReader(`42`))
	require.NoError(t, err)
	n, ok := v.Num()
	require.True(t, ok)
	assert.Equal(t, 42.0, n)
}

func TestMappingBuilder(t *testing.T) {
	v := Mapping(
		"time_ns", 500000,
		"inner", Mapping("name", "x"),
	)
	require.True(t, v.IsMapping())
	assert.Equal(t, []string{"time_ns", "inner"}, v.Keys())

	inner, ok := v.Field("inner")
	require.True(t, ok)
	assert.True(t, inner.IsMapping())
}

func TestValueAccessors_WrongKind(t *testing.T) {
	n := Number(1)
	_, ok := n.Str()
	assert.False(t, ok)
	_, ok = n.Field("x")
	assert.False(t, ok)
	assert.Nil(t, n.Keys())
	assert.Nil(t, n.Items())
	assert.Equal(t, 0, n.Len())
}

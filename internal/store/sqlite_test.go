package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	stored, err := s.SaveReport(ctx, "nightly", sampleReport())
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	back, err := s.GetReport(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, back)
	assert.Equal(t, stored.ID, back.ID)
	assert.Equal(t, "nightly", back.Label)
	require.NotNil(t, back.Report)
	assert.Equal(t, sampleReport().Summary, back.Report.Summary)
	assert.Equal(t, sampleReport().Comparisons, back.Report.Comparisons)
}

func TestSQLiteStore_GetReport_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	back, err := s.GetReport(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, back)
}

func TestSQLiteStore_ListReports(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.SaveReport(ctx, "first", sampleReport())
	require.NoError(t, err)
	_, err = s.SaveReport(ctx, "second", sampleReport())
	require.NoError(t, err)

	out, err := s.ListReports(ctx, ReportFilter{})
	require.NoError(t, err)
	require.Len(t, out, 2)

	limited, err := s.ListReports(ctx, ReportFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/bitcoin-commons/bench-cli/internal/db"
	"github.com/bitcoin-commons/bench-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// preparedStatements lists queries to prepare on each new connection for the
// most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_report": `INSERT INTO reports (id, label, report, created_at) VALUES ($1, $2, $3, $4)`,
	"get_report":    `SELECT id, label, report, created_at FROM reports WHERE id = $1`,
	"list_reports":  `SELECT id, label, report, created_at FROM reports ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL,
	report     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS report_entries (
	report_id  TEXT NOT NULL REFERENCES reports(id),
	name       TEXT NOT NULL,
	category   TEXT NOT NULL,
	core_ns    BIGINT,
	commons_ns BIGINT,
	winner     TEXT,
	speedup    DOUBLE PRECISION,
	partial    BOOLEAN NOT NULL DEFAULT false
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_report_entries_report_id ON report_entries(report_id);
CREATE INDEX IF NOT EXISTS idx_report_entries_name ON report_entries(name);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// SaveReport stores the report row plus one queryable entry row per
// comparison and unpaired measurement.
func (s *PostgresStore) SaveReport(ctx context.Context, label string, rpt *model.Report) (*StoredReport, error) {
	payload, err := json.Marshal(rpt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal report")
	}

	stored := &StoredReport{
		ID:        uuid.NewString(),
		Label:     label,
		Report:    rpt,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.pool.Exec(ctx, "insert_report",
		stored.ID, stored.Label, payload, stored.CreatedAt); err != nil {
		return nil, eris.Wrap(err, "postgres: insert report")
	}

	rows := entryRows(stored.ID, rpt)
	if _, err := db.CopyFrom(ctx, s.pool, "report_entries",
		[]string{"report_id", "name", "category", "core_ns", "commons_ns", "winner", "speedup", "partial"},
		rows); err != nil {
		return nil, eris.Wrap(err, "postgres: copy report entries")
	}

	return stored, nil
}

// entryRows flattens a report into report_entries rows.
func entryRows(reportID string, rpt *model.Report) [][]any {
	rows := make([][]any, 0, len(rpt.Comparisons)+len(rpt.CoreOnly)+len(rpt.CommonsOnly))
	for _, c := range rpt.Comparisons {
		rows = append(rows, []any{
			reportID, c.Name, "comparison", c.CoreNs, c.CommonsNs, string(c.Winner), c.Speedup, c.Partial,
		})
	}
	for _, e := range rpt.CoreOnly {
		rows = append(rows, []any{
			reportID, e.Name, "core_only", e.TimingNs, nil, nil, nil, e.Partial,
		})
	}
	for _, e := range rpt.CommonsOnly {
		rows = append(rows, []any{
			reportID, e.Name, "commons_only", nil, e.TimingNs, nil, nil, e.Partial,
		})
	}
	return rows
}

// GetReport retrieves one stored report by ID. Returns nil when not found.
func (s *PostgresStore) GetReport(ctx context.Context, id string) (*StoredReport, error) {
	var stored StoredReport
	var payload []byte
	err := s.pool.QueryRow(ctx, "get_report", id).Scan(
		&stored.ID, &stored.Label, &payload, &stored.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get report")
	}

	var rpt model.Report
	if err := json.Unmarshal(payload, &rpt); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal report")
	}
	stored.Report = &rpt
	return &stored, nil
}

// ListReports returns stored reports, newest first.
func (s *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) ([]StoredReport, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, "list_reports", limit, filter.Offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var out []StoredReport
	for rows.Next() {
		var stored StoredReport
		var payload []byte
		if err := rows.Scan(&stored.ID, &stored.Label, &payload, &stored.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		var rpt model.Report
		if err := json.Unmarshal(payload, &rpt); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal report")
		}
		stored.Report = &rpt
		out = append(out, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate reports")
	}
	return out, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bitcoin-commons/bench-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local
// single-binary use without a database server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// database/sql pools connections, and every connection to :memory: opens
	// a distinct database. Pin the pool to one connection so the schema is
	// visible everywhere.
	if strings.Contains(dsn, ":memory:") {
		sqldb.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqldb.Exec(pragma); err != nil {
			sqldb.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqldb}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL,
	report     TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS report_entries (
	report_id  TEXT NOT NULL REFERENCES reports(id),
	name       TEXT NOT NULL,
	category   TEXT NOT NULL,
	core_ns    INTEGER,
	commons_ns INTEGER,
	winner     TEXT,
	speedup    REAL,
	partial    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_report_entries_report_id ON report_entries(report_id);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// SaveReport stores the report row plus one entry row per measurement.
func (s *SQLiteStore) SaveReport(ctx context.Context, label string, rpt *model.Report) (*StoredReport, error) {
	payload, err := json.Marshal(rpt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal report")
	}

	stored := &StoredReport{
		ID:        uuid.NewString(),
		Label:     label,
		Report:    rpt,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reports (id, label, report, created_at) VALUES (?, ?, ?, ?)`,
		stored.ID, stored.Label, string(payload), stored.CreatedAt); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert report")
	}

	for _, row := range entryRows(stored.ID, rpt) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_entries (report_id, name, category, core_ns, commons_ns, winner, speedup, partial)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			row...); err != nil {
			return nil, eris.Wrap(err, "sqlite: insert report entry")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return stored, nil
}

// GetReport retrieves one stored report by ID. Returns nil when not found.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*StoredReport, error) {
	var stored StoredReport
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, label, report, created_at FROM reports WHERE id = ?`, id).
		Scan(&stored.ID, &stored.Label, &payload, &stored.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get report")
	}

	var rpt model.Report
	if err := json.Unmarshal([]byte(payload), &rpt); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal report")
	}
	stored.Report = &rpt
	return &stored, nil
}

// ListReports returns stored reports, newest first.
func (s *SQLiteStore) ListReports(ctx context.Context, filter ReportFilter) ([]StoredReport, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, report, created_at FROM reports ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, filter.Offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close() //nolint:errcheck

	var out []StoredReport
	for rows.Next() {
		var stored StoredReport
		var payload string
		if err := rows.Scan(&stored.ID, &stored.Label, &payload, &stored.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report")
		}
		var rpt model.Report
		if err := json.Unmarshal([]byte(payload), &rpt); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal report")
		}
		stored.Report = &rpt
		out = append(out, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate reports")
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

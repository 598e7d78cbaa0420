// Package store persists report history. Each pipeline run is pure and
// recomputes its report from scratch; history is explicit opt-in, one stored
// row per saved report.
package store

import (
	"context"
	"time"

	"github.com/bitcoin-commons/bench-cli/internal/model"
)

// StoredReport is one persisted report with its identity and metadata.
type StoredReport struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	Report    *model.Report `json:"report"`
	CreatedAt time.Time     `json:"created_at"`
}

// ReportFilter specifies criteria for listing stored reports.
type ReportFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for report history.
type Store interface {
	SaveReport(ctx context.Context, label string, rpt *model.Report) (*StoredReport, error)
	GetReport(ctx context.Context, id string) (*StoredReport, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]StoredReport, error)

	Migrate(ctx context.Context) error
	Close() error
}

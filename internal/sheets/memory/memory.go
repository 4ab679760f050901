// Package memory is an in-process insight exporter. The worker falls back to
// it when no spreadsheet is configured; tests use it to observe exports.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/insights"
	ports "fintrack/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	exports map[core.Period][]insights.Insight
	count   int
}

var _ ports.InsightExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{exports: make(map[core.Period][]insights.Insight)}
}

// ExportInsights replaces the snapshot held for period.
func (e *Exporter) ExportInsights(ctx context.Context, period core.Period, rows []insights.Insight) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exports[period] = append([]insights.Insight(nil), rows...)
	e.count++
	slog.DebugContext(ctx, "Insights exported in memory",
		"month", period.Month,
		"year", period.Year,
		"rows", len(rows))
	return nil
}

// Snapshot returns the last rows exported for period.
func (e *Exporter) Snapshot(period core.Period) ([]insights.Insight, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, ok := e.exports[period]
	return append([]insights.Insight(nil), rows...), ok
}

// Exports returns how many exports have been made.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

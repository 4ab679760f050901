package memory

import (
	"context"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/insights"
)

func TestExporterReplacesSnapshot(t *testing.T) {
	e := New()
	ctx := context.Background()
	june := core.Period{Month: 6, Year: 2024}

	if _, ok := e.Snapshot(june); ok {
		t.Fatal("expected no snapshot before export")
	}

	first := []insights.Insight{{Category: core.Food}, {Category: core.Rent}}
	if err := e.ExportInsights(ctx, june, first); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := e.ExportInsights(ctx, june, first[:1]); err != nil {
		t.Fatalf("export: %v", err)
	}

	rows, ok := e.Snapshot(june)
	if !ok || len(rows) != 1 || rows[0].Category != core.Food {
		t.Fatalf("unexpected snapshot: %v %v", rows, ok)
	}
	if e.Exports() != 2 {
		t.Fatalf("expected 2 exports, got %d", e.Exports())
	}

	first[0].Category = core.Other
	rows, _ = e.Snapshot(june)
	if rows[0].Category != core.Food {
		t.Fatal("snapshot must not alias caller slices")
	}
}

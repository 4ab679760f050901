package sheets

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/insights"
)

// Ports for outbound adapters.
type (
	// InsightExporter publishes a period's insights to an external sheet,
	// replacing whatever was exported for that period before.
	InsightExporter interface {
		ExportInsights(ctx context.Context, period core.Period, rows []insights.Insight) error
	}
)

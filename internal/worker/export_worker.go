package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/sheets"
)

// InsightSource computes the insights for one period from the record store.
type InsightSource interface {
	Insights(ctx context.Context, period core.Period) ([]insights.Insight, error)
}

// ChangeConsumer delivers record changed messages until ctx is done.
type ChangeConsumer interface {
	ConsumeRecordChanged(ctx context.Context, handler func(context.Context, *amqp.RecordChangedMessage) error) error
}

// ExportWorker keeps the exported insights in step with the record store.
type ExportWorker struct {
	source   InsightSource
	exporter sheets.InsightExporter
	now      func() time.Time
}

func NewExportWorker(source InsightSource, exporter sheets.InsightExporter) *ExportWorker {
	return &ExportWorker{
		source:   source,
		exporter: exporter,
		now:      time.Now,
	}
}

// HandleRecordChanged re-exports the period the message refers to.
func (w *ExportWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	slog.InfoContext(ctx, "Processing record changed message",
		"kind", msg.Kind,
		"op", msg.Op,
		"id", msg.ID,
		"month", msg.Month,
		"year", msg.Year)

	period := msg.Period()
	if err := period.Validate(); err != nil {
		// Redelivery cannot fix a bad period; drop it.
		slog.WarnContext(ctx, "Ignoring message with invalid period", "id", msg.ID, "error", err)
		return nil
	}
	return w.ExportPeriod(ctx, period)
}

// ExportPeriod recomputes and exports the insights for period.
func (w *ExportWorker) ExportPeriod(ctx context.Context, period core.Period) error {
	rows, err := w.source.Insights(ctx, period)
	if err != nil {
		return fmt.Errorf("compute insights: %w", err)
	}
	if err := w.exporter.ExportInsights(ctx, period, rows); err != nil {
		return fmt.Errorf("export insights: %w", err)
	}
	return nil
}

// ExportCurrent exports the insights of the current month.
func (w *ExportWorker) ExportCurrent(ctx context.Context) error {
	return w.ExportPeriod(ctx, core.CurrentPeriod(w.now()))
}

// Run exports the current month once, then serves change messages from
// consumer and re-exports on schedule until ctx is done. consumer may be nil
// and schedule may be empty.
func (w *ExportWorker) Run(ctx context.Context, consumer ChangeConsumer, schedule string) error {
	c := cron.New()
	if schedule != "" {
		_, err := c.AddFunc(schedule, func() {
			if err := w.ExportCurrent(ctx); err != nil {
				slog.ErrorContext(ctx, "Scheduled export failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule export %q: %w", schedule, err)
		}
	}

	if err := w.ExportCurrent(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup export failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeRecordChanged(ctx, w.HandleRecordChanged)
		})
	}

	c.Start()
	slog.InfoContext(ctx, "Export worker running", "schedule", schedule, "consumer", consumer != nil)
	g.Go(func() error {
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

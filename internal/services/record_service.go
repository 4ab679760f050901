package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/records"
)

// ChangePublisher announces record changes to downstream consumers.
type ChangePublisher interface {
	PublishRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error
}

// RecordService orchestrates record operations across a store and an
// optional change publisher, and derives insight snapshots from the store.
type RecordService struct {
	store     records.Store
	publisher ChangePublisher
}

// NewRecordService returns a service over store. publisher may be nil.
func NewRecordService(store records.Store, publisher ChangePublisher) *RecordService {
	return &RecordService{
		store:     store,
		publisher: publisher,
	}
}

func (s *RecordService) CreateTransaction(ctx context.Context, f core.TransactionFields) (core.Transaction, error) {
	t, err := s.store.CreateTransaction(ctx, f)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.KindTransaction, amqp.OpCreated, t.ID, t.Date.Period())
	return t, nil
}

func (s *RecordService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *RecordService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *RecordService) UpdateTransaction(ctx context.Context, id string, f core.TransactionFields) (core.Transaction, error) {
	before, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := s.store.UpdateTransaction(ctx, id, f)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.KindTransaction, amqp.OpUpdated, t.ID, t.Date.Period())
	if old := before.Date.Period(); old != t.Date.Period() {
		s.publish(ctx, amqp.KindTransaction, amqp.OpUpdated, t.ID, old)
	}
	return t, nil
}

func (s *RecordService) DeleteTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.KindTransaction, amqp.OpDeleted, t.ID, t.Date.Period())
	return t, nil
}

func (s *RecordService) CreateBudget(ctx context.Context, f core.BudgetFields) (core.Budget, error) {
	b, err := s.store.CreateBudget(ctx, f)
	if err != nil {
		return core.Budget{}, err
	}
	s.publish(ctx, amqp.KindBudget, amqp.OpCreated, b.ID, b.Period())
	return b, nil
}

func (s *RecordService) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	return s.store.GetBudget(ctx, id)
}

func (s *RecordService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx)
}

func (s *RecordService) UpdateBudget(ctx context.Context, id string, f core.BudgetFields) (core.Budget, error) {
	before, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	b, err := s.store.UpdateBudget(ctx, id, f)
	if err != nil {
		return core.Budget{}, err
	}
	s.publish(ctx, amqp.KindBudget, amqp.OpUpdated, b.ID, b.Period())
	if old := before.Period(); old != b.Period() {
		s.publish(ctx, amqp.KindBudget, amqp.OpUpdated, b.ID, old)
	}
	return b, nil
}

func (s *RecordService) DeleteBudget(ctx context.Context, id string) (core.Budget, error) {
	b, err := s.store.DeleteBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	s.publish(ctx, amqp.KindBudget, amqp.OpDeleted, b.ID, b.Period())
	return b, nil
}

// Insights re-reads both record lists and computes the insights for period.
func (s *RecordService) Insights(ctx context.Context, period core.Period) ([]insights.Insight, error) {
	if err := period.Validate(); err != nil {
		return nil, records.Invalid(err)
	}
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return insights.Compute(transactions, budgets, period), nil
}

// MonthlyTotals returns spend per month, newest first.
func (s *RecordService) MonthlyTotals(ctx context.Context) ([]core.MonthTotal, error) {
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return insights.MonthlyTotals(transactions), nil
}

// CategoryBreakdown returns spend per category across all transactions.
func (s *RecordService) CategoryBreakdown(ctx context.Context) ([]core.CategoryAmount, error) {
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return insights.CategoryBreakdown(transactions), nil
}

// Ready reports whether the underlying store is reachable.
func (s *RecordService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish never fails the caller: the record is already saved.
func (s *RecordService) publish(ctx context.Context, kind, op, id string, period core.Period) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRecordChangedMessage(kind, op, id, period)
	if err := s.publisher.PublishRecordChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record changed message",
			"kind", kind,
			"op", op,
			"id", id,
			"error", err)
	}
}

// Close closes the store and, when it owns one, the publisher.
func (s *RecordService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	return errors.Join(errs...)
}

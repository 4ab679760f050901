// Package records defines the record store used for transactions and
// budgets, plus helpers shared by its adapters.
package records

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// Ports for the persistence adapters.
type (
	TransactionStore interface {
		CreateTransaction(ctx context.Context, f core.TransactionFields) (core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// ListTransactions returns every transaction, newest date first.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, id string, f core.TransactionFields) (core.Transaction, error)
		// DeleteTransaction removes the record and returns it as it was.
		DeleteTransaction(ctx context.Context, id string) (core.Transaction, error)
	}

	BudgetStore interface {
		CreateBudget(ctx context.Context, f core.BudgetFields) (core.Budget, error)
		GetBudget(ctx context.Context, id string) (core.Budget, error)
		// ListBudgets returns every budget ordered by month, then year, descending.
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		UpdateBudget(ctx context.Context, id string, f core.BudgetFields) (core.Budget, error)
		// DeleteBudget removes the record and returns it as it was.
		DeleteBudget(ctx context.Context, id string) (core.Budget, error)
	}

	// Store is a complete record store backend.
	Store interface {
		TransactionStore
		BudgetStore
		Ping(ctx context.Context) error
		Close() error
	}
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// ValidationError reports input the store refused to persist.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid wraps err as a ValidationError; nil stays nil.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFound wraps ErrNotFound with the record kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

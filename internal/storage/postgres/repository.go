// Package postgres stores transactions and budgets in PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

const uniqueViolation = "23505"

const (
	transactionColumns = `id, amount_cents, date, description, category, created_at, updated_at`
	budgetColumns      = `id, category, amount_cents, month, year, created_at, updated_at`
)

type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ records.Store = (*Repository)(nil)

// NewRepository migrates the database at dsn and opens a pool against it.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	if err := RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.InfoContext(ctx, "Connected to PostgreSQL", "max_conns", pool.Config().MaxConns)
	return &Repository{pool: pool, now: time.Now}, nil
}

// WithClock replaces the timestamp source, for tests.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		t        core.Transaction
		date     time.Time
		category string
	)
	if err := row.Scan(&t.ID, &t.Amount.Cents, &date, &t.Description, &category, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return core.Transaction{}, err
	}
	t.Date = core.DateOf(date)
	t.Category = core.Category(category)
	t.CreatedAt, t.UpdatedAt = t.CreatedAt.UTC(), t.UpdatedAt.UTC()
	return t, nil
}

func scanBudget(row pgx.Row) (core.Budget, error) {
	var (
		b        core.Budget
		category string
	)
	if err := row.Scan(&b.ID, &category, &b.Amount.Cents, &b.Month, &b.Year, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return core.Budget{}, err
	}
	b.Category = core.Category(category)
	b.CreatedAt, b.UpdatedAt = b.CreatedAt.UTC(), b.UpdatedAt.UTC()
	return b, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, f core.TransactionFields) (core.Transaction, error) {
	now := r.now().UTC()
	t, err := core.NewTransaction(f, now)
	if err != nil {
		return core.Transaction{}, records.Invalid(err)
	}
	t.ID = records.NewID()

	_, err = r.pool.Exec(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Amount.Cents, t.Date.Time, t.Description, string(t.Category), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to PostgreSQL", "id", t.ID, "category", t.Category)
	return t, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getTransaction(ctx context.Context, q queryRower, id string, lock bool) (core.Transaction, error) {
	if !records.ValidID(id) {
		return core.Transaction{}, records.NotFound("transaction", id)
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	t, err := scanTransaction(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, records.NotFound("transaction", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return getTransaction(ctx, r.pool, id, false)
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateTransaction(ctx context.Context, id string, f core.TransactionFields) (core.Transaction, error) {
	var updated core.Transaction
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		t, err := getTransaction(ctx, tx, id, true)
		if err != nil {
			return err
		}
		t = f.Apply(t)
		if err := t.Validate(); err != nil {
			return records.Invalid(err)
		}
		t.UpdatedAt = r.now().UTC()

		_, err = tx.Exec(ctx,
			`UPDATE transactions SET amount_cents = $1, date = $2, description = $3, category = $4, updated_at = $5 WHERE id = $6`,
			t.Amount.Cents, t.Date.Time, t.Description, string(t.Category), t.UpdatedAt, id)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		updated = t
		return nil
	})
	return updated, err
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) (core.Transaction, error) {
	if !records.ValidID(id) {
		return core.Transaction{}, records.NotFound("transaction", id)
	}
	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`DELETE FROM transactions WHERE id = $1 RETURNING `+transactionColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, records.NotFound("transaction", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) CreateBudget(ctx context.Context, f core.BudgetFields) (core.Budget, error) {
	now := r.now().UTC()
	b, err := core.NewBudget(f, now)
	if err != nil {
		return core.Budget{}, records.Invalid(err)
	}
	b.ID = records.NewID()

	_, err = r.pool.Exec(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, string(b.Category), b.Amount.Cents, b.Month, b.Year, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return core.Budget{}, budgetWriteError("insert budget", err)
	}

	slog.DebugContext(ctx, "Budget saved to PostgreSQL", "id", b.ID, "category", b.Category, "month", b.Month, "year", b.Year)
	return b, nil
}

// budgetWriteError turns a violation of the (category, month, year) index
// into a validation error.
func budgetWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return records.Invalid(core.ErrDuplicateBudget)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func getBudget(ctx context.Context, q queryRower, id string, lock bool) (core.Budget, error) {
	if !records.ValidID(id) {
		return core.Budget{}, records.NotFound("budget", id)
	}
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	b, err := scanBudget(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Budget{}, records.NotFound("budget", id)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *Repository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	return getBudget(ctx, r.pool, id, false)
}

func (r *Repository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+budgetColumns+` FROM budgets ORDER BY month DESC, year DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateBudget(ctx context.Context, id string, f core.BudgetFields) (core.Budget, error) {
	var updated core.Budget
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		b, err := getBudget(ctx, tx, id, true)
		if err != nil {
			return err
		}
		b = f.Apply(b)
		if err := b.Validate(); err != nil {
			return records.Invalid(err)
		}
		b.UpdatedAt = r.now().UTC()

		_, err = tx.Exec(ctx,
			`UPDATE budgets SET category = $1, amount_cents = $2, month = $3, year = $4, updated_at = $5 WHERE id = $6`,
			string(b.Category), b.Amount.Cents, b.Month, b.Year, b.UpdatedAt, id)
		if err != nil {
			return budgetWriteError("update budget", err)
		}
		updated = b
		return nil
	})
	return updated, err
}

func (r *Repository) DeleteBudget(ctx context.Context, id string) (core.Budget, error) {
	if !records.ValidID(id) {
		return core.Budget{}, records.NotFound("budget", id)
	}
	b, err := scanBudget(r.pool.QueryRow(ctx,
		`DELETE FROM budgets WHERE id = $1 RETURNING `+budgetColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Budget{}, records.NotFound("budget", id)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("delete budget: %w", err)
	}
	return b, nil
}

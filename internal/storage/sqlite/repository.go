package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"

	_ "modernc.org/sqlite"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

const (
	transactionColumns = `id, amount_cents, date, description, category, created_at, updated_at`
	budgetColumns      = `id, category, amount_cents, month, year, created_at, updated_at`
)

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ records.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, now: time.Now}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                    core.Transaction
		date, category       string
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Amount.Cents, &date, &t.Description, &category, &createdAt, &updatedAt); err != nil {
		return core.Transaction{}, err
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t.Date = core.DateOf(d)
	t.Category = core.Category(category)
	if t.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return t, nil
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b                    core.Budget
		category             string
		createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &category, &b.Amount.Cents, &b.Month, &b.Year, &createdAt, &updatedAt); err != nil {
		return core.Budget{}, err
	}
	b.Category = core.Category(category)
	var err error
	if b.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return core.Budget{}, fmt.Errorf("parse created_at: %w", err)
	}
	if b.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return core.Budget{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return b, nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// CreateTransaction implements records.TransactionStore
func (r *Repository) CreateTransaction(ctx context.Context, f core.TransactionFields) (core.Transaction, error) {
	now := r.now()
	t, err := core.NewTransaction(f, now)
	if err != nil {
		return core.Transaction{}, records.Invalid(err)
	}
	t.ID = records.NewID()
	t.CreatedAt, t.UpdatedAt = now.UTC(), now.UTC()

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount.Cents, t.Date.String(), t.Description, string(t.Category), stamp(t.CreatedAt), stamp(t.UpdatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"amount_cents", t.Amount.Cents,
		"category", t.Category,
		"date", t.Date.String())

	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return r.getTransaction(ctx, r.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repository) getTransaction(ctx context.Context, q querier, id string) (core.Transaction, error) {
	t, err := scanTransaction(q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, records.NotFound("transaction", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, id string, f core.TransactionFields) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	t, err := r.getTransaction(ctx, tx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	t = f.Apply(t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, records.Invalid(err)
	}
	t.UpdatedAt = r.now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE transactions SET amount_cents = ?, date = ?, description = ?, category = ?, updated_at = ? WHERE id = ?`,
		t.Amount.Cents, t.Date.String(), t.Description, string(t.Category), stamp(t.UpdatedAt), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}
	return t, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	t, err := r.getTransaction(ctx, tx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Transaction deleted from SQLite", "id", id)
	return t, nil
}

// CreateBudget implements records.BudgetStore
func (r *Repository) CreateBudget(ctx context.Context, f core.BudgetFields) (core.Budget, error) {
	now := r.now()
	b, err := core.NewBudget(f, now)
	if err != nil {
		return core.Budget{}, records.Invalid(err)
	}
	b.ID = records.NewID()
	b.CreatedAt, b.UpdatedAt = now.UTC(), now.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Budget{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := checkBudgetConflict(ctx, tx, b); err != nil {
		return core.Budget{}, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.Category), b.Amount.Cents, b.Month, b.Year, stamp(b.CreatedAt), stamp(b.UpdatedAt))
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Budget{}, fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Budget saved to SQLite",
		"id", b.ID,
		"category", b.Category,
		"month", b.Month,
		"year", b.Year)

	return b, nil
}

func checkBudgetConflict(ctx context.Context, q querier, b core.Budget) error {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM budgets WHERE category = ? AND month = ? AND year = ? AND id <> ?`,
		string(b.Category), b.Month, b.Year, b.ID).Scan(&n)
	if err != nil {
		return fmt.Errorf("check budget conflict: %w", err)
	}
	if n > 0 {
		return records.Invalid(core.ErrDuplicateBudget)
	}
	return nil
}

func (r *Repository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	return r.getBudget(ctx, r.db, id)
}

func (r *Repository) getBudget(ctx context.Context, q querier, id string) (core.Budget, error) {
	b, err := scanBudget(q.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, records.NotFound("budget", id)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *Repository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

func (r *Repository) UpdateBudget(ctx context.Context, id string, f core.BudgetFields) (core.Budget, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Budget{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	b, err := r.getBudget(ctx, tx, id)
	if err != nil {
		return core.Budget{}, err
	}
	b = f.Apply(b)
	if err := b.Validate(); err != nil {
		return core.Budget{}, records.Invalid(err)
	}
	if err := checkBudgetConflict(ctx, tx, b); err != nil {
		return core.Budget{}, err
	}
	b.UpdatedAt = r.now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE budgets SET category = ?, amount_cents = ?, month = ?, year = ?, updated_at = ? WHERE id = ?`,
		string(b.Category), b.Amount.Cents, b.Month, b.Year, stamp(b.UpdatedAt), id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Budget{}, fmt.Errorf("commit: %w", err)
	}
	return b, nil
}

func (r *Repository) DeleteBudget(ctx context.Context, id string) (core.Budget, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Budget{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	b, err := r.getBudget(ctx, tx, id)
	if err != nil {
		return core.Budget{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id); err != nil {
		return core.Budget{}, fmt.Errorf("delete budget: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Budget{}, fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Budget deleted from SQLite", "id", id)
	return b, nil
}

// WithClock replaces the timestamp source, for tests.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

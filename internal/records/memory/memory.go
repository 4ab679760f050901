package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

// Store keeps records in process memory. It is the default backend and the
// one used by tests.
type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	transactions map[string]core.Transaction
	budgets      map[string]core.Budget
}

var _ records.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:          time.Now,
		transactions: make(map[string]core.Transaction),
		budgets:      make(map[string]core.Budget),
	}
}

// Seed is the on-disk format accepted by NewFromFile.
type Seed struct {
	Transactions []core.TransactionFields `json:"transactions"`
	Budgets      []core.BudgetFields      `json:"budgets"`
}

// NewFromFile returns a store seeded from a JSON file. A missing file
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	ctx := context.Background()
	for i, f := range seed.Transactions {
		if _, err := s.CreateTransaction(ctx, f); err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i, err)
		}
	}
	for i, f := range seed.Budgets {
		if _, err := s.CreateBudget(ctx, f); err != nil {
			return nil, fmt.Errorf("seed budget %d: %w", i, err)
		}
	}
	return s, nil
}

// WithClock replaces the time source used for defaults and timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) CreateTransaction(_ context.Context, f core.TransactionFields) (core.Transaction, error) {
	t, err := core.NewTransaction(f, s.now())
	if err != nil {
		return core.Transaction{}, records.Invalid(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = records.NewID()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, records.NotFound("transaction", id)
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	s.mu.Unlock()
	records.SortTransactions(out)
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id string, f core.TransactionFields) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, records.NotFound("transaction", id)
	}
	t = f.Apply(t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, records.Invalid(err)
	}
	t.UpdatedAt = s.now()
	s.transactions[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, records.NotFound("transaction", id)
	}
	delete(s.transactions, id)
	return t, nil
}

func (s *Store) CreateBudget(_ context.Context, f core.BudgetFields) (core.Budget, error) {
	b, err := core.NewBudget(f, s.now())
	if err != nil {
		return core.Budget{}, records.Invalid(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if records.ConflictsWith(s.budgetsLocked(), b) {
		return core.Budget{}, records.Invalid(core.ErrDuplicateBudget)
	}
	b.ID = records.NewID()
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) GetBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, records.NotFound("budget", id)
	}
	return b, nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	out := s.budgetsLocked()
	s.mu.Unlock()
	records.SortBudgets(out)
	return out, nil
}

func (s *Store) UpdateBudget(_ context.Context, id string, f core.BudgetFields) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, records.NotFound("budget", id)
	}
	b = f.Apply(b)
	if err := b.Validate(); err != nil {
		return core.Budget{}, records.Invalid(err)
	}
	if records.ConflictsWith(s.budgetsLocked(), b) {
		return core.Budget{}, records.Invalid(core.ErrDuplicateBudget)
	}
	b.UpdatedAt = s.now()
	s.budgets[id] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, records.NotFound("budget", id)
	}
	delete(s.budgets, id)
	return b, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) budgetsLocked() []core.Budget {
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, b)
	}
	return out
}

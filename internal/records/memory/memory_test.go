package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

func ptr[T any](v T) *T { return &v }

func TestMemoryStoreTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New().WithClock(func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) })

	created, err := s.CreateTransaction(ctx, core.TransactionFields{
		Amount:      ptr(core.NewMoney(12, 34)),
		Description: ptr("coffee"),
		Category:    ptr(core.Food),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Date != core.NewDate(2024, 6, 15) {
		t.Fatalf("unexpected created transaction: %+v", created)
	}

	updated, err := s.UpdateTransaction(ctx, created.ID, core.TransactionFields{Category: ptr(core.Travel)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != core.Travel || updated.Amount != created.Amount {
		t.Fatalf("partial update changed the wrong fields: %+v", updated)
	}

	if _, err := s.UpdateTransaction(ctx, created.ID, core.TransactionFields{Amount: &core.Money{Cents: -1}}); !records.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, created.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := s.DeleteTransaction(ctx, created.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMemoryStoreRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.CreateTransaction(ctx, core.TransactionFields{Description: ptr("x"), Category: ptr(core.Food)}); !records.IsValidation(err) {
		t.Fatalf("expected validation error for missing amount, got %v", err)
	}
	if _, err := s.CreateBudget(ctx, core.BudgetFields{
		Category: ptr(core.Food), Amount: ptr(core.NewMoney(1, 0)), Month: ptr(13), Year: ptr(2024),
	}); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestMemoryStoreBudgetUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	fields := core.BudgetFields{Category: ptr(core.Food), Amount: ptr(core.NewMoney(100, 0)), Month: ptr(6), Year: ptr(2024)}

	first, err := s.CreateBudget(ctx, fields)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateBudget(ctx, fields); !errors.Is(err, core.ErrDuplicateBudget) {
		t.Fatalf("expected duplicate budget error, got %v", err)
	}
	// Updating the record in place must not conflict with itself.
	if _, err := s.UpdateBudget(ctx, first.ID, core.BudgetFields{Amount: ptr(core.NewMoney(120, 0))}); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestMemoryStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, d := range []core.Date{core.NewDate(2024, 1, 5), core.NewDate(2024, 6, 1), core.NewDate(2023, 12, 31)} {
		d := d
		if _, err := s.CreateTransaction(ctx, core.TransactionFields{
			Amount: ptr(core.NewMoney(1, 0)), Date: &d, Description: ptr("x"), Category: ptr(core.Other),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	list, _ := s.ListTransactions(ctx)
	if len(list) != 3 || list[0].Date != core.NewDate(2024, 6, 1) || list[2].Date != core.NewDate(2023, 12, 31) {
		t.Fatalf("unexpected order: %v", list)
	}

	for _, p := range []core.Period{{Month: 3, Year: 2024}, {Month: 11, Year: 2023}, {Month: 3, Year: 2025}} {
		if _, err := s.CreateBudget(ctx, core.BudgetFields{
			Category: ptr(core.Rent), Amount: ptr(core.NewMoney(1, 0)), Month: ptr(p.Month), Year: ptr(p.Year),
		}); err != nil {
			t.Fatalf("create budget: %v", err)
		}
	}
	budgets, _ := s.ListBudgets(ctx)
	got := []core.Period{budgets[0].Period(), budgets[1].Period(), budgets[2].Period()}
	want := []core.Period{{Month: 11, Year: 2023}, {Month: 3, Year: 2025}, {Month: 3, Year: 2024}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected budget order: %v", got)
		}
	}
}

func TestNewFromFileSeeds(t *testing.T) {
	dir := t.TempDir()
	// No file -> empty store
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if list, _ := s.ListTransactions(context.Background()); len(list) != 0 {
		t.Fatalf("expected empty store")
	}

	path := filepath.Join(dir, "seed.json")
	seed := `{
		"transactions": [{"amount": 60, "date": "2024-06-05", "description": "Groceries", "category": "Food"}],
		"budgets": [{"category": "Food", "amount": 100, "month": 6, "year": 2024}]
	}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("seeded store: %v", err)
	}
	txs, _ := s.ListTransactions(context.Background())
	budgets, _ := s.ListBudgets(context.Background())
	if len(txs) != 1 || len(budgets) != 1 || txs[0].Amount.Cents != 6000 {
		t.Fatalf("unexpected seeded contents: %v %v", txs, budgets)
	}
}

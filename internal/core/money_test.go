package core

import (
	"math"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"10000000000000", 1000000000000000, true},
		{"10000000000000.01", 0, false},
		{"92233720368547758.07", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyArithmeticAndFormat(t *testing.T) {
	budget := NewMoney(100, 0)
	spent := NewMoney(110, 0)
	remaining := budget.Sub(spent)
	if remaining.Cents != -1000 {
		t.Fatalf("expected -1000 cents, got %d", remaining.Cents)
	}
	if remaining.Abs().String() != "10.00" {
		t.Fatalf("expected 10.00, got %s", remaining.Abs().String())
	}
	if err := remaining.Validate(); err == nil {
		t.Fatalf("expected negative money to be invalid")
	}
}

func TestMoneyUnmarshalJSON(t *testing.T) {
	var m Money
	if err := m.UnmarshalJSON([]byte(`"12.34"`)); err != nil || m.Cents != 1234 {
		t.Fatalf("expected 1234 from string, got %d (err=%v)", m.Cents, err)
	}
	if err := m.UnmarshalJSON([]byte(`-5`)); err != nil || m.Cents != -500 {
		t.Fatalf("expected -500 kept for validation, got %d (err=%v)", m.Cents, err)
	}
	for _, in := range []string{`-1e30`, `-184467440737095516.16`, `-92233720368547758.09`} {
		if err := m.UnmarshalJSON([]byte(in)); err != nil || m.Cents >= 0 {
			t.Fatalf("%s: expected a negative amount, got %d (err=%v)", in, m.Cents, err)
		}
		if err := m.Validate(); err == nil {
			t.Fatalf("%s: expected validation to fail", in)
		}
	}
	if err := m.UnmarshalJSON([]byte(`1e30`)); err == nil {
		t.Fatalf("expected error for oversized amount")
	}
	if err := m.UnmarshalJSON([]byte(`"x"`)); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}

func TestMoneyArithmeticSaturates(t *testing.T) {
	top := Money{Cents: math.MaxInt64}
	bottom := Money{Cents: math.MinInt64}

	if got := top.Add(top); got.Cents != math.MaxInt64 {
		t.Fatalf("expected MaxInt64, got %d", got.Cents)
	}
	if got := bottom.Add(bottom); got.Cents != math.MinInt64 {
		t.Fatalf("expected MinInt64, got %d", got.Cents)
	}
	if got := NewMoney(1, 0).Sub(top).Sub(top); got.Cents != math.MinInt64 {
		t.Fatalf("expected MinInt64, got %d", got.Cents)
	}
	if got := top.Sub(bottom); got.Cents != math.MaxInt64 {
		t.Fatalf("expected MaxInt64, got %d", got.Cents)
	}
	if got := bottom.Abs(); got.Cents != math.MaxInt64 {
		t.Fatalf("expected MaxInt64, got %d", got.Cents)
	}
	if got := NewMoney(2, 50).Add(NewMoney(1, 0)); got.Cents != 350 {
		t.Fatalf("expected 350, got %d", got.Cents)
	}
}

// Package insights derives spend-vs-budget views from full snapshots of
// transactions and budgets. Every function is pure; callers recompute from
// scratch whenever either list changes.
package insights

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Status classifies how much of a budget has been spent.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusOver    Status = "over"
)

var (
	hundred       = decimal.NewFromInt(100)
	warningFactor = decimal.RequireFromString("0.8")
)

// Insight compares one budget's allocation to actual spend in its period.
type Insight struct {
	BudgetID   string        `json:"id"`
	Category   core.Category `json:"category"`
	Budget     core.Money    `json:"budget"`
	Spent      core.Money    `json:"spent"`
	Remaining  core.Money    `json:"remaining"`
	Percentage float64       `json:"percentage"`
	Status     Status        `json:"status"`
	Message    string        `json:"message"`
	Month      int           `json:"month"`
	Year       int           `json:"year"`
}

// Compute returns one insight per budget whose month and year equal period,
// in budget order. Budgets for other periods and transactions dated outside
// period are ignored. Duplicate budgets for the same category each produce
// an insight.
func Compute(transactions []core.Transaction, budgets []core.Budget, period core.Period) []Insight {
	spent := SpendByCategory(transactions, period)

	out := make([]Insight, 0, len(budgets))
	for _, b := range budgets {
		if b.Period() != period {
			continue
		}
		out = append(out, evaluate(b, spent[b.Category]))
	}
	return out
}

// SpendByCategory sums the amounts of transactions dated within period.
func SpendByCategory(transactions []core.Transaction, period core.Period) map[core.Category]core.Money {
	spent := make(map[core.Category]core.Money)
	for _, t := range transactions {
		if !period.Contains(t.Date) {
			continue
		}
		spent[t.Category] = spent[t.Category].Add(t.Amount)
	}
	return spent
}

func evaluate(b core.Budget, spent core.Money) Insight {
	remaining := b.Amount.Sub(spent)
	pct := percentage(spent, b.Amount)
	status := classify(spent, b.Amount)

	return Insight{
		BudgetID:   b.ID,
		Category:   b.Category,
		Budget:     b.Amount,
		Spent:      spent,
		Remaining:  remaining,
		Percentage: pct.Round(2).InexactFloat64(),
		Status:     status,
		Message:    message(status, pct, remaining),
		Month:      b.Month,
		Year:       b.Year,
	}
}

// percentage is spent/amount*100; a zero amount reports 0.
func percentage(spent, amount core.Money) decimal.Decimal {
	if amount.IsZero() {
		return decimal.Zero
	}
	return spent.Decimal().Div(amount.Decimal()).Mul(hundred)
}

// classify compares the raw amounts so the thresholds are exact: over when
// spent exceeds the budget, warning above 80% of it.
func classify(spent, amount core.Money) Status {
	s, a := spent.Decimal(), amount.Decimal()
	switch {
	case s.GreaterThan(a):
		return StatusOver
	case s.GreaterThan(a.Mul(warningFactor)):
		return StatusWarning
	default:
		return StatusGood
	}
}

func message(status Status, pct decimal.Decimal, remaining core.Money) string {
	switch status {
	case StatusOver:
		return fmt.Sprintf("Overspent by %s", remaining.Abs())
	case StatusWarning:
		return fmt.Sprintf("Used %s%% of budget", pct.StringFixed(0))
	default:
		return fmt.Sprintf("%s remaining", remaining)
	}
}

package insights

import (
	"sort"

	"fintrack/internal/core"
)

// MonthlyTotals sums transaction amounts per calendar month, newest first.
func MonthlyTotals(transactions []core.Transaction) []core.MonthTotal {
	totals := make(map[core.Period]core.Money)
	for _, t := range transactions {
		p := t.Date.Period()
		totals[p] = totals[p].Add(t.Amount)
	}

	out := make([]core.MonthTotal, 0, len(totals))
	for p, total := range totals {
		out = append(out, core.MonthTotal{Period: p, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out
}

// CategoryBreakdown sums transaction amounts per category in category
// order, skipping categories whose total is zero.
func CategoryBreakdown(transactions []core.Transaction) []core.CategoryAmount {
	sums := make(map[core.Category]core.Money)
	for _, t := range transactions {
		sums[t.Category] = sums[t.Category].Add(t.Amount)
	}

	out := make([]core.CategoryAmount, 0, len(sums))
	for _, c := range core.Categories {
		if !sums[c].IsZero() {
			out = append(out, core.CategoryAmount{Category: c, Amount: sums[c]})
		}
	}
	return out
}

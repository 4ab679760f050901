package google

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/insights"
)

var header = []any{"Month", "Category", "Budget", "Spent", "Remaining", "Percentage", "Status", "Message"}

// mergeInsightRows drops the existing rows for month, appends the new
// insight rows and keeps the header first. Rows whose first column is not a
// month number (header, notes) are discarded and the header is rewritten.
func mergeInsightRows(existing [][]any, month int, rows []insights.Insight) [][]any {
	out := [][]any{header}
	for _, row := range existing {
		m, ok := rowMonth(row)
		if !ok || m == month {
			continue
		}
		out = append(out, row)
	}
	for _, in := range rows {
		out = append(out, []any{
			month,
			in.Category.String(),
			in.Budget.Float(),
			in.Spent.Float(),
			in.Remaining.Float(),
			in.Percentage,
			string(in.Status),
			in.Message,
		})
	}
	return out
}

func rowMonth(row []any) (int, bool) {
	if len(row) == 0 {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(row[0])))
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

package records

import (
	"sort"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id could have been produced by NewID. Adapters
// use it to answer NotFound without a round trip.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// SortTransactions orders transactions by date descending, newest record
// first within a day.
func SortTransactions(ts []core.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date.Time) {
			return ts[i].Date.After(ts[j].Date.Time)
		}
		return ts[i].CreatedAt.After(ts[j].CreatedAt)
	})
}

// SortBudgets orders budgets by month descending, then year descending.
func SortBudgets(bs []core.Budget) {
	sort.SliceStable(bs, func(i, j int) bool {
		if bs[i].Month != bs[j].Month {
			return bs[i].Month > bs[j].Month
		}
		if bs[i].Year != bs[j].Year {
			return bs[i].Year > bs[j].Year
		}
		return bs[i].CreatedAt.After(bs[j].CreatedAt)
	})
}

// ConflictsWith reports whether another budget in existing already covers
// b's category and period.
func ConflictsWith(existing []core.Budget, b core.Budget) bool {
	for _, other := range existing {
		if other.ID != b.ID && other.Category == b.Category && other.Period() == b.Period() {
			return true
		}
	}
	return false
}

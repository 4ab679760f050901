package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
}

// MonthTotal is the spend total for one calendar month.
type MonthTotal struct {
	Period
	Total Money `json:"total"`
}

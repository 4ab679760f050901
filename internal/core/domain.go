package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Food          Category = "Food"
	Rent          Category = "Rent"
	Travel        Category = "Travel"
	Utilities     Category = "Utilities"
	Entertainment Category = "Entertainment"
	Healthcare    Category = "Healthcare"
	Education     Category = "Education"
	Shopping      Category = "Shopping"
	Other         Category = "Other"
)

const maxDescriptionLength = 200

type (
	// Category is the closed set of spending categories shared by
	// transactions and budgets.
	Category string

	Date struct {
		time.Time
	}

	// Period identifies one calendar month.
	Period struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}

	Transaction struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Date        Date      `json:"date"`
		Description string    `json:"description"`
		Category    Category  `json:"category"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	Budget struct {
		ID        string    `json:"id"`
		Category  Category  `json:"category"`
		Amount    Money     `json:"amount"`
		Month     int       `json:"month"`
		Year      int       `json:"year"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// TransactionFields carries user-supplied transaction fields. Nil
	// pointers are fields the caller did not send.
	TransactionFields struct {
		Amount      *Money    `json:"amount"`
		Date        *Date     `json:"date"`
		Description *string   `json:"description"`
		Category    *Category `json:"category"`
	}

	// BudgetFields carries user-supplied budget fields. Nil pointers are
	// fields the caller did not send.
	BudgetFields struct {
		Category *Category `json:"category"`
		Amount   *Money    `json:"amount"`
		Month    *int      `json:"month"`
		Year     *int      `json:"year"`
	}
)

// Categories lists every category in display order.
var Categories = []Category{Food, Rent, Travel, Utilities, Entertainment, Healthcare, Education, Shopping, Other}

var (
	ErrInvalidAmount      = errors.New("amount must be a non-negative number")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidMonth       = errors.New("month must be between 1 and 12")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrDuplicateBudget    = errors.New("a budget for this category and period already exists")
)

// MissingFieldError reports a required field absent from a create request.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return e.Field + " is required"
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory matches s against the known categories, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", ErrInvalidCategory
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	if y := d.Year(); y < minYear || y > maxYear {
		return ErrInvalidYear
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Period returns the calendar month the date falls in.
func (d Date) Period() Period {
	return Period{Month: d.Month(), Year: d.Year()}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

const (
	minYear = 1970
	maxYear = 9999
)

// CurrentPeriod returns the period containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{Month: int(now.Month()), Year: now.Year()}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < minYear || p.Year > maxYear {
		return ErrInvalidYear
	}
	return nil
}

// Contains reports whether d falls in the period's calendar month and year.
func (p Period) Contains(d Date) bool {
	return d.Month() == p.Month && d.Year() == p.Year
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Category.Valid() {
		return ErrInvalidCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return b.Period().Validate()
}

// Period returns the month the budget applies to.
func (b Budget) Period() Period {
	return Period{Month: b.Month, Year: b.Year}
}

// NewTransaction builds a transaction from create fields. Amount,
// description and category are required; the date defaults to today.
func NewTransaction(f TransactionFields, now time.Time) (Transaction, error) {
	switch {
	case f.Amount == nil:
		return Transaction{}, &MissingFieldError{Field: "amount"}
	case f.Description == nil:
		return Transaction{}, &MissingFieldError{Field: "description"}
	case f.Category == nil:
		return Transaction{}, &MissingFieldError{Field: "category"}
	}
	t := Transaction{Date: DateOf(now), CreatedAt: now, UpdatedAt: now}
	t = f.Apply(t)
	return t, t.Validate()
}

// Apply overwrites the fields of t that are present in f.
func (f TransactionFields) Apply(t Transaction) Transaction {
	if f.Amount != nil {
		t.Amount = *f.Amount
	}
	if f.Date != nil {
		t.Date = *f.Date
	}
	if f.Description != nil {
		t.Description = strings.TrimSpace(*f.Description)
	}
	if f.Category != nil {
		t.Category = *f.Category
	}
	return t
}

// NewBudget builds a budget from create fields. Every field is required.
func NewBudget(f BudgetFields, now time.Time) (Budget, error) {
	switch {
	case f.Category == nil:
		return Budget{}, &MissingFieldError{Field: "category"}
	case f.Amount == nil:
		return Budget{}, &MissingFieldError{Field: "amount"}
	case f.Month == nil:
		return Budget{}, &MissingFieldError{Field: "month"}
	case f.Year == nil:
		return Budget{}, &MissingFieldError{Field: "year"}
	}
	b := f.Apply(Budget{CreatedAt: now, UpdatedAt: now})
	return b, b.Validate()
}

// Apply overwrites the fields of b that are present in f.
func (f BudgetFields) Apply(b Budget) Budget {
	if f.Category != nil {
		b.Category = *f.Category
	}
	if f.Amount != nil {
		b.Amount = *f.Amount
	}
	if f.Month != nil {
		b.Month = *f.Month
	}
	if f.Year != nil {
		b.Year = *f.Year
	}
	return b
}

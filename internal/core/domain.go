package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date with no time component, normalized to UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single dated, categorized spending record owned by one user.
	Expense struct {
		ID          int64
		UserID      int64
		Amount      Money
		Category    string // value resolving in the category registry, or a custom_ key
		Description string // may be empty
		Date        Date
		CreatedAt   time.Time
	}

	// CustomCategory is a user-defined category as stored on the budget.
	CustomCategory struct {
		Value string
		Label string
	}

	// Budget holds a user's monthly ceiling plus alerting configuration.
	// At most one budget exists per user; saves replace the whole record.
	Budget struct {
		UserID           int64
		MonthlyBudget    Money
		CategoryBudgets  map[string]Money
		AlertsEnabled    bool
		AlertThreshold   int // percent, 1-100
		Currency         string
		CustomCategories []CustomCategory
	}
)

const (
	DefaultCurrency       = "ج.م"
	DefaultMonthlyBudget  = 5000_00 // cents
	DefaultAlertThreshold = 80
	maxDescriptionLen     = 200
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidThreshold   = errors.New("alert threshold must be between 1 and 100")
	ErrNegativeBudget     = errors.New("monthly budget cannot be negative")
	ErrInvalidCurrency    = errors.New("unknown currency")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date in UTC.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

// String encodes the date as YYYY-MM-DD. The fixed-width, zero-padded form
// sorts lexicographically in date order, which the storage layer relies on.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// In reports whether d falls inside [from, to]. Both endpoints are
// inclusive; a zero bound leaves that end of the range open.
func (d Date) In(from, to Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !IsValidCategory(e.Category) {
		return ErrInvalidCategory
	}
	if len(e.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if b.MonthlyBudget.Cents < 0 {
		return ErrNegativeBudget
	}
	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return ErrInvalidThreshold
	}
	for _, m := range b.CategoryBudgets {
		if m.Cents < 0 {
			return ErrNegativeBudget
		}
	}
	for _, c := range b.CustomCategories {
		if strings.TrimSpace(c.Value) == "" || strings.TrimSpace(c.Label) == "" {
			return ErrInvalidCategory
		}
	}
	return nil
}

// DefaultBudget returns the budget applied before a user saves settings.
func DefaultBudget(userID int64) Budget {
	return Budget{
		UserID:         userID,
		MonthlyBudget:  Money{Cents: DefaultMonthlyBudget},
		AlertsEnabled:  true,
		AlertThreshold: DefaultAlertThreshold,
		Currency:       DefaultCurrency,
	}
}

package core

import "time"

// CategoryAmount is an amount aggregated under one category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthTotal is the spending total for one calendar month.
type MonthTotal struct {
	Year  int
	Month time.Month
	Total Money
}

// MonthOverview is a compact summary for a specific user, year and month.
type MonthOverview struct {
	Year       int
	Month      time.Month
	Total      Money
	ByCategory []CategoryAmount
}

// FilterByRange returns the expenses whose date falls inside [from, to].
// Both endpoints are inclusive; a zero bound leaves that end open. The
// input slice is never mutated.
func FilterByRange(expenses []Expense, from, to Date) []Expense {
	if from.IsZero() && to.IsZero() {
		out := make([]Expense, len(expenses))
		copy(out, expenses)
		return out
	}
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Date.In(from, to) {
			out = append(out, e)
		}
	}
	return out
}

// SumByCategory sums amounts per category, in the order the categories
// are given. Categories with no matching expense are omitted so charts
// skip empty slices. Expenses whose category is not listed are ignored.
func SumByCategory(expenses []Expense, categories []Category) []CategoryAmount {
	totals := make(map[string]int64, len(categories))
	for _, e := range expenses {
		totals[e.Category] += e.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(categories))
	for _, c := range categories {
		if cents := totals[c.Value]; cents > 0 {
			out = append(out, CategoryAmount{Category: c, Amount: Money{Cents: cents}})
		}
	}
	return out
}

// SumByMonth produces exactly monthCount entries, oldest first, walking
// backward from the anchor's month. Each entry totals the expenses dated
// inside that calendar month.
func SumByMonth(expenses []Expense, monthCount int, anchor Date) []MonthTotal {
	if monthCount <= 0 {
		return nil
	}
	out := make([]MonthTotal, 0, monthCount)
	for i := monthCount - 1; i >= 0; i-- {
		m := NewDate(anchor.Year(), anchor.Month()-time.Month(i), 1)
		from, to := MonthRange(m.Year(), m.Month())
		var total int64
		for _, e := range expenses {
			if e.Date.In(from, to) {
				total += e.Amount.Cents
			}
		}
		out = append(out, MonthTotal{Year: m.Year(), Month: m.Month(), Total: Money{Cents: total}})
	}
	return out
}

// StartOfMonth returns the first day of the date's month.
func StartOfMonth(d Date) Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// EndOfMonth returns the last day of the date's month. Day zero of the
// following month rolls back to the final day regardless of month length
// or leap years.
func EndOfMonth(d Date) Date {
	return NewDate(d.Year(), d.Month()+1, 0)
}

// MonthRange returns the inclusive date bounds of a calendar month.
func MonthRange(year int, month time.Month) (Date, Date) {
	start := NewDate(year, month, 1)
	return start, EndOfMonth(start)
}

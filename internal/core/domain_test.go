package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.February || d.Day() != 29 {
		t.Errorf("parsed %v", d)
	}

	for _, s := range []string{"", "2024-13-01", "2024-02-30", "15/01/2024", "2024-1-5"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", s)
		}
	}
}

func TestDateIn(t *testing.T) {
	d, _ := ParseDate("2024-06-15")
	from, _ := ParseDate("2024-06-15")
	to, _ := ParseDate("2024-06-15")
	if !d.In(from, to) {
		t.Error("single-day range should include its own date")
	}
	if !d.In(Date{}, Date{}) {
		t.Error("fully open range should include everything")
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Amount:      Money{Cents: 100_00},
		Category:    "food",
		Description: "غداء",
		Date:        NewDate(2024, time.January, 15),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{"zero amount", func(e *Expense) { e.Amount.Cents = 0 }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.Amount.Cents = -5 }, ErrInvalidAmount},
		{"zero date", func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		{"empty category", func(e *Expense) { e.Category = "" }, ErrInvalidCategory},
		{"unknown category", func(e *Expense) { e.Category = "mystery" }, ErrInvalidCategory},
		{"long description", func(e *Expense) {
			for len(e.Description) <= maxDescriptionLen {
				e.Description += "א"
			}
		}, ErrDescriptionTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			if err := e.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("empty description allowed", func(t *testing.T) {
		e := valid
		e.Description = ""
		if err := e.Validate(); err != nil {
			t.Errorf("empty description rejected: %v", err)
		}
	})

	t.Run("custom category allowed", func(t *testing.T) {
		e := valid
		e.Category = "custom_1724800000000"
		if err := e.Validate(); err != nil {
			t.Errorf("custom category rejected: %v", err)
		}
	})
}

func TestBudgetValidate(t *testing.T) {
	valid := DefaultBudget(1)
	if err := valid.Validate(); err != nil {
		t.Fatalf("default budget rejected: %v", err)
	}

	b := valid
	b.MonthlyBudget.Cents = -1
	if err := b.Validate(); !errors.Is(err, ErrNegativeBudget) {
		t.Errorf("negative budget: %v", err)
	}

	for _, threshold := range []int{0, -1, 101} {
		b := valid
		b.AlertThreshold = threshold
		if err := b.Validate(); !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("threshold %d: %v", threshold, err)
		}
	}

	b = valid
	b.CustomCategories = []CustomCategory{{Value: "custom_1", Label: " "}}
	if err := b.Validate(); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("blank custom label: %v", err)
	}

	// zero-budget is legal: it just disables alerting downstream
	b = valid
	b.MonthlyBudget.Cents = 0
	if err := b.Validate(); err != nil {
		t.Errorf("zero budget rejected: %v", err)
	}
}

func TestIsValidCurrency(t *testing.T) {
	if !IsValidCurrency(DefaultCurrency) {
		t.Error("default currency not valid")
	}
	if !IsValidCurrency("USD") {
		t.Error("USD not valid")
	}
	if IsValidCurrency("XXX") {
		t.Error("XXX accepted")
	}
}

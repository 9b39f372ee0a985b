package core

import (
	"strings"
	"testing"
	"time"
)

func TestMergeCategories_EmptyEqualsBuiltins(t *testing.T) {
	got := MergeCategories(nil)
	want := BuiltinCategories()
	if len(got) != len(want) {
		t.Fatalf("merged %d categories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMergeCategories_BuiltinOrder(t *testing.T) {
	wantOrder := []string{"food", "transport", "shopping", "bills", "entertainment", "other"}
	got := MergeCategories(nil)
	for i, v := range wantOrder {
		if got[i].Value != v {
			t.Errorf("position %d = %q, want %q", i, got[i].Value, v)
		}
	}
}

func TestMergeCategories_CustomsAfterBuiltins(t *testing.T) {
	custom := []CustomCategory{
		{Value: "custom_1", Label: "قهوة"},
		{Value: "custom_2", Label: "كتب"},
	}
	got := MergeCategories(custom)
	n := len(BuiltinCategories())
	if len(got) != n+2 {
		t.Fatalf("merged %d categories, want %d", len(got), n+2)
	}
	if got[n].Value != "custom_1" || got[n+1].Value != "custom_2" {
		t.Errorf("customs out of order: %q, %q", got[n].Value, got[n+1].Value)
	}
	for _, c := range got[n:] {
		if c.Icon != CustomCategoryIcon {
			t.Errorf("custom %q icon = %q, want %q", c.Value, c.Icon, CustomCategoryIcon)
		}
	}
}

func TestMergeCategories_SkipsCollisions(t *testing.T) {
	custom := []CustomCategory{
		{Value: "food", Label: "تصادم مع المدمجة"},
		{Value: "custom_9", Label: "أولى"},
		{Value: "custom_9", Label: "مكررة"},
		{Value: "  ", Label: "فارغة"},
	}
	got := MergeCategories(custom)
	n := len(BuiltinCategories())
	if len(got) != n+1 {
		t.Fatalf("merged %d categories, want %d", len(got), n+1)
	}
	if got[n].Label != "أولى" {
		t.Errorf("kept label = %q, want first occurrence", got[n].Label)
	}
	// the built-in label must not be overwritten by the colliding custom
	if got[0].Label != "طعام" {
		t.Errorf("built-in food label = %q, want %q", got[0].Label, "طعام")
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry([]CustomCategory{{Value: "custom_7", Label: "سفر"}})

	if c := r.Resolve("food"); c.Label != "طعام" || c.Icon != "🍽️" {
		t.Errorf("Resolve(food) = %+v", c)
	}
	if c := r.Resolve("custom_7"); c.Label != "سفر" || c.Icon != CustomCategoryIcon {
		t.Errorf("Resolve(custom_7) = %+v", c)
	}
	// unresolved values get a placeholder, never a failure
	c := r.Resolve("custom_gone")
	if c.Value != "custom_gone" || c.Label != "custom_gone" || c.Icon != CustomCategoryIcon {
		t.Errorf("Resolve(unknown) = %+v, want placeholder", c)
	}
}

func TestRegistry_Has(t *testing.T) {
	r := NewRegistry(nil)
	if !r.Has("bills") {
		t.Error("Has(bills) = false")
	}
	if r.Has("custom_123") {
		t.Error("Has(custom_123) = true for unregistered custom")
	}
}

func TestIsValidCategory(t *testing.T) {
	for _, v := range []string{"food", "transport", "shopping", "bills", "entertainment", "other", "custom_1724800000000"} {
		if !IsValidCategory(v) {
			t.Errorf("IsValidCategory(%q) = false", v)
		}
	}
	for _, v := range []string{"", "Food", "groceries", "custom"} {
		if IsValidCategory(v) {
			t.Errorf("IsValidCategory(%q) = true", v)
		}
	}
}

func TestNewCustomCategoryValue(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	v := NewCustomCategoryValue(ts)
	if !strings.HasPrefix(v, "custom_") {
		t.Fatalf("value %q missing prefix", v)
	}
	if !IsValidCategory(v) {
		t.Errorf("generated value %q not accepted as a category", v)
	}
}

package core

import (
	"strconv"
	"strings"
	"time"
)

// Category is a named, iconified classification tag for expenses.
type Category struct {
	Value string
	Label string
	Icon  string
}

// CustomCategoryIcon is assigned to every user-defined category.
const CustomCategoryIcon = "📌"

const customCategoryPrefix = "custom_"

// builtinCategories is the fixed, ordered built-in set. The order is part
// of the contract: forms and charts list categories in this order.
var builtinCategories = []Category{
	{Value: "food", Label: "طعام", Icon: "🍽️"},
	{Value: "transport", Label: "مواصلات", Icon: "🚗"},
	{Value: "shopping", Label: "تسوق", Icon: "🛒"},
	{Value: "bills", Label: "فواتير", Icon: "📄"},
	{Value: "entertainment", Label: "ترفيه", Icon: "🎬"},
	{Value: "other", Label: "أخرى", Icon: "📌"},
}

// BuiltinCategories returns a copy of the built-in category list.
func BuiltinCategories() []Category {
	out := make([]Category, len(builtinCategories))
	copy(out, builtinCategories)
	return out
}

// MergeCategories combines the built-in set with user-defined categories:
// built-ins first in fixed order, then customs in the order supplied, each
// with the fallback icon. Custom entries whose value is empty, collides
// with a built-in, or repeats an earlier custom are skipped.
func MergeCategories(custom []CustomCategory) []Category {
	merged := BuiltinCategories()
	seen := make(map[string]bool, len(merged)+len(custom))
	for _, c := range merged {
		seen[c.Value] = true
	}
	for _, c := range custom {
		value := strings.TrimSpace(c.Value)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		merged = append(merged, Category{Value: value, Label: c.Label, Icon: CustomCategoryIcon})
	}
	return merged
}

// Registry is an ordered category lookup table for one user session:
// the built-in set merged with that user's custom categories.
type Registry struct {
	categories []Category
	index      map[string]Category
}

// NewRegistry builds a registry from the user's custom categories.
// A nil or empty slice yields the built-ins only.
func NewRegistry(custom []CustomCategory) *Registry {
	merged := MergeCategories(custom)
	index := make(map[string]Category, len(merged))
	for _, c := range merged {
		index[c.Value] = c
	}
	return &Registry{categories: merged, index: index}
}

// Categories returns the merged list, built-ins first.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out
}

// Resolve maps a stored category value to its display entry. It never
// fails: unknown values get a placeholder using the raw value as label,
// so renderers always have something to show.
func (r *Registry) Resolve(value string) Category {
	if c, ok := r.index[value]; ok {
		return c
	}
	return Category{Value: value, Label: value, Icon: CustomCategoryIcon}
}

// Has reports whether value resolves to a known category.
func (r *Registry) Has(value string) bool {
	_, ok := r.index[value]
	return ok
}

// IsValidCategory accepts built-in values and custom keys. Custom keys
// carry the custom_ prefix so stored records stay recognizable even if
// the defining category was later removed from the budget.
func IsValidCategory(value string) bool {
	for _, c := range builtinCategories {
		if c.Value == value {
			return true
		}
	}
	return strings.HasPrefix(value, customCategoryPrefix)
}

// IsCustomCategoryValue reports whether value is a user-defined
// category key.
func IsCustomCategoryValue(value string) bool {
	return strings.HasPrefix(value, customCategoryPrefix)
}

// NewCustomCategoryValue synthesizes a key for a user-defined category
// from its creation time.
func NewCustomCategoryValue(t time.Time) string {
	return customCategoryPrefix + strconv.FormatInt(t.UnixMilli(), 10)
}

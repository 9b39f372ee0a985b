package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"masarif/internal/core"
	"masarif/internal/log"
	"masarif/internal/store"
)

// BudgetService handles budget settings and the category catalogue.
type BudgetService struct {
	budgets     store.BudgetStore
	invalidator Invalidator
	logger      *log.Logger
	now         func() time.Time
}

// NewBudgetService creates a budget service. invalidator may be nil.
func NewBudgetService(budgets store.BudgetStore, invalidator Invalidator, logger *log.Logger) *BudgetService {
	return &BudgetService{
		budgets:     budgets,
		invalidator: invalidator,
		logger:      logger,
		now:         time.Now,
	}
}

// SetInvalidator wires the cache invalidation hook. The dashboard
// service is built on top of this one, so the hook is attached after
// construction.
func (s *BudgetService) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// Get returns the user's budget, falling back to defaults when none
// has been saved yet.
func (s *BudgetService) Get(ctx context.Context, userID int64) (core.Budget, error) {
	b, err := s.budgets.GetBudget(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return core.DefaultBudget(userID), nil
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("load budget: %w", err)
	}
	return b, nil
}

// Save validates and persists the budget, replacing any previous
// settings. Custom categories without a value get one generated.
func (s *BudgetService) Save(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.CustomCategories = s.normalizeCustomCategories(b.CustomCategories)

	if b.Currency == "" {
		b.Currency = core.DefaultCurrency
	}
	if !core.IsValidCurrency(b.Currency) {
		return core.Budget{}, fmt.Errorf("%w %q", core.ErrInvalidCurrency, b.Currency)
	}

	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	if err := s.budgets.SetBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(b.UserID)
	}

	s.logger.InfoContext(ctx, "budget saved",
		log.FieldOperation, log.OpSaveBudget,
		log.FieldUserID, b.UserID,
		log.FieldAmountCents, b.MonthlyBudget.Cents)

	return b, nil
}

// Categories returns the user's category catalogue, built-ins first
// and custom entries after them.
func (s *BudgetService) Categories(ctx context.Context, userID int64) ([]core.Category, error) {
	b, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.MergeCategories(b.CustomCategories), nil
}

// Registry returns a category registry for resolving labels and icons.
func (s *BudgetService) Registry(ctx context.Context, userID int64) (*core.Registry, error) {
	b, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.NewRegistry(b.CustomCategories), nil
}

// normalizeCustomCategories trims labels, drops empty or duplicate
// entries and generates values for entries that lack one.
func (s *BudgetService) normalizeCustomCategories(customs []core.CustomCategory) []core.CustomCategory {
	seen := make(map[string]bool, len(customs))
	result := make([]core.CustomCategory, 0, len(customs))

	ts := s.now()
	for _, c := range customs {
		c.Label = strings.TrimSpace(c.Label)
		if c.Label == "" {
			continue
		}
		if c.Value == "" {
			c.Value = core.NewCustomCategoryValue(ts)
			// Keep generated values distinct within one save.
			ts = ts.Add(time.Millisecond)
		}
		if seen[c.Value] || !core.IsCustomCategoryValue(c.Value) {
			continue
		}
		seen[c.Value] = true
		result = append(result, c)
	}
	return result
}

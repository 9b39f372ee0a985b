package services

import (
	"context"
	"fmt"
	"time"

	"masarif/internal/cache"
	"masarif/internal/core"
	"masarif/internal/log"
	"masarif/internal/store"
)

// Dashboard is the aggregated view for one user and month.
type Dashboard struct {
	Year       int
	Month      time.Month
	Total      core.Money
	ByCategory []core.CategoryAmount
	Status     core.BudgetStatus
	Trend      []core.MonthTotal
	Budget     core.Budget
}

// DashboardService computes monthly overviews, budget status and the
// spending trend, caching results between writes.
type DashboardService struct {
	expenses    store.ExpenseStore
	budgets     *BudgetService
	cache       *cache.LRU[Dashboard]
	trendMonths int
	logger      *log.Logger
}

const dashboardCacheSize = 256

// NewDashboardService creates a dashboard service with its own cache.
func NewDashboardService(expenses store.ExpenseStore, budgets *BudgetService, trendMonths int, cacheTTL time.Duration, logger *log.Logger) *DashboardService {
	if trendMonths <= 0 {
		trendMonths = 6
	}
	return &DashboardService{
		expenses:    expenses,
		budgets:     budgets,
		cache:       cache.NewLRU[Dashboard](dashboardCacheSize, cacheTTL),
		trendMonths: trendMonths,
		logger:      logger,
	}
}

// Cache exposes the underlying cache for cleanup registration.
func (s *DashboardService) Cache() *cache.LRU[Dashboard] {
	return s.cache
}

// Overview returns the dashboard for the given month, computing it on
// a cache miss.
func (s *DashboardService) Overview(ctx context.Context, userID int64, year int, month time.Month) (Dashboard, error) {
	key := dashboardCacheKey(userID, year, month)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	budget, err := s.budgets.Get(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	anchor := core.NewDate(year, month, 1)
	// One query covers both the month overview and the trend window.
	windowStart := core.NewDate(year, month-time.Month(s.trendMonths-1), 1)
	expenses, err := s.expenses.ListExpenses(ctx, userID, windowStart, core.EndOfMonth(anchor))
	if err != nil {
		return Dashboard{}, fmt.Errorf("load expenses: %w", err)
	}

	monthFrom, monthTo := core.MonthRange(year, month)
	monthExpenses := core.FilterByRange(expenses, monthFrom, monthTo)

	var total core.Money
	for _, e := range monthExpenses {
		total = total.Add(e.Amount)
	}

	registry := core.NewRegistry(budget.CustomCategories)
	d := Dashboard{
		Year:       year,
		Month:      month,
		Total:      total,
		ByCategory: core.SumByCategory(monthExpenses, registry.Categories()),
		Status:     core.Evaluate(total, budget.MonthlyBudget, budget.AlertThreshold, budget.AlertsEnabled),
		Trend:      core.SumByMonth(expenses, s.trendMonths, anchor),
		Budget:     budget,
	}

	s.cache.Set(key, d)
	s.logger.DebugContext(ctx, "dashboard computed",
		log.FieldOperation, log.OpDashboard,
		log.FieldUserID, userID,
		log.FieldYear, year,
		log.FieldMonth, int(month))

	return d, nil
}

// MonthStatus recomputes the budget status for one month, bypassing
// the cache. Used by the alert worker after expense events.
func (s *DashboardService) MonthStatus(ctx context.Context, userID int64, year int, month time.Month) (core.BudgetStatus, core.Money, error) {
	budget, err := s.budgets.Get(ctx, userID)
	if err != nil {
		return core.BudgetStatus{}, core.Money{}, err
	}

	from, to := core.MonthRange(year, month)
	expenses, err := s.expenses.ListExpenses(ctx, userID, from, to)
	if err != nil {
		return core.BudgetStatus{}, core.Money{}, fmt.Errorf("load expenses: %w", err)
	}

	var total core.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}

	return core.Evaluate(total, budget.MonthlyBudget, budget.AlertThreshold, budget.AlertsEnabled), total, nil
}

// Invalidate drops every cached dashboard for the user.
func (s *DashboardService) Invalidate(userID int64) {
	s.cache.DeletePrefix(fmt.Sprintf("user:%d:", userID))
}

func dashboardCacheKey(userID int64, year int, month time.Month) string {
	return fmt.Sprintf("user:%d:month:%04d-%02d", userID, year, int(month))
}

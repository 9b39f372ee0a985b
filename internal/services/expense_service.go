// Package services orchestrates expense, budget and dashboard
// operations across the store, cache and event bus.
package services

import (
	"context"
	"fmt"
	"time"

	"masarif/internal/amqp"
	"masarif/internal/core"
	"masarif/internal/log"
	"masarif/internal/store"
)

// EventPublisher publishes expense change events. Satisfied by
// *amqp.Client, nil-able when the broker is not configured.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error
}

// Invalidator drops cached views for a user after a write.
type Invalidator interface {
	Invalidate(userID int64)
}

// ExpenseService handles expense CRUD with event publication.
type ExpenseService struct {
	expenses    store.ExpenseStore
	events      EventPublisher
	invalidator Invalidator
	logger      *log.Logger
}

// NewExpenseService creates an expense service. events and invalidator
// may be nil.
func NewExpenseService(expenses store.ExpenseStore, events EventPublisher, invalidator Invalidator, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		expenses:    expenses,
		events:      events,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Create validates and persists a new expense, then publishes a
// created event. Publish failures are logged, not returned, the
// expense is already saved.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.expenses.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.afterWrite(ctx, amqp.EventExpenseCreated, saved)
	return saved, nil
}

// Get returns one expense owned by the user.
func (s *ExpenseService) Get(ctx context.Context, userID, id int64) (core.Expense, error) {
	return s.expenses.GetExpense(ctx, userID, id)
}

// Update replaces an existing expense after validation.
func (s *ExpenseService) Update(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if err := s.expenses.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	s.afterWrite(ctx, amqp.EventExpenseUpdated, e)
	return e, nil
}

// Delete removes an expense owned by the user.
func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	// Read before delete so the event can carry the affected month.
	e, err := s.expenses.GetExpense(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.expenses.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.afterWrite(ctx, amqp.EventExpenseDeleted, e)
	return nil
}

// List returns the user's expenses within [from, to], newest first.
// Zero dates leave that side of the range open.
func (s *ExpenseService) List(ctx context.Context, userID int64, from, to core.Date) ([]core.Expense, error) {
	return s.expenses.ListExpenses(ctx, userID, from, to)
}

// ListMonth returns the user's expenses for one calendar month.
func (s *ExpenseService) ListMonth(ctx context.Context, userID int64, year int, month time.Month) ([]core.Expense, error) {
	from, to := core.MonthRange(year, month)
	return s.expenses.ListExpenses(ctx, userID, from, to)
}

func (s *ExpenseService) afterWrite(ctx context.Context, eventType string, e core.Expense) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(e.UserID)
	}
	if s.events == nil {
		return
	}

	msg := amqp.NewExpenseEventMessage(eventType, e.ID, e.UserID, e.Date.Year(), e.Date.Month())
	if err := s.events.PublishExpenseEvent(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish expense event",
			log.FieldError, err,
			log.FieldExpenseID, e.ID,
			log.FieldUserID, e.UserID)
	}
}

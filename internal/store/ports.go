// Package store defines the persistence ports consumed by the service and
// HTTP layers. Implementations live in the sqlite and memory subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"masarif/internal/core"
)

// ErrNotFound is returned when the requested record does not exist or is
// not owned by the given user.
var ErrNotFound = errors.New("record not found")

// User is an authenticated account. Passwords are stored as bcrypt hashes.
type User struct {
	ID           int64
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is an opaque server-side login session.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

type (
	// ExpenseStore persists expense records. List results are sorted by
	// date descending, newest first.
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, userID, id int64) (core.Expense, error)
		// UpdateExpense replaces all user-editable fields of the record.
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, userID, id int64) error
		// ListExpenses returns the user's expenses inside [from, to],
		// both bounds inclusive; a zero bound leaves that end open.
		ListExpenses(ctx context.Context, userID int64, from, to core.Date) ([]core.Expense, error)
	}

	// BudgetStore persists at most one budget per user.
	BudgetStore interface {
		// GetBudget returns ErrNotFound when the user never saved settings.
		GetBudget(ctx context.Context, userID int64) (core.Budget, error)
		// SetBudget replaces the whole record (delete-then-insert).
		SetBudget(ctx context.Context, b core.Budget) error
	}

	// UserStore persists accounts.
	UserStore interface {
		CreateUser(ctx context.Context, u User) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByID(ctx context.Context, id int64) (User, error)
		UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	}

	// SessionStore persists login sessions.
	SessionStore interface {
		CreateSession(ctx context.Context, s Session) error
		GetSession(ctx context.Context, token string) (Session, error)
		DeleteSession(ctx context.Context, token string) error
		DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	}

	// AlertStore records budget alert transitions observed by the worker.
	AlertStore interface {
		// RecordAlert inserts the state reached for a user+month; repeated
		// observations of the same state are deduplicated.
		RecordAlert(ctx context.Context, userID int64, year int, month int, state core.AlertState, percentUsed int) (bool, error)
	}

	// Store aggregates all ports backed by one database.
	Store interface {
		ExpenseStore
		BudgetStore
		UserStore
		SessionStore
		AlertStore
	}
)

// Package sqlite implements the store ports on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"masarif/internal/core"
	"masarif/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

var _ store.Store = (*Repository)(nil)

// New opens (creating if necessary) the database at dbPath and applies
// pending migrations.
func New(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- expenses ---

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount_cents, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Amount.Cents, e.Category, e.Description, e.Date.String(), e.CreatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}
	e.ID = id

	slog.DebugContext(ctx, "Expense saved",
		"id", e.ID,
		"user_id", e.UserID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"date", e.Date.String())

	return e, nil
}

func (r *Repository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, category, description, date, created_at
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	return scanExpense(row)
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, category = ?, description = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		e.Amount.Cents, e.Category, e.Description, e.Date.String(), e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) ListExpenses(ctx context.Context, userID int64, from, to core.Date) ([]core.Expense, error) {
	// Bounds compare as strings; valid because the stored format is
	// fixed-width and zero-padded.
	query := `SELECT id, user_id, amount_cents, category, description, date, created_at
	          FROM expenses WHERE user_id = ?`
	args := []any{userID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.String())
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to.String())
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		dateStr string
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Category, &e.Description, &dateStr, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	e.Date, err = core.ParseDate(dateStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	return e, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- budget ---

func (r *Repository) GetBudget(ctx context.Context, userID int64) (core.Budget, error) {
	b := core.Budget{UserID: userID, CategoryBudgets: map[string]core.Money{}}
	var alertsEnabled int
	err := r.db.QueryRowContext(ctx,
		`SELECT monthly_budget_cents, alerts_enabled, alert_threshold, currency
		 FROM budgets WHERE user_id = ?`, userID).
		Scan(&b.MonthlyBudget.Cents, &alertsEnabled, &b.AlertThreshold, &b.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, store.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	b.AlertsEnabled = alertsEnabled != 0

	rows, err := r.db.QueryContext(ctx,
		`SELECT category, limit_cents FROM budget_category_limits WHERE user_id = ?`, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get category limits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return core.Budget{}, fmt.Errorf("scan category limit: %w", err)
		}
		b.CategoryBudgets[category] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return core.Budget{}, err
	}

	custRows, err := r.db.QueryContext(ctx,
		`SELECT value, label FROM budget_custom_categories WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get custom categories: %w", err)
	}
	defer custRows.Close()
	for custRows.Next() {
		var c core.CustomCategory
		if err := custRows.Scan(&c.Value, &c.Label); err != nil {
			return core.Budget{}, fmt.Errorf("scan custom category: %w", err)
		}
		b.CustomCategories = append(b.CustomCategories, c)
	}
	return b, custRows.Err()
}

// SetBudget replaces the user's budget wholesale. The original product
// used delete-then-insert across separate writes; here the replacement
// runs inside one transaction so readers never observe a missing budget.
func (r *Repository) SetBudget(ctx context.Context, b core.Budget) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set budget: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM budget_custom_categories WHERE user_id = ?`,
		`DELETE FROM budget_category_limits WHERE user_id = ?`,
		`DELETE FROM budgets WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, b.UserID); err != nil {
			return fmt.Errorf("clear budget: %w", err)
		}
	}

	alertsEnabled := 0
	if b.AlertsEnabled {
		alertsEnabled = 1
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO budgets (user_id, monthly_budget_cents, alerts_enabled, alert_threshold, currency, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, b.MonthlyBudget.Cents, alertsEnabled, b.AlertThreshold, b.Currency, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}

	for category, limit := range b.CategoryBudgets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budget_category_limits (user_id, category, limit_cents) VALUES (?, ?, ?)`,
			b.UserID, category, limit.Cents); err != nil {
			return fmt.Errorf("insert category limit: %w", err)
		}
	}

	for i, c := range b.CustomCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budget_custom_categories (user_id, position, value, label) VALUES (?, ?, ?, ?)`,
			b.UserID, i, c.Value, c.Label); err != nil {
			return fmt.Errorf("insert custom category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set budget: %w", err)
	}

	slog.DebugContext(ctx, "Budget replaced",
		"user_id", b.UserID,
		"monthly_budget_cents", b.MonthlyBudget.Cents,
		"custom_categories", len(b.CustomCategories))
	return nil
}

// --- users ---

func (r *Repository) CreateUser(ctx context.Context, u store.User) (store.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, display_name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.Email, u.DisplayName, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return store.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return store.User{}, fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	return u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (store.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}

func scanUser(row *sql.Row) (store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, store.ErrNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// --- sessions ---

func (r *Repository) CreateSession(ctx context.Context, s store.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		s.Token, s.UserID, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, token string) (store.Session, error) {
	var s store.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`, token).
		Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Session{}, store.ErrNotFound
	}
	if err != nil {
		return store.Session{}, fmt.Errorf("scan session: %w", err)
	}
	return s, nil
}

func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// --- alerts ---

func (r *Repository) RecordAlert(ctx context.Context, userID int64, year int, month int, state core.AlertState, percentUsed int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO budget_alerts (user_id, year, month, state, percent_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, year, month, string(state), percentUsed, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("record alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Package worker recomputes budget status when expenses change,
// records threshold crossings and exports monthly reports.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"masarif/internal/amqp"
	"masarif/internal/core"
	"masarif/internal/export"
	"masarif/internal/log"
	"masarif/internal/services"
	"masarif/internal/store"
)

// AlertWorker consumes expense events, re-evaluates the affected
// month and records each warning or over-budget crossing once.
type AlertWorker struct {
	alerts     store.AlertStore
	dashboards *services.DashboardService
	budgets    *services.BudgetService
	reports    export.ReportWriter
	logger     *log.Logger

	mu   sync.Mutex
	seen map[monthKey]struct{}
	now  func() time.Time
}

// monthKey identifies one user's month for periodic re-evaluation.
type monthKey struct {
	userID int64
	year   int
	month  time.Month
}

// NewAlertWorker creates an alert worker. reports may be nil when no
// export destination is configured.
func NewAlertWorker(alerts store.AlertStore, dashboards *services.DashboardService, budgets *services.BudgetService, reports export.ReportWriter, logger *log.Logger) *AlertWorker {
	return &AlertWorker{
		alerts:     alerts,
		dashboards: dashboards,
		budgets:    budgets,
		reports:    reports,
		logger:     logger,
		seen:       make(map[monthKey]struct{}),
		now:        time.Now,
	}
}

// HandleExpenseEvent processes one expense change event.
func (w *AlertWorker) HandleExpenseEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	month := time.Month(msg.Month)
	w.remember(monthKey{userID: msg.UserID, year: msg.Year, month: month})
	return w.evaluate(ctx, msg.UserID, msg.Year, month)
}

// Reevaluate re-checks every month touched by recent events. Events can
// be lost while the broker reconnects, so a stale month is re-read on a
// timer instead of trusting the stream alone. Months older than the
// previous calendar month are dropped from the watch set afterwards.
func (w *AlertWorker) Reevaluate(ctx context.Context) {
	for _, key := range w.watched() {
		if err := w.evaluate(ctx, key.userID, key.year, key.month); err != nil {
			w.logger.ErrorContext(ctx, "re-evaluation failed",
				log.FieldError, err,
				log.FieldUserID, key.userID,
				log.FieldYear, key.year,
				log.FieldMonth, int(key.month))
		}
	}
	w.prune()
}

func (w *AlertWorker) remember(key monthKey) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen[key] = struct{}{}
}

func (w *AlertWorker) watched() []monthKey {
	w.mu.Lock()
	defer w.mu.Unlock()
	keys := make([]monthKey, 0, len(w.seen))
	for key := range w.seen {
		keys = append(keys, key)
	}
	return keys
}

func (w *AlertWorker) prune() {
	cutoff := w.now().UTC().AddDate(0, -1, 0)
	cutoffYear, cutoffMonth := cutoff.Year(), cutoff.Month()

	w.mu.Lock()
	defer w.mu.Unlock()
	for key := range w.seen {
		if key.year < cutoffYear || (key.year == cutoffYear && key.month < cutoffMonth) {
			delete(w.seen, key)
		}
	}
}

// evaluate recomputes one month's budget status and records the
// crossing when a new state is reached.
func (w *AlertWorker) evaluate(ctx context.Context, userID int64, year int, month time.Month) error {
	status, total, err := w.dashboards.MonthStatus(ctx, userID, year, month)
	if err != nil {
		return fmt.Errorf("recompute month status: %w", err)
	}

	if status.State == core.AlertNone {
		return nil
	}

	recorded, err := w.alerts.RecordAlert(ctx, userID, year, int(month), status.State, status.PercentUsed)
	if err != nil {
		return fmt.Errorf("record alert: %w", err)
	}
	if !recorded {
		// Already recorded for this user, month and state.
		return nil
	}

	w.logger.InfoContext(ctx, "budget alert recorded",
		log.FieldOperation, log.OpRecordAlert,
		log.FieldUserID, userID,
		log.FieldYear, year,
		log.FieldMonth, int(month),
		log.FieldState, string(status.State),
		log.FieldPercentUsed, status.PercentUsed)

	w.exportReport(ctx, userID, year, month, total, status)
	return nil
}

// exportReport pushes a report row for a newly recorded alert. Export
// failures are logged, the alert itself is already persisted.
func (w *AlertWorker) exportReport(ctx context.Context, userID int64, year int, month time.Month, total core.Money, status core.BudgetStatus) {
	if w.reports == nil {
		return
	}

	budget, err := w.budgets.Get(ctx, userID)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to load budget for report", log.FieldError, err)
		return
	}

	report := export.MonthlyReport{
		UserID:        userID,
		Year:          year,
		Month:         month,
		TotalSpent:    total,
		BudgetCeiling: budget.MonthlyBudget,
		PercentUsed:   status.PercentUsed,
		State:         status.State,
		Currency:      budget.Currency,
		GeneratedAt:   time.Now().UTC(),
	}

	if err := w.reports.AppendMonthlyReport(ctx, report); err != nil {
		w.logger.ErrorContext(ctx, "failed to export report",
			log.FieldError, err,
			log.FieldUserID, userID)
	}
}

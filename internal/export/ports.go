// Package export defines the interfaces for pushing monthly spending
// reports to external destinations.
package export

import (
	"context"
	"time"

	"masarif/internal/core"
)

// MonthlyReport is one row of the exported spending report.
type MonthlyReport struct {
	UserID        int64
	Year          int
	Month         time.Month
	TotalSpent    core.Money
	BudgetCeiling core.Money
	PercentUsed   int
	State         core.AlertState
	Currency      string
	GeneratedAt   time.Time
}

// ReportWriter appends monthly reports to a destination.
type ReportWriter interface {
	AppendMonthlyReport(ctx context.Context, report MonthlyReport) error
}

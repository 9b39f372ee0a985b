package core

// AlertState classifies spend against the monthly budget.
type AlertState string

const (
	AlertNone    AlertState = "none"
	AlertWarning AlertState = "warning"
	AlertOver    AlertState = "over"
)

// BudgetStatus is the result of evaluating spend against a budget.
type BudgetStatus struct {
	PercentUsed int
	State       AlertState
}

// Evaluate derives the spend percentage and alert state from the month's
// total, the budget ceiling, and the configured threshold. It is a pure
// classification recomputed from current totals on every call.
//
// Disabled alerts and a non-positive ceiling always yield AlertNone.
// The threshold is inclusive: percentUsed == threshold already warns,
// and percentUsed >= 100 is over budget.
func Evaluate(totalSpent, ceiling Money, thresholdPercent int, alertsEnabled bool) BudgetStatus {
	if ceiling.Cents <= 0 {
		return BudgetStatus{State: AlertNone}
	}
	percent := percentOf(totalSpent.Cents, ceiling.Cents)
	if !alertsEnabled {
		return BudgetStatus{PercentUsed: percent, State: AlertNone}
	}
	switch {
	case percent >= 100:
		return BudgetStatus{PercentUsed: percent, State: AlertOver}
	case percent >= thresholdPercent:
		return BudgetStatus{PercentUsed: percent, State: AlertWarning}
	default:
		return BudgetStatus{PercentUsed: percent, State: AlertNone}
	}
}

// percentOf computes part/whole as a rounded percentage (half-up).
func percentOf(part, whole int64) int {
	if whole <= 0 {
		return 0
	}
	return int((part*100 + whole/2) / whole)
}

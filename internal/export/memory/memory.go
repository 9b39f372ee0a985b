// Package memory is an in-memory report writer for tests and local
// runs without Sheets credentials.
package memory

import (
	"context"
	"sync"

	"masarif/internal/export"
)

type Writer struct {
	mu       sync.Mutex
	reports  []export.MonthlyReport
	failWith error
}

var _ export.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// FailWith makes every subsequent append return err. Pass nil to reset.
func (w *Writer) FailWith(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failWith = err
}

// AppendMonthlyReport records the report.
func (w *Writer) AppendMonthlyReport(_ context.Context, report export.MonthlyReport) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failWith != nil {
		return w.failWith
	}
	w.reports = append(w.reports, report)
	return nil
}

// Reports returns a copy of everything appended so far.
func (w *Writer) Reports() []export.MonthlyReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]export.MonthlyReport, len(w.reports))
	copy(out, w.reports)
	return out
}

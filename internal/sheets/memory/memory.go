// Package memory provides an in-memory ReportWriter used in tests and as a
// no-op stand-in when the spreadsheet mirror is not configured.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/sheets"
)

type Writer struct {
	mu   sync.Mutex
	rows []sheets.ReportRow
}

var _ sheets.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

func (w *Writer) AppendReport(_ context.Context, row sheets.ReportRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, row)
	return nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []sheets.ReportRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]sheets.ReportRow, len(w.rows))
	copy(out, w.rows)
	return out
}

// Package worker evaluates budgets against the current month's spending.
//
// The worker reacts to transaction change events from AMQP and additionally
// runs a periodic sweep over every user with budgets, so alerts still fire
// when events are lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/sheets"
	"fintrack/internal/store"
)

type AlertWorker struct {
	store     store.Store
	mirror    sheets.ReportWriter // optional spreadsheet mirror
	batchSize int
	now       func() time.Time
}

func NewAlertWorker(st store.Store, mirror sheets.ReportWriter, batchSize int) *AlertWorker {
	return &AlertWorker{
		store:     st,
		mirror:    mirror,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// HandleTransactionEvent re-evaluates the affected user's budgets for the
// current month. The event carries only identifiers; current state is always
// re-read from the store.
func (w *AlertWorker) HandleTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"transaction_id", ev.TransactionID,
		"user_id", ev.UserID,
		"action", ev.Action)

	_, err := w.EvaluateUser(ctx, ev.UserID)
	return err
}

// EvaluateUser loads the user's budgets and current-month expenses, evaluates
// each line, and logs a warning per exceeded category. When a spreadsheet
// mirror is configured the month snapshot is appended there as well.
func (w *AlertWorker) EvaluateUser(ctx context.Context, userID string) ([]budget.Status, error) {
	budgets, err := w.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}

	start, end := monthBounds(w.now())
	txs, err := w.store.ListInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list month transactions: %w", err)
	}

	statuses := budget.Evaluate(budgets, report.ComputeCategoryExpenses(txs))

	exceeded := make([]string, 0)
	for _, st := range statuses {
		if !st.Exceeded {
			continue
		}
		exceeded = append(exceeded, st.Category)
		slog.WarnContext(ctx, "Budget exceeded",
			"user_id", userID,
			"category", st.Category,
			"limit", st.Limit.String(),
			"spent", st.Spent.String(),
			"percent_used", st.PercentUsed)
	}

	if w.mirror != nil {
		summary := report.ComputeSummary(txs)
		row := sheets.ReportRow{
			EvaluatedAt:  w.now(),
			UserID:       userID,
			Month:        start[:7],
			TotalIncome:  summary.TotalIncome,
			TotalExpense: summary.TotalExpense,
			Balance:      summary.Balance,
			Exceeded:     exceeded,
		}
		if err := w.mirror.AppendReport(ctx, row); err != nil {
			// The evaluation itself succeeded; the mirror is best effort.
			slog.ErrorContext(ctx, "Failed to mirror report row",
				"user_id", userID,
				"month", row.Month,
				"error", err)
		}
	}

	return statuses, nil
}

// Sweep evaluates every user that has budgets, up to batchSize per run. It is
// the backup path for lost events and keeps going past per-user failures.
func (w *AlertWorker) Sweep(ctx context.Context) error {
	users, err := w.store.ListBudgetUsers(ctx)
	if err != nil {
		return fmt.Errorf("list budget users: %w", err)
	}
	if len(users) == 0 {
		return nil
	}
	if w.batchSize > 0 && len(users) > w.batchSize {
		users = users[:w.batchSize]
	}

	slog.InfoContext(ctx, "Running budget sweep", "users", len(users))

	var errs []error
	for _, userID := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := w.EvaluateUser(ctx, userID); err != nil {
			slog.ErrorContext(ctx, "Sweep evaluation failed", "user_id", userID, "error", err)
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}

// monthBounds returns the first and last day of now's month as ISO dates.
func monthBounds(now time.Time) (start, end string) {
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(core.DateLayout), last.Format(core.DateLayout)
}

package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/report"
)

// loadRange resolves the user and date range, then loads the matching
// transactions. On failure it writes the response and returns ok=false.
func (s *Server) loadRange(w http.ResponseWriter, r *http.Request) (txs []core.Transaction, start, end string, ok bool) {
	user := userID(r)
	if user == "" {
		respondError(w, http.StatusBadRequest, "missing X-User-ID header")
		return nil, "", "", false
	}

	start, end, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, "", "", false
	}

	txs, err = s.store.ListInRange(r.Context(), user, start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "user_id", user, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load transactions")
		return nil, "", "", false
	}
	return txs, start, end, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	txs, _, _, ok := s.loadRange(w, r)
	if !ok {
		return
	}

	summary := report.ComputeSummary(txs)
	respondJSON(w, http.StatusOK, map[string]any{
		"total_income":  summary.TotalIncome.String(),
		"total_expense": summary.TotalExpense.String(),
		"balance":       summary.Balance.String(),
		"savings":       summary.Savings.String(),
		"savings_rate":  summary.SavingsRate(),
	})
}

type bucketJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Color string `json:"color"`
}

func toBucketList(buckets []report.CategoryBucket) []bucketJSON {
	out := make([]bucketJSON, len(buckets))
	for i, b := range buckets {
		out[i] = bucketJSON{Name: b.Name, Value: b.Value.String(), Color: b.Color}
	}
	return out
}

func (s *Server) handleCategoryExpenses(w http.ResponseWriter, r *http.Request) {
	txs, _, _, ok := s.loadRange(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"categories": toBucketList(report.ComputeCategoryExpenses(txs)),
	})
}

func (s *Server) handleIncomeSources(w http.ResponseWriter, r *http.Request) {
	txs, _, _, ok := s.loadRange(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sources": toBucketList(report.ComputeIncomeSources(txs)),
	})
}

func (s *Server) handleMonthlyData(w http.ResponseWriter, r *http.Request) {
	txs, _, _, ok := s.loadRange(w, r)
	if !ok {
		return
	}

	type monthJSON struct {
		Key     string `json:"key"`
		Label   string `json:"label"`
		Income  string `json:"income"`
		Expense string `json:"expense"`
	}
	months := report.ComputeMonthlyData(txs)
	out := make([]monthJSON, len(months))
	for i, m := range months {
		out[i] = monthJSON{Key: m.Key, Label: m.Label, Income: m.Income.String(), Expense: m.Expense.String()}
	}
	respondJSON(w, http.StatusOK, map[string]any{"months": out})
}

func (s *Server) handleDailyTrend(w http.ResponseWriter, r *http.Request) {
	txs, _, _, ok := s.loadRange(w, r)
	if !ok {
		return
	}

	type dayJSON struct {
		Date    string `json:"date"`
		Income  string `json:"income"`
		Expense string `json:"expense"`
	}
	days := report.ComputeDailyTrend(txs)
	out := make([]dayJSON, len(days))
	for i, d := range days {
		out[i] = dayJSON{Date: d.Date, Income: d.Income.String(), Expense: d.Expense.String()}
	}
	respondJSON(w, http.StatusOK, map[string]any{"days": out})
}

func (s *Server) handleTopExpenses(w http.ResponseWriter, r *http.Request) {
	txs, _, _, ok := s.loadRange(w, r)
	if !ok {
		return
	}

	n := 5
	if v := strings.TrimSpace(r.URL.Query().Get("n")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "invalid n parameter")
			return
		}
		n = parsed
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": toTransactionList(report.TopExpenses(txs, n)),
	})
}

// handleExportCSV streams the transactions in range as an RFC 4180 CSV
// attachment.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	txs, start, end, ok := s.loadRange(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(start, end)+`"`)
	w.WriteHeader(http.StatusOK)

	if err := export.WriteCSV(w, txs); err != nil {
		// Headers are already sent, nothing left to do but log.
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
	}
}

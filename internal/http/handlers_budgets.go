package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/store"
)

type budgetJSON struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Limit     string `json:"limit"`
	CreatedAt string `json:"created_at"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:        b.ID,
		Category:  b.Category,
		Limit:     b.LimitAmount.String(),
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		respondError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	budgets, err := s.store.ListBudgets(r.Context(), user)
	if err != nil {
		slog.ErrorContext(r.Context(), "List budgets failed", "user_id", user, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}

	out := make([]budgetJSON, len(budgets))
	for i, b := range budgets {
		out[i] = toBudgetJSON(b)
	}
	respondJSON(w, http.StatusOK, map[string]any{"budgets": out})
}

type upsertBudgetRequest struct {
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		respondError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	var req upsertBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	limit, err := core.ParseLimit(req.Limit)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid limit")
		return
	}

	b := core.Budget{UserID: user, Category: req.Category, LimitAmount: limit}
	if err := b.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.store.UpsertBudget(r.Context(), user, req.Category, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Upsert budget failed", "user_id", user, "category", req.Category, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save budget")
		return
	}

	respondJSON(w, http.StatusOK, toBudgetJSON(saved))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		respondError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	if err := s.store.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "budget not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete budget failed", "user_id", user, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete budget")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetStatus evaluates the user's budgets against the spending in
// the requested range (defaults to all time when no bounds are given).
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		respondError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	budgets, err := s.store.ListBudgets(r.Context(), user)
	if err != nil {
		slog.ErrorContext(r.Context(), "List budgets failed", "user_id", user, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}

	txs, err := s.store.ListInRange(r.Context(), user, start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "user_id", user, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	statuses := budget.Evaluate(budgets, report.ComputeCategoryExpenses(txs))

	type statusJSON struct {
		Category    string `json:"category"`
		Limit       string `json:"limit"`
		Spent       string `json:"spent"`
		PercentUsed int    `json:"percent_used"`
		Exceeded    bool   `json:"exceeded"`
	}
	toStatusJSON := func(st budget.Status) statusJSON {
		return statusJSON{
			Category:    st.Category,
			Limit:       st.Limit.String(),
			Spent:       st.Spent.String(),
			PercentUsed: st.PercentUsed,
			Exceeded:    st.Exceeded,
		}
	}

	out := make([]statusJSON, len(statuses))
	var totalLimit, totalSpent decimal.Decimal
	for i, st := range statuses {
		out[i] = toStatusJSON(st)
		totalLimit = totalLimit.Add(st.Limit)
		totalSpent = totalSpent.Add(st.Spent)
	}

	body := map[string]any{"statuses": out}
	if len(statuses) > 0 {
		body["overall"] = toStatusJSON(budget.EvaluateOverall(totalLimit, totalSpent))
	}
	respondJSON(w, http.StatusOK, body)
}

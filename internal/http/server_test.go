package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	s := NewServer("127.0.0.1:0", st, services.NewTransactionService(st, nil))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, st
}

func doJSON(t *testing.T, s *Server, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func seedReportData(st *memory.Store) {
	st.Seed(
		core.Transaction{UserID: "u1", Type: core.Income, Amount: decimal.RequireFromString("5000"), Category: "Salary", Description: "February salary", Source: "Acme", Date: "2025-02-01"},
		core.Transaction{UserID: "u1", Type: core.Expense, Amount: decimal.RequireFromString("750"), Category: "Food", Description: "Groceries", Date: "2025-02-10"},
		core.Transaction{UserID: "u1", Type: core.Expense, Amount: decimal.RequireFromString("800"), Category: "Rent", Description: "Rent", Date: "2025-02-03"},
		core.Transaction{UserID: "u2", Type: core.Expense, Amount: decimal.RequireFromString("99"), Category: "Shopping", Description: "Other user's row", Date: "2025-02-05"},
	)
}

func TestCreateTransaction(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/transactions", "u1",
		`{"type":"expense","amount":"42,50","category":"Food","description":"Lunch","date":"2025-02-10"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body)
	}

	var got transactionJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.ID == "" {
		t.Error("response should carry the assigned id")
	}
	if got.Amount != "42.50" {
		t.Errorf("Amount = %q, want comma-normalized 42.50", got.Amount)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad amount", `{"type":"expense","amount":"abc","category":"Food","description":"x","date":"2025-02-10"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"type":"expense","amount":"-5","category":"Food","description":"x","date":"2025-02-10"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"type":"transfer","amount":"5","category":"Food","description":"x","date":"2025-02-10"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"type":"expense","amount":"5","category":"Food","description":"x","date":"10/02/2025"}`, http.StatusUnprocessableEntity},
		{"empty category", `{"type":"expense","amount":"5","category":"","description":"x","date":"2025-02-10"}`, http.StatusUnprocessableEntity},
		{"broken json", `{"type":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/transactions", "u1", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestMissingUserHeader(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/transactions", "/reports/summary", "/budgets"} {
		rec := doJSON(t, s, http.MethodGet, path, "", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s without X-User-ID: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestListTransactionsRange(t *testing.T) {
	s, st := newTestServer(t)
	seedReportData(st)

	rec := doJSON(t, s, http.MethodGet, "/transactions?from=2025-02-01&to=2025-02-05", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body)
	}

	var got struct {
		Transactions []transactionJSON `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(got.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2 (range is inclusive, other users excluded)", len(got.Transactions))
	}
	// Newest date first.
	if got.Transactions[0].Date != "2025-02-03" || got.Transactions[1].Date != "2025-02-01" {
		t.Errorf("order = %s, %s, want newest first", got.Transactions[0].Date, got.Transactions[1].Date)
	}
}

func TestListTransactionsBadRange(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/transactions?from=garbage", "u1", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateTransaction(t *testing.T) {
	s, st := newTestServer(t)
	seedReportData(st)

	txs, _ := st.List(context.Background(), "u1")
	id := txs[0].ID

	rec := doJSON(t, s, http.MethodPatch, "/transactions/"+id, "u1", `{"amount":"123.45"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body)
	}

	var got transactionJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Amount != "123.45" {
		t.Errorf("Amount = %q, want 123.45", got.Amount)
	}
}

func TestUpdateTransactionNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPatch, "/transactions/nope", "u1", `{"description":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404, body: %s", rec.Code, rec.Body)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s, st := newTestServer(t)
	seedReportData(st)

	txs, _ := st.List(context.Background(), "u1")
	id := txs[0].ID

	rec := doJSON(t, s, http.MethodDelete, "/transactions/"+id, "u1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/transactions/"+id, "u1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestSummaryReport(t *testing.T) {
	s, st := newTestServer(t)
	seedReportData(st)

	rec := doJSON(t, s, http.MethodGet, "/reports/summary", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body)
	}

	var got struct {
		TotalIncome  string `json:"total_income"`
		TotalExpense string `json:"total_expense"`
		Balance      string `json:"balance"`
		Savings      string `json:"savings"`
		SavingsRate  int    `json:"savings_rate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.TotalIncome != "5000" || got.TotalExpense != "1550" || got.Balance != "3450" {
		t.Errorf("summary = %+v, want 5000/1550/3450", got)
	}
	if got.Savings != got.Balance {
		t.Errorf("Savings = %s, want same as Balance", got.Savings)
	}
	if got.SavingsRate != 69 {
		t.Errorf("SavingsRate = %d, want 69", got.SavingsRate)
	}
}

func TestCategoryReport(t *testing.T) {
	s, st := newTestServer(t)
	seedReportData(st)

	rec := doJSON(t, s, http.MethodGet, "/reports/categories", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body)
	}

	var got struct {
		Categories []bucketJSON `json:"categories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(got.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(got.Categories))
	}
	for _, b := range got.Categories {
		if b.Color == "" {
			t.Errorf("category %s has no color", b.Name)
		}
	}
}

func TestExportCSV(t *testing.T) {
	s, st := newTestServer(t)
	seedReportData(st)

	rec := doJSON(t, s, http.MethodGet, "/export?from=2025-02-01&to=2025-02-28", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body)
	}

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "finance-report-2025-02-01-to-2025-02-28.csv") {
		t.Errorf("Content-Disposition = %q, want range-derived filename", cd)
	}

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	if lines[0] != `"Date","Type","Category","Description","Amount","Source"` {
		t.Errorf("header line = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Errorf("got %d lines, want header + 3 rows", len(lines))
	}
}

func TestBudgetLifecycle(t *testing.T) {
	s, st := newTestServer(t)
	seedReportData(st)

	rec := doJSON(t, s, http.MethodPut, "/budgets", "u1", `{"category":"Food","limit":"600"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert status = %d, body: %s", rec.Code, rec.Body)
	}
	var created budgetJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	// Second upsert for the same category updates in place.
	rec = doJSON(t, s, http.MethodPut, "/budgets", "u1", `{"category":"Food","limit":"700"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("second upsert status = %d", rec.Code)
	}
	var updated budgetJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("upsert created a duplicate: ids %s and %s", created.ID, updated.ID)
	}

	rec = doJSON(t, s, http.MethodGet, "/budgets", "u1", "")
	var list struct {
		Budgets []budgetJSON `json:"budgets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(list.Budgets) != 1 || list.Budgets[0].Limit != "700" {
		t.Errorf("budgets = %+v, want one Food budget at 700", list.Budgets)
	}

	rec = doJSON(t, s, http.MethodDelete, "/budgets/"+created.ID, "u1", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
}

func TestBudgetUpsertValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"negative limit", `{"category":"Food","limit":"-10"}`},
		{"empty category", `{"category":"","limit":"100"}`},
		{"garbage limit", `{"category":"Food","limit":"abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPut, "/budgets", "u1", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422, body: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestBudgetStatus(t *testing.T) {
	s, st := newTestServer(t)
	seedReportData(st)

	if rec := doJSON(t, s, http.MethodPut, "/budgets", "u1", `{"category":"Food","limit":"600"}`); rec.Code != http.StatusOK {
		t.Fatalf("upsert status = %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodPut, "/budgets", "u1", `{"category":"Rent","limit":"1000"}`); rec.Code != http.StatusOK {
		t.Fatalf("upsert status = %d", rec.Code)
	}

	rec := doJSON(t, s, http.MethodGet, "/budgets/status?from=2025-02-01&to=2025-02-28", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body)
	}

	type statusLine struct {
		Category    string `json:"category"`
		Limit       string `json:"limit"`
		Spent       string `json:"spent"`
		PercentUsed int    `json:"percent_used"`
		Exceeded    bool   `json:"exceeded"`
	}
	var got struct {
		Statuses []statusLine `json:"statuses"`
		Overall  statusLine   `json:"overall"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(got.Statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(got.Statuses))
	}
	food := got.Statuses[0]
	if food.Category != "Food" || food.Spent != "750" || food.PercentUsed != 125 || !food.Exceeded {
		t.Errorf("status = %+v, want Food exceeded at 125%%", food)
	}
	// Overall: limit 1600, spent 1550 -> 97%, within budget.
	if got.Overall.Limit != "1600" || got.Overall.Spent != "1550" || got.Overall.PercentUsed != 97 || got.Overall.Exceeded {
		t.Errorf("overall = %+v, want 1550/1600 at 97%%", got.Overall)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestRateLimitOnMutatingRequests(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"type":"expense","amount":"1","category":"Food","description":"x","date":"2025-02-10"}`
	var last int
	for i := 0; i < 61; i++ {
		rec := doJSON(t, s, http.MethodPost, "/transactions", "u1", body)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("61st request status = %d, want 429", last)
	}

	// Reads are never rate limited.
	rec := doJSON(t, s, http.MethodGet, "/transactions", "u1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET after limit status = %d, want 200", rec.Code)
	}
}

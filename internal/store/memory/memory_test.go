package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func tx(user, date string, amount int64) core.Transaction {
	return core.Transaction{
		UserID:      user,
		Type:        core.Expense,
		Amount:      decimal.NewFromInt(amount),
		Category:    "Food",
		Description: "test",
		Date:        date,
	}
}

func TestCreateAssignsIdentity(t *testing.T) {
	s := New()
	created, err := s.Create(context.Background(), tx("u1", "2025-02-01", 10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("identity not assigned: %+v", created)
	}
}

func TestListNewestFirstAndOwnerScoped(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed(tx("u1", "2025-01-05", 1), tx("u1", "2025-03-01", 2), tx("u2", "2025-02-01", 3))

	got, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Date != "2025-03-01" || got[1].Date != "2025-01-05" {
		t.Fatalf("not newest first: %s, %s", got[0].Date, got[1].Date)
	}
}

func TestListInRangeInclusive(t *testing.T) {
	s := New()
	s.Seed(tx("u1", "2025-01-31", 1), tx("u1", "2025-02-01", 2), tx("u1", "2025-02-28", 3), tx("u1", "2025-03-01", 4))

	got, err := s.ListInRange(context.Background(), "u1", "2025-02-01", "2025-02-28")
	if err != nil {
		t.Fatalf("list in range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	created, _ := s.Create(ctx, tx("u1", "2025-02-01", 10))

	category := "Travel"
	amount := decimal.NewFromInt(99)
	updated, err := s.Update(ctx, created.ID, store.TransactionPatch{Category: &category, Amount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != "Travel" || updated.Amount.String() != "99" {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Date != "2025-02-01" {
		t.Fatalf("unpatched field changed: %s", updated.Date)
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Update(ctx, "missing", store.TransactionPatch{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertBudgetNoDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.UpsertBudget(ctx, "u1", "Food", decimal.NewFromInt(800))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := s.UpsertBudget(ctx, "u1", "Food", decimal.NewFromInt(900))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("upsert created a duplicate row")
	}

	budgets, _ := s.ListBudgets(ctx, "u1")
	if len(budgets) != 1 {
		t.Fatalf("expected 1 budget, got %d", len(budgets))
	}
	if budgets[0].LimitAmount.String() != "900" {
		t.Fatalf("limit not updated: %s", budgets[0].LimitAmount)
	}
}

func TestListBudgetsOrderedByCategory(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, _ = s.UpsertBudget(ctx, "u1", "Travel", decimal.NewFromInt(300))
	_, _ = s.UpsertBudget(ctx, "u1", "Food", decimal.NewFromInt(800))
	_, _ = s.UpsertBudget(ctx, "u2", "Food", decimal.NewFromInt(100))

	budgets, _ := s.ListBudgets(ctx, "u1")
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(budgets))
	}
	if budgets[0].Category != "Food" || budgets[1].Category != "Travel" {
		t.Fatalf("not ordered by category: %s, %s", budgets[0].Category, budgets[1].Category)
	}
}

func TestListBudgetUsers(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, _ = s.UpsertBudget(ctx, "u2", "Food", decimal.NewFromInt(100))
	_, _ = s.UpsertBudget(ctx, "u1", "Travel", decimal.NewFromInt(300))
	_, _ = s.UpsertBudget(ctx, "u1", "Food", decimal.NewFromInt(800))

	users, err := s.ListBudgetUsers(ctx)
	if err != nil {
		t.Fatalf("list budget users: %v", err)
	}
	if len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Fatalf("users = %v, want [u1 u2]", users)
	}
}

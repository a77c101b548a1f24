// Package memory provides an in-memory store implementation, used as the
// development backend and as the test double for handler and service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	mu      sync.Mutex
	txs     []core.Transaction
	budgets []core.Budget
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{now: time.Now}
}

// Seed inserts transactions as-is, assigning ids where missing. Test helper.
func (s *Store) Seed(txs ...core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = s.now()
		}
		s.txs = append(s.txs, tx)
	}
}

func (s *Store) List(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(userID, func(core.Transaction) bool { return true }), nil
}

func (s *Store) ListInRange(_ context.Context, userID, start, end string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(userID, func(tx core.Transaction) bool {
		return tx.Date >= start && tx.Date <= end
	}), nil
}

// collect copies matching rows sorted newest date first. Callers hold mu.
func (s *Store) collect(userID string, match func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, tx := range s.txs {
		if tx.UserID == userID && match(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func (s *Store) Create(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = uuid.NewString()
	tx.CreatedAt = s.now()
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *Store) Update(_ context.Context, id string, patch store.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID != id {
			continue
		}
		apply(&s.txs[i], patch)
		return s.txs[i], nil
	}
	return core.Transaction{}, store.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, userID, category string, limit decimal.Decimal) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].UserID == userID && s.budgets[i].Category == category {
			s.budgets[i].LimitAmount = limit
			return s.budgets[i], nil
		}
	}
	b := core.Budget{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    category,
		LimitAmount: limit,
		CreatedAt:   s.now(),
	}
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) ListBudgetUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, b := range s.budgets {
		if _, ok := seen[b.UserID]; ok {
			continue
		}
		seen[b.UserID] = struct{}{}
		out = append(out, b.UserID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID == id {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func apply(tx *core.Transaction, patch store.TransactionPatch) {
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Source != nil {
		tx.Source = *patch.Source
	}
}

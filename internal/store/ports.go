// Package store defines the ports to the persistent table backend.
//
// The core depends only on this minimal CRUD contract: equality filter on
// the owner, inclusive range filter on the date column, and a sort on one
// column. Backend errors propagate to callers untranslated.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// ErrNotFound is returned when an id does not resolve to a row.
var ErrNotFound = errors.New("not found")

// TransactionPatch carries the mutable fields of an update. Nil fields are
// left untouched; set fields replace the stored value entirely.
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Category    *string
	Description *string
	Date        *string
	Type        *core.TxType
	Source      *string
}

type (
	// TransactionStore is the CRUD facade over the transactions table.
	TransactionStore interface {
		// List returns the user's transactions, newest date first.
		List(ctx context.Context, userID string) ([]core.Transaction, error)
		// ListInRange returns transactions with start <= date <= end,
		// bounds inclusive, newest date first.
		ListInRange(ctx context.Context, userID, start, end string) ([]core.Transaction, error)
		// Create stores a transaction, assigning ID and CreatedAt.
		Create(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		// Update replaces the patch fields on the identified transaction.
		Update(ctx context.Context, id string, patch TransactionPatch) (core.Transaction, error)
		Delete(ctx context.Context, id string) error
	}

	// BudgetStore manages per-category spending limits.
	BudgetStore interface {
		// ListBudgets returns the user's budgets ordered by category.
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		// UpsertBudget atomically inserts or updates the (userID, category)
		// row. Concurrent upserts for the same pair never produce
		// duplicates.
		UpsertBudget(ctx context.Context, userID, category string, limit decimal.Decimal) (core.Budget, error)
		DeleteBudget(ctx context.Context, id string) error
		// ListBudgetUsers returns the distinct user ids that have at least
		// one budget, ordered. The alert sweep iterates over these.
		ListBudgetUsers(ctx context.Context) ([]string, error)
	}

	// Store combines the two table facades.
	Store interface {
		TransactionStore
		BudgetStore
	}
)

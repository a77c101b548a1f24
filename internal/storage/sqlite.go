// Package storage implements the store ports on SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = "id, user_id, type, amount, category, description, source, date, created_at"

func (r *SQLiteRepository) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY date DESC, created_at DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *SQLiteRepository) ListInRange(ctx context.Context, userID, start, end string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date DESC, created_at DESC",
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *SQLiteRepository) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions (id, user_id, type, amount, category, description, source, date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		tx.ID, tx.UserID, string(tx.Type), tx.Amount.String(), tx.Category, tx.Description, tx.Source, tx.Date, tx.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"user_id", tx.UserID,
		"type", string(tx.Type),
		"amount", tx.Amount.String(),
		"date", tx.Date)

	return tx, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, patch store.TransactionPatch) (core.Transaction, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Amount != nil {
		add("amount", patch.Amount.String())
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Type != nil {
		add("type", string(*patch.Type))
	}
	if patch.Source != nil {
		add("source", *patch.Source)
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := r.db.ExecContext(ctx,
			"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return core.Transaction{}, store.ErrNotFound
		}
	}

	return r.getTransaction(ctx, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) getTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, category, limit_amount, created_at FROM budgets WHERE user_id = ? ORDER BY category ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var limit string
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &limit, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.LimitAmount, err = decimal.NewFromString(limit); err != nil {
			return nil, fmt.Errorf("parse budget limit %q: %w", limit, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertBudget relies on the (user_id, category) uniqueness constraint, so
// concurrent upserts for the same pair settle on one row instead of racing
// a lookup against an insert.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, userID, category string, limit decimal.Decimal) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO budgets (id, user_id, category, limit_amount, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, category) DO UPDATE SET limit_amount = excluded.limit_amount
		 RETURNING id, user_id, category, limit_amount, created_at`,
		uuid.NewString(), userID, category, limit.String(), time.Now().UTC())

	var b core.Budget
	var limitStr string
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &limitStr, &b.CreatedAt); err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	var err error
	if b.LimitAmount, err = decimal.NewFromString(limitStr); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget limit %q: %w", limitStr, err)
	}

	slog.InfoContext(ctx, "Budget upserted",
		"id", b.ID,
		"user_id", b.UserID,
		"category", b.Category,
		"limit", b.LimitAmount.String())

	return b, nil
}

func (r *SQLiteRepository) ListBudgetUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT user_id FROM budgets ORDER BY user_id ASC")
	if err != nil {
		return nil, fmt.Errorf("list budget users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan budget user: %w", err)
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var typ, amount string
	if err := row.Scan(&tx.ID, &tx.UserID, &typ, &amount, &tx.Category, &tx.Description, &tx.Source, &tx.Date, &tx.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TxType(typ)
	var err error
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return tx, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

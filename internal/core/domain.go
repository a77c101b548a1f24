package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

type (
	// TxType discriminates income from expense transactions.
	TxType string

	// Transaction is a single recorded income or expense event.
	// ID, UserID and CreatedAt are assigned by the store and immutable.
	Transaction struct {
		ID          string
		UserID      string
		Type        TxType
		Amount      decimal.Decimal
		Category    string
		Description string
		Source      string // income only, optional
		Date        string // YYYY-MM-DD
		CreatedAt   time.Time
	}

	// Budget is a per-category spending limit. At most one row exists per
	// (UserID, Category) pair; the store enforces this with a uniqueness
	// constraint and an atomic upsert.
	Budget struct {
		ID          string
		UserID      string
		Category    string
		LimitAmount decimal.Decimal
		CreatedAt   time.Time
	}
)

// Known category vocabularies. The UI offers these at entry time; the data
// layer accepts any non-empty category, so stored rows may carry names that
// are no longer in the vocabulary.
var (
	ExpenseCategories = []string{"Food", "Travel", "Shopping", "Rent", "Others"}
	IncomeCategories  = []string{"Salary", "Freelance", "Investment", "Others"}
)

var (
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyUser        = errors.New("empty user id")
	ErrNegativeLimit    = errors.New("negative budget limit")
)

// DateLayout is the calendar date format used throughout. ISO-8601 dates
// sort lexicographically in calendar order, which the range queries and the
// aggregation functions rely on.
const DateLayout = "2006-01-02"

func (t TxType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

// ValidateDate checks that s is a well-formed, zero-padded YYYY-MM-DD date.
// Dates are validated at ingestion so aggregation can assume sortable input.
func ValidateDate(s string) error {
	parsed, err := time.Parse(DateLayout, s)
	if err != nil {
		return ErrInvalidDate
	}
	// time.Parse accepts some non-canonical spellings; require the exact form.
	if parsed.Format(DateLayout) != s {
		return ErrInvalidDate
	}
	return nil
}

func (tx Transaction) Validate() error {
	if strings.TrimSpace(tx.UserID) == "" {
		return ErrEmptyUser
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(tx.Description) == "" {
		return ErrEmptyDescription
	}
	if len(tx.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return ValidateDate(tx.Date)
}

// Month returns the YYYY-MM prefix of the transaction date.
func (tx Transaction) Month() string {
	if len(tx.Date) < 7 {
		return tx.Date
	}
	return tx.Date[:7]
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUser
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.LimitAmount.IsNegative() {
		return ErrNegativeLimit
	}
	return nil
}

// Package core provides the finance tracker's domain types and the parsing
// and validation rules applied at ingestion time.
//
// This file contains functions for parsing monetary amounts from strings.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an exact amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. The
// result must be strictly positive; signs, currency symbols and thousands
// separators are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-5")    -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot.
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseLimit parses a budget limit. Unlike transaction amounts a limit of
// zero is allowed; it disables the percentage computation downstream.
func ParseLimit(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrNegativeLimit
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNegativeLimit
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeLimit
	}
	return d, nil
}

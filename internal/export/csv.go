// Package export serializes transaction lists to the CSV report format.
//
// Every field is quoted and embedded quotes are doubled (RFC 4180), so the
// output survives free-text descriptions containing commas or quotes.
// Amounts are written as plain decimal strings with no currency symbol or
// thousands separator. Row order matches the input; callers filter and sort
// before exporting.
package export

import (
	"fmt"
	"io"
	"strings"

	"fintrack/internal/core"
)

// Header is the fixed column order of the report.
var Header = []string{"Date", "Type", "Category", "Description", "Amount", "Source"}

// WriteCSV writes the header row followed by one row per transaction.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	if err := writeRow(w, Header); err != nil {
		return err
	}
	for i := range txs {
		if err := writeRow(w, row(txs[i])); err != nil {
			return err
		}
	}
	return nil
}

// ToCSV returns the serialized report as a string.
func ToCSV(txs []core.Transaction) string {
	var b strings.Builder
	// strings.Builder writes never fail.
	_ = WriteCSV(&b, txs)
	return b.String()
}

// Filename names the exported artifact for an inclusive date range.
func Filename(start, end string) string {
	return fmt.Sprintf("finance-report-%s-to-%s.csv", start, end)
}

func row(tx core.Transaction) []string {
	return []string{
		tx.Date,
		string(tx.Type),
		tx.Category,
		tx.Description,
		tx.Amount.String(),
		tx.Source,
	}
}

func writeRow(w io.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, quote(f)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

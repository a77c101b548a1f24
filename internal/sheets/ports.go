package sheets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReportRow is one evaluated snapshot of a user's month, mirrored to an
// external spreadsheet for people who track their finances there as well.
type ReportRow struct {
	EvaluatedAt  time.Time
	UserID       string
	Month        string // YYYY-MM
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
	Exceeded     []string // categories over their budget limit
}

// ReportWriter is the outbound port for the spreadsheet mirror.
type ReportWriter interface {
	AppendReport(ctx context.Context, row ReportRow) error
}

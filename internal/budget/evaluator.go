// Package budget compares recorded spending against per-category limits.
package budget

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// Status is one evaluated budget line.
type Status struct {
	Category    string
	Limit       decimal.Decimal
	Spent       decimal.Decimal
	PercentUsed int
	Exceeded    bool
}

var hundred = decimal.NewFromInt(100)

// Evaluate produces one status line per budget, in budget order. Spending
// comes from the category expense buckets of the same transaction snapshot;
// categories without a budget are not reported.
func Evaluate(budgets []core.Budget, spentByCategory []report.CategoryBucket) []Status {
	spent := make(map[string]decimal.Decimal, len(spentByCategory))
	for _, b := range spentByCategory {
		spent[b.Name] = b.Value
	}

	out := make([]Status, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, line(b.Category, b.LimitAmount, spent[b.Category]))
	}
	return out
}

// EvaluateOverall collapses the computation to a single combined line.
func EvaluateOverall(totalLimit, totalSpent decimal.Decimal) Status {
	return line("Overall", totalLimit, totalSpent)
}

func line(category string, limit, spent decimal.Decimal) Status {
	percent := 0
	if limit.IsPositive() {
		percent = int(spent.Mul(hundred).Div(limit).Round(0).IntPart())
	}
	return Status{
		Category:    category,
		Limit:       limit,
		Spent:       spent,
		PercentUsed: percent,
		Exceeded:    spent.GreaterThan(limit),
	}
}

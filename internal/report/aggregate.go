// Package report implements the aggregation engine: pure functions deriving
// summaries, category breakdowns and time series from an in-memory snapshot
// of transactions. All functions are single-pass, never mutate their input
// and never fail on well-formed data.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type (
	// Summary holds the derived totals for a transaction set.
	// Savings is defined as Balance (income minus expense); the mock-data
	// variant's 60%-of-balance heuristic is intentionally not used.
	Summary struct {
		TotalIncome  decimal.Decimal
		TotalExpense decimal.Decimal
		Balance      decimal.Decimal
		Savings      decimal.Decimal
	}

	// CategoryBucket is an aggregate keyed by category or income source.
	CategoryBucket struct {
		Name  string
		Value decimal.Decimal
		Color string
	}

	// MonthBucket sums income and expense within one calendar month.
	// Key is the YYYY-MM prefix; Label is the 3-letter month abbreviation.
	MonthBucket struct {
		Key     string
		Label   string
		Income  decimal.Decimal
		Expense decimal.Decimal
	}

	// DayBucket sums income and expense on a single date.
	DayBucket struct {
		Date    string
		Income  decimal.Decimal
		Expense decimal.Decimal
	}
)

// MaxMonthBuckets bounds the monthly series to the most recent months.
const MaxMonthBuckets = 6

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FilterByRange returns the transactions with start <= date <= end, bounds
// inclusive. Comparison is lexicographic, valid because dates are ISO-8601.
// Relative order is preserved.
func FilterByRange(txs []core.Transaction, start, end string) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date >= start && tx.Date <= end {
			out = append(out, tx)
		}
	}
	return out
}

// ComputeSummary derives the income/expense totals for the given set.
func ComputeSummary(txs []core.Transaction) Summary {
	var income, expense decimal.Decimal
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.Amount)
		case core.Expense:
			expense = expense.Add(tx.Amount)
		}
	}
	balance := income.Sub(expense)
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      balance,
		Savings:      balance,
	}
}

// SavingsRate returns the savings as a rounded percentage of income,
// or 0 when there is no income.
func (s Summary) SavingsRate() int {
	if !s.TotalIncome.IsPositive() {
		return 0
	}
	return int(s.Savings.Div(s.TotalIncome).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// ComputeCategoryExpenses buckets expense amounts by category. Buckets
// appear in first-encountered order so repeated renders are stable.
func ComputeCategoryExpenses(txs []core.Transaction) []CategoryBucket {
	return bucketBy(txs, core.Expense, func(tx core.Transaction) string {
		return tx.Category
	})
}

// ComputeIncomeSources buckets income amounts by source, falling back to
// the category when no source was recorded.
func ComputeIncomeSources(txs []core.Transaction) []CategoryBucket {
	return bucketBy(txs, core.Income, func(tx core.Transaction) string {
		if tx.Source != "" {
			return tx.Source
		}
		return tx.Category
	})
}

func bucketBy(txs []core.Transaction, typ core.TxType, key func(core.Transaction) string) []CategoryBucket {
	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		k := key(tx)
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] = sums[k].Add(tx.Amount)
	}

	buckets := make([]CategoryBucket, 0, len(order))
	for _, name := range order {
		buckets = append(buckets, CategoryBucket{
			Name:  name,
			Value: sums[name],
			Color: CategoryColor(name),
		})
	}
	return buckets
}

// ComputeMonthlyData sums income and expense per calendar month, ascending
// by month key, truncated to the MaxMonthBuckets most recent months.
func ComputeMonthlyData(txs []core.Transaction) []MonthBucket {
	type sums struct{ income, expense decimal.Decimal }
	byMonth := make(map[string]*sums)
	for _, tx := range txs {
		m := tx.Month()
		s, ok := byMonth[m]
		if !ok {
			s = &sums{}
			byMonth[m] = s
		}
		switch tx.Type {
		case core.Income:
			s.income = s.income.Add(tx.Amount)
		case core.Expense:
			s.expense = s.expense.Add(tx.Amount)
		}
	}

	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > MaxMonthBuckets {
		keys = keys[len(keys)-MaxMonthBuckets:]
	}

	buckets := make([]MonthBucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, MonthBucket{
			Key:     k,
			Label:   monthLabel(k),
			Income:  byMonth[k].income,
			Expense: byMonth[k].expense,
		})
	}
	return buckets
}

// monthLabel maps a YYYY-MM key to its 3-letter abbreviation.
func monthLabel(key string) string {
	if len(key) < 7 {
		return key
	}
	m := int(key[5]-'0')*10 + int(key[6]-'0')
	if m < 1 || m > 12 {
		return key
	}
	return monthLabels[m-1]
}

// ComputeDailyTrend sums income and expense per date, ascending by date.
func ComputeDailyTrend(txs []core.Transaction) []DayBucket {
	type sums struct{ income, expense decimal.Decimal }
	byDate := make(map[string]*sums)
	for _, tx := range txs {
		s, ok := byDate[tx.Date]
		if !ok {
			s = &sums{}
			byDate[tx.Date] = s
		}
		switch tx.Type {
		case core.Income:
			s.income = s.income.Add(tx.Amount)
		case core.Expense:
			s.expense = s.expense.Add(tx.Amount)
		}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]DayBucket, 0, len(dates))
	for _, d := range dates {
		out = append(out, DayBucket{Date: d, Income: byDate[d].income, Expense: byDate[d].expense})
	}
	return out
}

// TopExpenses returns the n largest expense transactions, descending by
// amount. Ties keep their input order. The input slice is not modified.
func TopExpenses(txs []core.Transaction, n int) []core.Transaction {
	expenses := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == core.Expense {
			expenses = append(expenses, tx)
		}
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Amount.GreaterThan(expenses[j].Amount)
	})
	if n < len(expenses) {
		expenses = expenses[:n]
	}
	return expenses
}

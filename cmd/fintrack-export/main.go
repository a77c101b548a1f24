// fintrack-export dumps a user's transactions to the CSV report format and
// prints summary, category and budget tables for the selected date range.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	chart "github.com/wcharczuk/go-chart/v2"

	"fintrack/internal/budget"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/storage"
)

var (
	user     = flag.String("user", "", "User ID to export (required)")
	from     = flag.String("from", "0000-01-01", "Range start date (YYYY-MM-DD, inclusive)")
	to       = flag.String("to", "9999-12-31", "Range end date (YYYY-MM-DD, inclusive)")
	out      = flag.String("out", ".", "Directory to write the CSV report into")
	dbPath   = flag.String("db", "", "SQLite database path (defaults to SQLITE_DB_PATH)")
	genChart = flag.Bool("chart", false, "Also render a monthly expenses PNG chart")
)

func main() {
	_ = godotenv.Load()
	flag.Parse()

	// Keep tables readable: structured logs go to stderr, warnings and up.
	applog.SetDefault(applog.New(applog.Config{
		Level:     slog.LevelWarn,
		Component: applog.ComponentExport,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}))

	if *user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		flag.Usage()
		os.Exit(2)
	}
	for _, d := range []string{*from, *to} {
		if err := core.ValidateDate(d); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid date %q, want YYYY-MM-DD\n", d)
			os.Exit(2)
		}
	}

	path := *dbPath
	if path == "" {
		path = config.Load().SQLiteDBPath
	}

	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open database %s: %v\n", path, err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()

	txs, err := repo.ListInRange(ctx, *user, *from, *to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load transactions: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*out, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: create output directory: %v\n", err)
		os.Exit(1)
	}

	csvPath := filepath.Join(*out, export.Filename(*from, *to))
	f, err := os.Create(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create %s: %v\n", csvPath, err)
		os.Exit(1)
	}
	if err := export.WriteCSV(f, txs); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error: write CSV: %v\n", err)
		os.Exit(1)
	}
	f.Close()

	fmt.Printf("Exported %d transactions to %s\n\n", len(txs), csvPath)

	printSummary(txs)
	printCategories(txs)
	printBudgets(ctx, repo, *user, txs)

	if *genChart {
		chartPath := filepath.Join(*out, "monthly-expenses.png")
		if err := renderMonthlyChart(chartPath, txs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: render chart: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nMonthly expenses chart saved to %s\n", chartPath)
	}
}

func printSummary(txs []core.Transaction) {
	summary := report.ComputeSummary(txs)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Total Income", "Total Expense", "Balance", "Savings Rate"})
	table.Append([]string{
		summary.TotalIncome.String(),
		summary.TotalExpense.String(),
		summary.Balance.String(),
		strconv.Itoa(summary.SavingsRate()) + "%",
	})
	table.Render()
}

func printCategories(txs []core.Transaction) {
	buckets := report.ComputeCategoryExpenses(txs)
	if len(buckets) == 0 {
		return
	}

	fmt.Println("\nExpenses by category:")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Category", "Amount"})
	for _, b := range buckets {
		table.Append([]string{b.Name, b.Value.String()})
	}
	table.Render()
}

func printBudgets(ctx context.Context, repo *storage.SQLiteRepository, userID string, txs []core.Transaction) {
	budgets, err := repo.ListBudgets(ctx, userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: load budgets: %v\n", err)
		return
	}
	if len(budgets) == 0 {
		return
	}

	statuses := budget.Evaluate(budgets, report.ComputeCategoryExpenses(txs))

	fmt.Println("\nBudgets:")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Category", "Limit", "Spent", "Used", "Exceeded"})
	for _, st := range statuses {
		exceeded := ""
		if st.Exceeded {
			exceeded = "YES"
		}
		table.Append([]string{
			st.Category,
			st.Limit.String(),
			st.Spent.String(),
			strconv.Itoa(st.PercentUsed) + "%",
			exceeded,
		})
	}
	table.Render()
}

func renderMonthlyChart(path string, txs []core.Transaction) error {
	months := report.ComputeMonthlyData(txs)
	if len(months) == 0 {
		return fmt.Errorf("no data to chart")
	}

	var bars []chart.Value
	for _, m := range months {
		bars = append(bars, chart.Value{
			Label: m.Label,
			Value: m.Expense.InexactFloat64(),
		})
	}

	barChart := chart.BarChart{
		Title: "Monthly Expenses",
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  800,
		Height: 400,
		Bars:   bars,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	return barChart.Render(chart.PNG, f)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/ledger"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	"github.com/shunichi-ikebuchi/bookkeeping/pkg/config"
)

var (
	reportAsOf  string
	reportStart string
	reportEnd   string
)

// trialBalanceCmd represents the trial-balance command.
var trialBalanceCmd = &cobra.Command{
	Use:   "trial-balance",
	Short: "Display the trial balance",
	Long: `Display the trial balance as of a date.

Every active account appears on one row with its net activity in either
the debit or the credit column. The two column totals must be equal.

Example:
  bookkeeping trial-balance
  bookkeeping trial-balance --as-of 2026-06-30`,
	Run: runTrialBalance,
}

// balanceSheetCmd represents the balance-sheet command.
var balanceSheetCmd = &cobra.Command{
	Use:   "balance-sheet",
	Short: "Display the balance sheet",
	Long: `Display the balance sheet as of a date.

Example:
  bookkeeping balance-sheet
  bookkeeping balance-sheet --as-of 2026-06-30`,
	Run: runBalanceSheet,
}

// incomeStatementCmd represents the income-statement command.
var incomeStatementCmd = &cobra.Command{
	Use:   "income-statement",
	Short: "Display the income statement",
	Long: `Display the income statement for an inclusive date range.

Example:
  bookkeeping income-statement --start 2026-01-01 --end 2026-12-31`,
	Run: runIncomeStatement,
}

func init() {
	trialBalanceCmd.Flags().StringVar(&reportAsOf, "as-of", "", "report date, YYYY-MM-DD (default today)")
	balanceSheetCmd.Flags().StringVar(&reportAsOf, "as-of", "", "report date, YYYY-MM-DD (default today)")

	incomeStatementCmd.Flags().StringVar(&reportStart, "start", "", "period start, YYYY-MM-DD (required)")
	incomeStatementCmd.Flags().StringVar(&reportEnd, "end", "", "period end, YYYY-MM-DD (required)")
	_ = incomeStatementCmd.MarkFlagRequired("start")
	_ = incomeStatementCmd.MarkFlagRequired("end")
}

func newReportGenerator() (*ledger.ReportGenerator, func() error) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	store, closeStore, err := openStore(cfg)
	exitOnError(err, "failed to open store")

	return ledger.NewReportGenerator(store), closeStore
}

func parseAsOf() time.Time {
	if reportAsOf == "" {
		return time.Now()
	}
	asOf, err := time.Parse(models.DateLayout, reportAsOf)
	exitOnError(err, "invalid --as-of, expected YYYY-MM-DD")
	return asOf
}

func runTrialBalance(cmd *cobra.Command, args []string) {
	reports, closeStore := newReportGenerator()
	defer closeStore()

	report, err := reports.TrialBalance(cmd.Context(), parseAsOf())
	exitOnError(err, "failed to generate trial balance")

	fmt.Printf("\n=== Trial Balance as of %s ===\n", report.AsOfDate.Format(models.DateLayout))
	fmt.Printf("%-8s %-40s %15s %15s\n", "CODE", "ACCOUNT", "DEBIT", "CREDIT")
	for _, line := range report.Lines {
		fmt.Printf("%-8s %-40s %15s %15s\n",
			line.AccountCode, line.AccountName,
			line.Debit.StringFixed(2), line.Credit.StringFixed(2))
	}
	fmt.Printf("%-49s %15s %15s\n", "TOTAL",
		report.TotalDebits.StringFixed(2), report.TotalCredits.StringFixed(2))

	if report.IsBalanced() {
		fmt.Println("\nThe trial balance is in balance.")
	} else {
		fmt.Println("\nWARNING: the trial balance does not balance.")
	}
}

func printSection(title string, lines []models.ReportLine) {
	fmt.Printf("\n%s\n", title)
	for _, line := range lines {
		fmt.Printf("  %-8s %-38s %15s\n", line.AccountCode, line.AccountName, line.Amount.StringFixed(2))
	}
}

func runBalanceSheet(cmd *cobra.Command, args []string) {
	reports, closeStore := newReportGenerator()
	defer closeStore()

	report, err := reports.BalanceSheet(cmd.Context(), parseAsOf())
	exitOnError(err, "failed to generate balance sheet")

	fmt.Printf("\n=== Balance Sheet as of %s ===\n", report.AsOfDate.Format(models.DateLayout))
	printSection("Assets", report.Assets)
	fmt.Printf("  %-47s %15s\n", "Total Assets", report.TotalAssets.StringFixed(2))
	printSection("Liabilities", report.Liabilities)
	fmt.Printf("  %-47s %15s\n", "Total Liabilities", report.TotalLiabilities.StringFixed(2))
	printSection("Equity", report.Equity)
	fmt.Printf("  %-47s %15s\n", "Total Equity", report.TotalEquity.StringFixed(2))
	fmt.Printf("\n  %-47s %15s\n", "Total Liabilities and Equity", report.TotalLiabilitiesAndEquity.StringFixed(2))

	if report.IsBalanced() {
		fmt.Println("\nThe balance sheet is in balance.")
	} else {
		fmt.Println("\nWARNING: assets do not equal liabilities plus equity.")
	}
}

func runIncomeStatement(cmd *cobra.Command, args []string) {
	start, err := time.Parse(models.DateLayout, reportStart)
	exitOnError(err, "invalid --start, expected YYYY-MM-DD")
	end, err := time.Parse(models.DateLayout, reportEnd)
	exitOnError(err, "invalid --end, expected YYYY-MM-DD")

	reports, closeStore := newReportGenerator()
	defer closeStore()

	report, err := reports.IncomeStatement(cmd.Context(), start, end)
	exitOnError(err, "failed to generate income statement")

	fmt.Printf("\n=== Income Statement %s to %s ===\n",
		report.StartDate.Format(models.DateLayout), report.EndDate.Format(models.DateLayout))
	printSection("Revenue", report.Revenue)
	fmt.Printf("  %-47s %15s\n", "Total Revenue", report.TotalRevenue.StringFixed(2))
	printSection("Cost of Goods Sold", report.CostOfGoodsSold)
	fmt.Printf("  %-47s %15s\n", "Total Cost of Goods Sold", report.TotalCostOfGoodsSold.StringFixed(2))
	fmt.Printf("\n  %-47s %15s\n", "Gross Profit", report.GrossProfit.StringFixed(2))
	printSection("Operating Expenses", report.Expenses)
	fmt.Printf("  %-47s %15s\n", "Total Expenses", report.TotalExpenses.StringFixed(2))
	fmt.Printf("\n  %-47s %15s\n", "Net Income", report.NetIncome.StringFixed(2))
}

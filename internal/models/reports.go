package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportLine is a single account row in a financial statement.
type ReportLine struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// TrialBalanceLine is a single account row in a trial balance. Row-level
// netting guarantees exactly one of Debit/Credit is non-zero.
type TrialBalanceLine struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceData is the trial balance report as of a date.
type TrialBalanceData struct {
	AsOfDate     time.Time          `json:"as_of_date"`
	Lines        []TrialBalanceLine `json:"lines"`
	TotalDebits  decimal.Decimal    `json:"total_debits"`
	TotalCredits decimal.Decimal    `json:"total_credits"`
}

// IsBalanced reports whether the debit and credit columns total equally.
func (tb *TrialBalanceData) IsBalanced() bool {
	return tb.TotalDebits.Equal(tb.TotalCredits)
}

// BalanceSheetData is the balance sheet report as of a date. Only accounts
// with non-zero balances appear.
type BalanceSheetData struct {
	AsOfDate                  time.Time       `json:"as_of_date"`
	Assets                    []ReportLine    `json:"assets"`
	Liabilities               []ReportLine    `json:"liabilities"`
	Equity                    []ReportLine    `json:"equity"`
	TotalAssets               decimal.Decimal `json:"total_assets"`
	TotalLiabilities          decimal.Decimal `json:"total_liabilities"`
	TotalEquity               decimal.Decimal `json:"total_equity"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"total_liabilities_and_equity"`
}

// IsBalanced reports whether assets equal liabilities plus equity.
func (bs *BalanceSheetData) IsBalanced() bool {
	return bs.TotalAssets.Equal(bs.TotalLiabilitiesAndEquity)
}

// IncomeStatementData is the income statement for an inclusive period.
type IncomeStatementData struct {
	StartDate            time.Time       `json:"start_date"`
	EndDate              time.Time       `json:"end_date"`
	Revenue              []ReportLine    `json:"revenue"`
	CostOfGoodsSold      []ReportLine    `json:"cost_of_goods_sold"`
	Expenses             []ReportLine    `json:"expenses"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	TotalCostOfGoodsSold decimal.Decimal `json:"total_cost_of_goods_sold"`
	TotalExpenses        decimal.Decimal `json:"total_expenses"`
	GrossProfit          decimal.Decimal `json:"gross_profit"`
	NetIncome            decimal.Decimal `json:"net_income"`
}

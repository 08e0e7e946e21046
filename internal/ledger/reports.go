package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage"
)

// ReportGenerator builds financial statements from the chart of accounts and
// the posted entry history. All methods are read-only and safe to run
// concurrently with postings.
type ReportGenerator struct {
	store storage.LedgerStore
	calc  *BalanceCalculator
}

// NewReportGenerator creates a generator on the given store.
func NewReportGenerator(store storage.LedgerStore) *ReportGenerator {
	return &ReportGenerator{
		store: store,
		calc:  NewBalanceCalculator(store),
	}
}

// TrialBalance nets every active account's activity as of a date into a
// single debit or credit column. For any ledger built from balanced postings
// the two column totals are equal.
func (g *ReportGenerator) TrialBalance(ctx context.Context, asOf time.Time) (*models.TrialBalanceData, error) {
	accounts, err := g.store.ActiveAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.TrialBalanceData{
		AsOfDate:     asOf,
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	for _, account := range accounts {
		debit, credit, err := g.store.DebitCreditTotals(ctx, account.ID, time.Time{}, asOf)
		if err != nil {
			return nil, err
		}

		line := models.TrialBalanceLine{
			AccountCode: account.Code,
			AccountName: account.Name,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}

		// Row-level netting: each account shows in exactly one column.
		if account.Type.IsDebitNormal() {
			net := debit.Sub(credit)
			if net.IsPositive() {
				line.Debit = net
			} else {
				line.Credit = net.Abs()
			}
		} else {
			net := credit.Sub(debit)
			if net.IsPositive() {
				line.Credit = net
			} else {
				line.Debit = net.Abs()
			}
		}

		report.TotalDebits = report.TotalDebits.Add(line.Debit)
		report.TotalCredits = report.TotalCredits.Add(line.Credit)
		report.Lines = append(report.Lines, line)
	}

	return report, nil
}

// BalanceSheet reports asset, liability and equity balances as of a date,
// listing only accounts with non-zero balances.
func (g *ReportGenerator) BalanceSheet(ctx context.Context, asOf time.Time) (*models.BalanceSheetData, error) {
	report := &models.BalanceSheetData{
		AsOfDate:         asOf,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	sections := []struct {
		accountType models.AccountType
		lines       *[]models.ReportLine
		total       *decimal.Decimal
	}{
		{models.Asset, &report.Assets, &report.TotalAssets},
		{models.Liability, &report.Liabilities, &report.TotalLiabilities},
		{models.Equity, &report.Equity, &report.TotalEquity},
	}

	for _, section := range sections {
		accounts, err := g.store.AccountsByType(ctx, section.accountType)
		if err != nil {
			return nil, err
		}
		for _, account := range accounts {
			balance, err := g.calc.AccountBalance(ctx, account.ID, asOf)
			if err != nil {
				return nil, err
			}
			if balance.IsZero() {
				continue
			}
			*section.lines = append(*section.lines, models.ReportLine{
				AccountCode: account.Code,
				AccountName: account.Name,
				Amount:      balance,
			})
			*section.total = section.total.Add(balance)
		}
	}

	report.TotalLiabilitiesAndEquity = report.TotalLiabilities.Add(report.TotalEquity)
	return report, nil
}

// IncomeStatement reports revenue, cost of goods sold and expenses over an
// inclusive period. It fails with ErrInvalidRange when start is after end.
func (g *ReportGenerator) IncomeStatement(ctx context.Context, start, end time.Time) (*models.IncomeStatementData, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	report := &models.IncomeStatementData{
		StartDate:            start,
		EndDate:              end,
		TotalRevenue:         decimal.Zero,
		TotalCostOfGoodsSold: decimal.Zero,
		TotalExpenses:        decimal.Zero,
	}

	sections := []struct {
		accountType models.AccountType
		lines       *[]models.ReportLine
		total       *decimal.Decimal
	}{
		{models.Revenue, &report.Revenue, &report.TotalRevenue},
		{models.CostOfGoodsSold, &report.CostOfGoodsSold, &report.TotalCostOfGoodsSold},
		{models.Expense, &report.Expenses, &report.TotalExpenses},
	}

	for _, section := range sections {
		accounts, err := g.store.AccountsByType(ctx, section.accountType)
		if err != nil {
			return nil, err
		}
		for _, account := range accounts {
			balance, err := g.calc.AccountBalanceForPeriod(ctx, account.ID, start, end)
			if err != nil {
				return nil, err
			}
			if balance.IsZero() {
				continue
			}
			*section.lines = append(*section.lines, models.ReportLine{
				AccountCode: account.Code,
				AccountName: account.Name,
				Amount:      balance,
			})
			*section.total = section.total.Add(balance)
		}
	}

	report.GrossProfit = report.TotalRevenue.Sub(report.TotalCostOfGoodsSold)
	report.NetIncome = report.GrossProfit.Sub(report.TotalExpenses)
	return report, nil
}

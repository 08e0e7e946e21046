package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
)

func TestTrialBalance(t *testing.T) {
	store, registry, manager := newTestLedger()
	reports := NewReportGenerator(store)
	ctx := context.Background()

	cash := mustAccount(t, registry, "1100", "Cash", models.Asset)
	capital := mustAccount(t, registry, "3100", "Capital", models.Equity)
	sales := mustAccount(t, registry, "4100", "Sales Revenue", models.Revenue)
	rent := mustAccount(t, registry, "5200", "Rent Expense", models.Expense)

	mustPost(t, manager, "Initial capital", day(t, "2026-01-05"), []Line{
		debitLine(cash.ID, 50000000), creditLine(capital.ID, 50000000),
	})
	mustPost(t, manager, "Cash sale", day(t, "2026-01-12"), []Line{
		debitLine(cash.ID, 400), creditLine(sales.ID, 400),
	})
	mustPost(t, manager, "January rent", day(t, "2026-01-20"), []Line{
		debitLine(rent.ID, 150), creditLine(cash.ID, 150),
	})

	report, err := reports.TrialBalance(ctx, day(t, "2026-01-31"))
	if err != nil {
		t.Fatalf("TrialBalance: %v", err)
	}

	if !report.IsBalanced() {
		t.Errorf("trial balance out of balance: debits %s, credits %s",
			report.TotalDebits, report.TotalCredits)
	}
	if !report.TotalDebits.Equal(amount(50000400)) {
		t.Errorf("total debits = %s, want 50000400", report.TotalDebits)
	}

	byCode := make(map[string]models.TrialBalanceLine, len(report.Lines))
	for _, line := range report.Lines {
		byCode[line.AccountCode] = line
	}

	// Each row nets into exactly one column.
	cashLine := byCode["1100"]
	if !cashLine.Debit.Equal(amount(50000250)) || !cashLine.Credit.IsZero() {
		t.Errorf("cash row = %s/%s, want 50000250/0", cashLine.Debit, cashLine.Credit)
	}
	salesLine := byCode["4100"]
	if !salesLine.Credit.Equal(amount(400)) || !salesLine.Debit.IsZero() {
		t.Errorf("sales row = %s/%s, want 0/400", salesLine.Debit, salesLine.Credit)
	}
	rentLine := byCode["5200"]
	if !rentLine.Debit.Equal(amount(150)) || !rentLine.Credit.IsZero() {
		t.Errorf("rent row = %s/%s, want 150/0", rentLine.Debit, rentLine.Credit)
	}
}

func TestTrialBalanceContraActivity(t *testing.T) {
	store, registry, manager := newTestLedger()
	reports := NewReportGenerator(store)
	ctx := context.Background()

	// Net credit activity on a debit-normal account moves it to the credit
	// column instead of going negative.
	overdraft := mustAccount(t, registry, "1100", "Cash", models.Asset)
	payable := mustAccount(t, registry, "2100", "Accounts Payable", models.Liability)

	mustPost(t, manager, "Supplier payment from overdraft", day(t, "2026-01-10"), []Line{
		debitLine(payable.ID, 300), creditLine(overdraft.ID, 300),
	})

	report, err := reports.TrialBalance(ctx, day(t, "2026-01-31"))
	if err != nil {
		t.Fatalf("TrialBalance: %v", err)
	}
	if !report.IsBalanced() {
		t.Errorf("trial balance out of balance: debits %s, credits %s",
			report.TotalDebits, report.TotalCredits)
	}

	for _, line := range report.Lines {
		switch line.AccountCode {
		case "1100":
			if !line.Credit.Equal(amount(300)) || !line.Debit.IsZero() {
				t.Errorf("overdrawn cash row = %s/%s, want 0/300", line.Debit, line.Credit)
			}
		case "2100":
			if !line.Debit.Equal(amount(300)) || !line.Credit.IsZero() {
				t.Errorf("payable row = %s/%s, want 300/0", line.Debit, line.Credit)
			}
		}
	}
}

func TestTrialBalanceSkipsInactiveAccounts(t *testing.T) {
	store, registry, _ := newTestLedger()
	reports := NewReportGenerator(store)
	ctx := context.Background()

	mustAccount(t, registry, "1100", "Cash", models.Asset)
	dormant := mustAccount(t, registry, "1300", "Inventory", models.Asset)
	if _, err := registry.ToggleActive(ctx, dormant.ID); err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}

	report, err := reports.TrialBalance(ctx, day(t, "2026-01-31"))
	if err != nil {
		t.Fatalf("TrialBalance: %v", err)
	}
	if len(report.Lines) != 1 {
		t.Fatalf("trial balance has %d rows, want 1", len(report.Lines))
	}
	if report.Lines[0].AccountCode != "1100" {
		t.Errorf("row account = %s, want 1100", report.Lines[0].AccountCode)
	}
}

func TestBalanceSheet(t *testing.T) {
	store, registry, manager := newTestLedger()
	reports := NewReportGenerator(store)
	ctx := context.Background()

	cash := mustAccount(t, registry, "1100", "Cash", models.Asset)
	equipment := mustAccount(t, registry, "1510", "Equipment", models.Asset)
	loan := mustAccount(t, registry, "2510", "Bank Loan", models.Liability)
	capital := mustAccount(t, registry, "3100", "Capital", models.Equity)
	mustAccount(t, registry, "1300", "Inventory", models.Asset) // stays zero

	mustPost(t, manager, "Initial capital", day(t, "2026-01-05"), []Line{
		debitLine(cash.ID, 5000), creditLine(capital.ID, 5000),
	})
	mustPost(t, manager, "Equipment on loan", day(t, "2026-01-10"), []Line{
		debitLine(equipment.ID, 2000), creditLine(loan.ID, 2000),
	})

	report, err := reports.BalanceSheet(ctx, day(t, "2026-01-31"))
	if err != nil {
		t.Fatalf("BalanceSheet: %v", err)
	}

	if !report.TotalAssets.Equal(amount(7000)) {
		t.Errorf("total assets = %s, want 7000", report.TotalAssets)
	}
	if !report.TotalLiabilities.Equal(amount(2000)) {
		t.Errorf("total liabilities = %s, want 2000", report.TotalLiabilities)
	}
	if !report.TotalEquity.Equal(amount(5000)) {
		t.Errorf("total equity = %s, want 5000", report.TotalEquity)
	}
	if !report.IsBalanced() {
		t.Errorf("balance sheet out of balance: assets %s, liabilities+equity %s",
			report.TotalAssets, report.TotalLiabilitiesAndEquity)
	}

	// The zero-balance inventory account is omitted.
	if len(report.Assets) != 2 {
		t.Errorf("asset rows = %d, want 2", len(report.Assets))
	}
}

func TestIncomeStatement(t *testing.T) {
	store, registry, manager := newTestLedger()
	reports := NewReportGenerator(store)
	ctx := context.Background()

	cash := mustAccount(t, registry, "1100", "Cash", models.Asset)
	sales := mustAccount(t, registry, "4100", "Sales Revenue", models.Revenue)
	cogs := mustAccount(t, registry, "6100", "Cost of Goods Sold", models.CostOfGoodsSold)
	inventory := mustAccount(t, registry, "1300", "Inventory", models.Asset)
	rent := mustAccount(t, registry, "5200", "Rent Expense", models.Expense)

	mustPost(t, manager, "Cash sale", day(t, "2026-01-12"), []Line{
		debitLine(cash.ID, 1000), creditLine(sales.ID, 1000),
	})
	mustPost(t, manager, "Cost of sale", day(t, "2026-01-12"), []Line{
		debitLine(cogs.ID, 600), creditLine(inventory.ID, 600),
	})
	mustPost(t, manager, "January rent", day(t, "2026-01-20"), []Line{
		debitLine(rent.ID, 150), creditLine(cash.ID, 150),
	})
	// Outside the period.
	mustPost(t, manager, "February sale", day(t, "2026-02-12"), []Line{
		debitLine(cash.ID, 9999), creditLine(sales.ID, 9999),
	})

	report, err := reports.IncomeStatement(ctx, day(t, "2026-01-01"), day(t, "2026-01-31"))
	if err != nil {
		t.Fatalf("IncomeStatement: %v", err)
	}

	if !report.TotalRevenue.Equal(amount(1000)) {
		t.Errorf("total revenue = %s, want 1000", report.TotalRevenue)
	}
	if !report.TotalCostOfGoodsSold.Equal(amount(600)) {
		t.Errorf("total cogs = %s, want 600", report.TotalCostOfGoodsSold)
	}
	if !report.GrossProfit.Equal(amount(400)) {
		t.Errorf("gross profit = %s, want 400", report.GrossProfit)
	}
	if !report.TotalExpenses.Equal(amount(150)) {
		t.Errorf("total expenses = %s, want 150", report.TotalExpenses)
	}
	if !report.NetIncome.Equal(amount(250)) {
		t.Errorf("net income = %s, want 250", report.NetIncome)
	}
}

func TestIncomeStatementNetLoss(t *testing.T) {
	store, registry, manager := newTestLedger()
	reports := NewReportGenerator(store)
	ctx := context.Background()

	cash := mustAccount(t, registry, "1100", "Cash", models.Asset)
	sales := mustAccount(t, registry, "4100", "Sales Revenue", models.Revenue)
	rent := mustAccount(t, registry, "5200", "Rent Expense", models.Expense)

	mustPost(t, manager, "Small sale", day(t, "2026-01-12"), []Line{
		debitLine(cash.ID, 100), creditLine(sales.ID, 100),
	})
	mustPost(t, manager, "January rent", day(t, "2026-01-20"), []Line{
		debitLine(rent.ID, 400), creditLine(cash.ID, 400),
	})

	report, err := reports.IncomeStatement(ctx, day(t, "2026-01-01"), day(t, "2026-01-31"))
	if err != nil {
		t.Fatalf("IncomeStatement: %v", err)
	}
	if !report.NetIncome.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("net income = %s, want -300", report.NetIncome)
	}
}

func TestIncomeStatementInvalidRange(t *testing.T) {
	store, _, _ := newTestLedger()
	reports := NewReportGenerator(store)

	_, err := reports.IncomeStatement(context.Background(), day(t, "2026-02-01"), day(t, "2026-01-01"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("IncomeStatement error = %v, want ErrInvalidRange", err)
	}
}

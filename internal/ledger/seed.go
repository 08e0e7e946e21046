package ledger

import (
	"context"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
)

// AccountSeed describes one account of a chart to be created.
type AccountSeed struct {
	Code        string
	Name        string
	Type        models.AccountType
	Description string
}

// SeedDefaultChartOfAccounts creates the standard chart of accounts. It is
// idempotent: a ledger that already contains any account is left untouched.
func (r *AccountRegistry) SeedDefaultChartOfAccounts(ctx context.Context) error {
	return r.SeedChart(ctx, DefaultChartOfAccounts())
}

// SeedChart bulk-creates the given accounts. Like
// SeedDefaultChartOfAccounts it is a no-op when any account already exists.
func (r *AccountRegistry) SeedChart(ctx context.Context, seeds []AccountSeed) error {
	count, err := r.store.CountAccounts(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, seed := range seeds {
		if _, err := r.CreateAccount(ctx, seed.Code, seed.Name, seed.Type, seed.Description); err != nil {
			return err
		}
	}
	return nil
}

// DefaultChartOfAccounts returns the built-in standard chart.
func DefaultChartOfAccounts() []AccountSeed {
	return []AccountSeed{
		// Assets
		{"1000", "Current Assets", models.Asset, "Current Assets"},
		{"1100", "Cash", models.Asset, "Cash and Cash Equivalents"},
		{"1200", "Accounts Receivable", models.Asset, "Money owed by customers"},
		{"1300", "Inventory", models.Asset, "Goods for sale"},
		{"1400", "Prepaid Expenses", models.Asset, "Expenses paid in advance"},
		{"1500", "Fixed Assets", models.Asset, "Fixed Assets"},
		{"1510", "Equipment", models.Asset, "Office and business equipment"},
		{"1520", "Accumulated Depreciation - Equipment", models.Asset, "Depreciation on equipment"},
		{"1530", "Vehicles", models.Asset, "Company vehicles"},
		{"1540", "Accumulated Depreciation - Vehicles", models.Asset, "Depreciation on vehicles"},

		// Liabilities
		{"2000", "Current Liabilities", models.Liability, "Current Liabilities"},
		{"2100", "Accounts Payable", models.Liability, "Money owed to suppliers"},
		{"2200", "Accrued Expenses", models.Liability, "Expenses incurred but not yet paid"},
		{"2300", "Unearned Revenue", models.Liability, "Revenue received in advance"},
		{"2500", "Long-term Liabilities", models.Liability, "Long-term Liabilities"},
		{"2510", "Bank Loan", models.Liability, "Long-term bank loans"},

		// Equity
		{"3000", "Owner's Equity", models.Equity, "Owner's Equity"},
		{"3100", "Capital", models.Equity, "Owner's initial investment"},
		{"3200", "Retained Earnings", models.Equity, "Accumulated profits"},
		{"3300", "Owner's Drawings", models.Equity, "Owner's withdrawals"},

		// Revenue
		{"4000", "Revenue", models.Revenue, "Revenue"},
		{"4100", "Sales Revenue", models.Revenue, "Revenue from sales"},
		{"4200", "Service Revenue", models.Revenue, "Revenue from services"},
		{"4300", "Other Income", models.Revenue, "Miscellaneous income"},

		// Expenses
		{"5000", "Operating Expenses", models.Expense, "Operating Expenses"},
		{"5100", "Salaries Expense", models.Expense, "Employee salaries"},
		{"5200", "Rent Expense", models.Expense, "Office rent"},
		{"5300", "Utilities Expense", models.Expense, "Electricity, water, internet"},
		{"5400", "Office Supplies Expense", models.Expense, "Office supplies"},
		{"5500", "Depreciation Expense", models.Expense, "Asset depreciation"},
		{"5600", "Marketing Expense", models.Expense, "Marketing and advertising"},
		{"5700", "Professional Fees", models.Expense, "Legal and professional services"},
		{"5800", "Travel Expense", models.Expense, "Business travel"},
		{"5900", "Miscellaneous Expense", models.Expense, "Other expenses"},

		// Cost of goods sold
		{"6000", "Cost of Goods Sold", models.CostOfGoodsSold, "Cost of Goods Sold"},
		{"6100", "Purchases", models.CostOfGoodsSold, "Inventory purchases"},
		{"6200", "Freight In", models.CostOfGoodsSold, "Shipping costs on purchases"},
	}
}

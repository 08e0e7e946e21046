package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage"
)

// BalanceCalculator derives signed account balances from posted entries.
// It is read-only and independent of the running balance kept on the
// account record.
type BalanceCalculator struct {
	store storage.LedgerStore
}

// NewBalanceCalculator creates a calculator on the given store.
func NewBalanceCalculator(store storage.LedgerStore) *BalanceCalculator {
	return &BalanceCalculator{store: store}
}

// AccountBalance returns the account's signed balance from all entries dated
// on or before asOf. Debit-normal accounts yield debits minus credits,
// credit-normal accounts the reverse. An account with no qualifying entries
// has a zero balance.
func (c *BalanceCalculator) AccountBalance(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	return c.balance(ctx, accountID, time.Time{}, asOf)
}

// AccountBalanceForPeriod is AccountBalance restricted to entries whose
// transaction date falls in [start, end], both ends inclusive.
func (c *BalanceCalculator) AccountBalanceForPeriod(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, error) {
	return c.balance(ctx, accountID, start, end)
}

func (c *BalanceCalculator) balance(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, error) {
	account, err := c.store.AccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if account == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}

	debit, credit, err := c.store.DebitCreditTotals(ctx, accountID, start, end)
	if err != nil {
		return decimal.Zero, err
	}

	if account.Type.IsDebitNormal() {
		return debit.Sub(credit), nil
	}
	return credit.Sub(debit), nil
}

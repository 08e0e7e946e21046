// Package storage defines the durable-store contract the ledger engine is
// built against. Implementations must provide atomic multi-row writes: a
// transaction header, its entries and every touched account balance succeed
// or fail together.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// LedgerStore is the capability interface the ledger engine consumes.
// Lookup methods return (nil, nil) when the record is absent; the service
// layer converts absence into its own error taxonomy.
type LedgerStore interface {
	// SaveAccount inserts a new account.
	SaveAccount(ctx context.Context, account *models.Account) error

	// UpdateAccount overwrites the stored account identified by account.ID.
	UpdateAccount(ctx context.Context, account *models.Account) error

	// DeleteAccount removes an account. It returns false when the id does
	// not exist.
	DeleteAccount(ctx context.Context, id string) (bool, error)

	// SetAccountBalance overwrites an account's running balance.
	SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error

	AccountByID(ctx context.Context, id string) (*models.Account, error)
	AccountByCode(ctx context.Context, code string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	AccountsByType(ctx context.Context, accountType models.AccountType) ([]models.Account, error)
	ActiveAccounts(ctx context.Context) ([]models.Account, error)
	SearchAccountsByName(ctx context.Context, name string) ([]models.Account, error)
	CountAccounts(ctx context.Context) (int, error)

	// EntryCount returns the number of posted entries referencing an account.
	EntryCount(ctx context.Context, accountID string) (int, error)

	// CreateTransaction persists the header, all entries and the given
	// per-account balance deltas as one atomic unit. The store assigns
	// txn.Number inside the same unit from the greatest persisted number.
	CreateTransaction(ctx context.Context, txn *models.Transaction, deltas map[string]decimal.Decimal) error

	// DeleteTransaction removes the transaction together with its entries
	// and applies the reversal deltas atomically. It returns false when the
	// id does not exist.
	DeleteTransaction(ctx context.Context, id string, deltas map[string]decimal.Decimal) (bool, error)

	// ReplaceEntries swaps a transaction's entries for a new set and applies
	// the net balance deltas, all in one atomic unit. The header's total
	// amount and update timestamp are rewritten from txn.
	ReplaceEntries(ctx context.Context, txn *models.Transaction, deltas map[string]decimal.Decimal) error

	// UpdateTransactionHeader amends date, description and reference only.
	UpdateTransactionHeader(ctx context.Context, txn *models.Transaction) error

	TransactionByID(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	TransactionsByDateRange(ctx context.Context, start, end time.Time) ([]models.Transaction, error)
	SearchTransactionsByDescription(ctx context.Context, description string) ([]models.Transaction, error)
	RecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error)

	// DebitCreditTotals sums the debit and credit amounts of all entries on
	// an account whose transaction date falls in [start, end], both ends
	// inclusive. A zero start means no lower bound. Accounts without
	// qualifying entries yield zero totals.
	DebitCreditTotals(ctx context.Context, accountID string, start, end time.Time) (debit, credit decimal.Decimal, err error)
}

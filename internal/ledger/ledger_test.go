package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage/memory"
)

// newTestLedger wires a registry and transaction manager onto a fresh
// in-memory store.
func newTestLedger() (*memory.Store, *AccountRegistry, *TransactionManager) {
	store := memory.New()
	return store, NewAccountRegistry(store), NewTransactionManager(store, nil)
}

func mustAccount(t *testing.T, registry *AccountRegistry, code, name string, accountType models.AccountType) *models.Account {
	t.Helper()
	account, err := registry.CreateAccount(context.Background(), code, name, accountType, "")
	if err != nil {
		t.Fatalf("CreateAccount(%s): %v", code, err)
	}
	return account
}

func mustPost(t *testing.T, manager *TransactionManager, description string, date time.Time, lines []Line) *models.Transaction {
	t.Helper()
	txn, err := manager.Post(context.Background(), description, date, "", lines)
	if err != nil {
		t.Fatalf("Post(%s): %v", description, err)
	}
	return txn
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse(models.DateLayout, value)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return date
}

func amount(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

func debitLine(accountID string, value int64) Line {
	return Line{AccountID: accountID, Debit: amount(value)}
}

func creditLine(accountID string, value int64) Line {
	return Line{AccountID: accountID, Credit: amount(value)}
}

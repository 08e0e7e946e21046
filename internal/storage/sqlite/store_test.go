package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage"
	"github.com/shunichi-ikebuchi/bookkeeping/pkg/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return New(conn)
}

func saveTestAccount(t *testing.T, store *Store, id, code string, accountType models.AccountType) {
	t.Helper()
	now := time.Now()
	err := store.SaveAccount(context.Background(), &models.Account{
		ID:        id,
		Code:      code,
		Name:      "Account " + code,
		Type:      accountType,
		Balance:   decimal.Zero,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("SaveAccount(%s): %v", code, err)
	}
}

func TestAccountRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saveTestAccount(t, store, "a1", "1100", models.Asset)

	acct, err := store.AccountByID(ctx, "a1")
	if err != nil {
		t.Fatalf("AccountByID: %v", err)
	}
	if acct == nil {
		t.Fatal("account not found after save")
	}
	if acct.Code != "1100" || acct.Type != models.Asset || !acct.Active {
		t.Errorf("round trip mangled account: %+v", acct)
	}
	if !acct.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", acct.Balance)
	}

	missing, err := store.AccountByID(ctx, "ghost")
	if err != nil {
		t.Fatalf("AccountByID: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing account")
	}
}

func TestUniqueAccountCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saveTestAccount(t, store, "a1", "1100", models.Asset)

	now := time.Now()
	err := store.SaveAccount(ctx, &models.Account{
		ID: "a2", Code: "1100", Name: "Duplicate", Type: models.Asset,
		Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now,
	})
	if err == nil {
		t.Fatal("expected UNIQUE violation for duplicate code")
	}
}

func TestCreateTransactionAtomicity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saveTestAccount(t, store, "cash", "1100", models.Asset)
	saveTestAccount(t, store, "capital", "3100", models.Equity)

	now := time.Now()
	date, _ := time.Parse(models.DateLayout, "2026-01-15")
	txn := &models.Transaction{
		ID:          "t1",
		Date:        date,
		Description: "Initial capital",
		TotalAmount: decimal.NewFromInt(500),
		Entries: []models.Entry{
			{ID: "e1", TransactionID: "t1", AccountID: "cash", Debit: decimal.NewFromInt(500), Credit: decimal.Zero},
			{ID: "e2", TransactionID: "t1", AccountID: "capital", Debit: decimal.Zero, Credit: decimal.NewFromInt(500)},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	deltas := map[string]decimal.Decimal{
		"cash":    decimal.NewFromInt(500),
		"capital": decimal.NewFromInt(500),
	}

	if err := store.CreateTransaction(ctx, txn, deltas); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if txn.Number != "TXN-000001" {
		t.Errorf("assigned number = %q, want TXN-000001", txn.Number)
	}

	// Header, entries and balances all landed.
	loaded, err := store.TransactionByID(ctx, "t1")
	if err != nil {
		t.Fatalf("TransactionByID: %v", err)
	}
	if loaded == nil {
		t.Fatal("transaction not found after create")
	}
	if len(loaded.Entries) != 2 {
		t.Errorf("entry count = %d, want 2", len(loaded.Entries))
	}
	if !loaded.Date.Equal(date) {
		t.Errorf("date = %s, want %s", loaded.Date, date)
	}

	cash, err := store.AccountByID(ctx, "cash")
	if err != nil {
		t.Fatalf("AccountByID: %v", err)
	}
	if !cash.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("cash balance = %s, want 500", cash.Balance)
	}

	count, err := store.EntryCount(ctx, "cash")
	if err != nil {
		t.Fatalf("EntryCount: %v", err)
	}
	if count != 1 {
		t.Errorf("entry count = %d, want 1", count)
	}
}

func TestCreateTransactionRollsBackOnUnknownAccount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saveTestAccount(t, store, "cash", "1100", models.Asset)

	now := time.Now()
	date, _ := time.Parse(models.DateLayout, "2026-01-15")
	txn := &models.Transaction{
		ID: "t1", Date: date, Description: "Bad", TotalAmount: decimal.NewFromInt(100),
		Entries: []models.Entry{
			{ID: "e1", TransactionID: "t1", AccountID: "cash", Debit: decimal.NewFromInt(100)},
			{ID: "e2", TransactionID: "t1", AccountID: "ghost", Credit: decimal.NewFromInt(100)},
		},
		CreatedAt: now, UpdatedAt: now,
	}
	deltas := map[string]decimal.Decimal{
		"cash":  decimal.NewFromInt(100),
		"ghost": decimal.NewFromInt(100),
	}

	err := store.CreateTransaction(ctx, txn, deltas)
	if err == nil {
		t.Fatal("expected error for unknown account")
	}

	// Nothing committed: no header row and no balance drift.
	loaded, err := store.TransactionByID(ctx, "t1")
	if err != nil {
		t.Fatalf("TransactionByID: %v", err)
	}
	if loaded != nil {
		t.Error("failed create left a transaction behind")
	}
	cash, err := store.AccountByID(ctx, "cash")
	if err != nil {
		t.Fatalf("AccountByID: %v", err)
	}
	if !cash.Balance.IsZero() {
		t.Errorf("failed create moved cash balance to %s", cash.Balance)
	}
}

func TestDebitCreditTotalsDateBounds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saveTestAccount(t, store, "cash", "1100", models.Asset)
	saveTestAccount(t, store, "sales", "4100", models.Revenue)

	post := func(id, dateStr string, amount int64) {
		t.Helper()
		now := time.Now()
		date, _ := time.Parse(models.DateLayout, dateStr)
		txn := &models.Transaction{
			ID: id, Date: date, Description: "Sale", TotalAmount: decimal.NewFromInt(amount),
			Entries: []models.Entry{
				{ID: id + "-d", TransactionID: id, AccountID: "cash", Debit: decimal.NewFromInt(amount)},
				{ID: id + "-c", TransactionID: id, AccountID: "sales", Credit: decimal.NewFromInt(amount)},
			},
			CreatedAt: now, UpdatedAt: now,
		}
		deltas := map[string]decimal.Decimal{
			"cash":  decimal.NewFromInt(amount),
			"sales": decimal.NewFromInt(amount),
		}
		if err := store.CreateTransaction(ctx, txn, deltas); err != nil {
			t.Fatalf("CreateTransaction(%s): %v", id, err)
		}
	}

	post("t1", "2026-01-10", 100)
	post("t2", "2026-02-10", 200)
	post("t3", "2026-03-10", 400)

	endOfFeb, _ := time.Parse(models.DateLayout, "2026-02-28")

	// Zero start means no lower bound.
	debit, credit, err := store.DebitCreditTotals(ctx, "cash", time.Time{}, endOfFeb)
	if err != nil {
		t.Fatalf("DebitCreditTotals: %v", err)
	}
	if !debit.Equal(decimal.NewFromInt(300)) || !credit.IsZero() {
		t.Errorf("totals = %s/%s, want 300/0", debit, credit)
	}

	// Bounded period, both ends inclusive.
	startOfFeb, _ := time.Parse(models.DateLayout, "2026-02-10")
	debit, _, err = store.DebitCreditTotals(ctx, "cash", startOfFeb, endOfFeb)
	if err != nil {
		t.Fatalf("DebitCreditTotals: %v", err)
	}
	if !debit.Equal(decimal.NewFromInt(200)) {
		t.Errorf("bounded debit total = %s, want 200", debit)
	}
}

func TestDeleteTransaction(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saveTestAccount(t, store, "cash", "1100", models.Asset)
	saveTestAccount(t, store, "sales", "4100", models.Revenue)

	now := time.Now()
	date, _ := time.Parse(models.DateLayout, "2026-01-15")
	txn := &models.Transaction{
		ID: "t1", Date: date, Description: "Sale", TotalAmount: decimal.NewFromInt(100),
		Entries: []models.Entry{
			{ID: "e1", TransactionID: "t1", AccountID: "cash", Debit: decimal.NewFromInt(100)},
			{ID: "e2", TransactionID: "t1", AccountID: "sales", Credit: decimal.NewFromInt(100)},
		},
		CreatedAt: now, UpdatedAt: now,
	}
	deltas := map[string]decimal.Decimal{
		"cash":  decimal.NewFromInt(100),
		"sales": decimal.NewFromInt(100),
	}
	if err := store.CreateTransaction(ctx, txn, deltas); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	reversal := map[string]decimal.Decimal{
		"cash":  decimal.NewFromInt(-100),
		"sales": decimal.NewFromInt(-100),
	}
	found, err := store.DeleteTransaction(ctx, "t1", reversal)
	if err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if !found {
		t.Fatal("expected delete to report found")
	}

	cash, err := store.AccountByID(ctx, "cash")
	if err != nil {
		t.Fatalf("AccountByID: %v", err)
	}
	if !cash.Balance.IsZero() {
		t.Errorf("cash balance = %s after delete, want 0", cash.Balance)
	}
	count, err := store.EntryCount(ctx, "cash")
	if err != nil {
		t.Fatalf("EntryCount: %v", err)
	}
	if count != 0 {
		t.Errorf("entry count = %d after delete, want 0", count)
	}

	found, err = store.DeleteTransaction(ctx, "t1", nil)
	if err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if found {
		t.Error("expected second delete to report not found")
	}
}

func TestDeletedNumberNotReissued(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saveTestAccount(t, store, "cash", "1100", models.Asset)
	saveTestAccount(t, store, "sales", "4100", models.Revenue)

	post := func(id string) *models.Transaction {
		t.Helper()
		now := time.Now()
		date, _ := time.Parse(models.DateLayout, "2026-01-15")
		txn := &models.Transaction{
			ID: id, Date: date, Description: "Sale", TotalAmount: decimal.NewFromInt(100),
			Entries: []models.Entry{
				{ID: id + "-d", TransactionID: id, AccountID: "cash", Debit: decimal.NewFromInt(100)},
				{ID: id + "-c", TransactionID: id, AccountID: "sales", Credit: decimal.NewFromInt(100)},
			},
			CreatedAt: now, UpdatedAt: now,
		}
		deltas := map[string]decimal.Decimal{
			"cash":  decimal.NewFromInt(100),
			"sales": decimal.NewFromInt(100),
		}
		if err := store.CreateTransaction(ctx, txn, deltas); err != nil {
			t.Fatalf("CreateTransaction(%s): %v", id, err)
		}
		return txn
	}

	first := post("t1")
	if first.Number != "TXN-000001" {
		t.Fatalf("first number = %q, want TXN-000001", first.Number)
	}

	// Deleting the highest-numbered transaction must not free its number.
	reversal := map[string]decimal.Decimal{
		"cash":  decimal.NewFromInt(-100),
		"sales": decimal.NewFromInt(-100),
	}
	if _, err := store.DeleteTransaction(ctx, "t1", reversal); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	second := post("t2")
	if second.Number != "TXN-000002" {
		t.Errorf("number after delete = %q, want TXN-000002", second.Number)
	}
}

func TestUpdateMissingRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	err := store.UpdateAccount(ctx, &models.Account{
		ID: "ghost", Code: "9999", Name: "Ghost", Type: models.Asset,
		Balance: decimal.Zero, UpdatedAt: now,
	})
	if err != storage.ErrNotFound {
		t.Errorf("UpdateAccount error = %v, want ErrNotFound", err)
	}

	err = store.UpdateTransactionHeader(ctx, &models.Transaction{
		ID: "ghost", Date: now, UpdatedAt: now,
	})
	if err != storage.ErrNotFound {
		t.Errorf("UpdateTransactionHeader error = %v, want ErrNotFound", err)
	}
}

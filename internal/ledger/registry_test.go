package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
)

func TestCreateAccount(t *testing.T) {
	_, registry, _ := newTestLedger()
	ctx := context.Background()

	account, err := registry.CreateAccount(ctx, "1100", "Cash", models.Asset, "Cash on hand")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if account.ID == "" {
		t.Error("expected a generated id")
	}
	if !account.Balance.IsZero() {
		t.Errorf("new account balance = %s, want 0", account.Balance)
	}
	if !account.Active {
		t.Error("new account should be active")
	}

	found, err := registry.FindByCode(ctx, "1100")
	if err != nil {
		t.Fatalf("FindByCode: %v", err)
	}
	if found.Name != "Cash" {
		t.Errorf("found name = %q, want Cash", found.Name)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	_, registry, _ := newTestLedger()
	ctx := context.Background()

	tests := []struct {
		name        string
		code        string
		accountName string
		accountType models.AccountType
	}{
		{"blank code", "", "Cash", models.Asset},
		{"whitespace code", "   ", "Cash", models.Asset},
		{"code too long", strings.Repeat("1", models.MaxAccountCodeLen+1), "Cash", models.Asset},
		{"blank name", "1100", "", models.Asset},
		{"name too long", "1100", strings.Repeat("x", models.MaxAccountNameLen+1), models.Asset},
		{"unknown type", "1100", "Cash", models.AccountType("BANK")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.CreateAccount(ctx, tt.code, tt.accountName, tt.accountType, "")
			if !errors.Is(err, ErrInvalidAccount) {
				t.Errorf("CreateAccount error = %v, want ErrInvalidAccount", err)
			}
		})
	}
}

func TestCreateAccountDuplicateCode(t *testing.T) {
	_, registry, _ := newTestLedger()
	ctx := context.Background()

	mustAccount(t, registry, "1100", "Cash", models.Asset)

	_, err := registry.CreateAccount(ctx, "1100", "Petty Cash", models.Asset, "")
	if !errors.Is(err, ErrDuplicateCode) {
		t.Errorf("CreateAccount error = %v, want ErrDuplicateCode", err)
	}
}

func TestUpdateAccount(t *testing.T) {
	_, registry, _ := newTestLedger()
	ctx := context.Background()

	account := mustAccount(t, registry, "1100", "Cash", models.Asset)
	mustAccount(t, registry, "1200", "Accounts Receivable", models.Asset)

	// Renaming without changing the code must not trip the uniqueness check.
	updated, err := registry.UpdateAccount(ctx, account.ID, "1100", "Cash on Hand", models.Asset, "")
	if err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if updated.Name != "Cash on Hand" {
		t.Errorf("name = %q, want Cash on Hand", updated.Name)
	}

	// Changing the code to an occupied one must fail.
	_, err = registry.UpdateAccount(ctx, account.ID, "1200", "Cash", models.Asset, "")
	if !errors.Is(err, ErrDuplicateCode) {
		t.Errorf("UpdateAccount error = %v, want ErrDuplicateCode", err)
	}

	// Changing to a free code succeeds.
	updated, err = registry.UpdateAccount(ctx, account.ID, "1110", "Cash", models.Asset, "")
	if err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if updated.Code != "1110" {
		t.Errorf("code = %q, want 1110", updated.Code)
	}
}

func TestDeleteAccount(t *testing.T) {
	_, registry, manager := newTestLedger()
	ctx := context.Background()

	cash := mustAccount(t, registry, "1100", "Cash", models.Asset)
	capital := mustAccount(t, registry, "3100", "Capital", models.Equity)
	unused := mustAccount(t, registry, "1300", "Inventory", models.Asset)

	mustPost(t, manager, "Initial capital", day(t, "2026-01-15"), []Line{
		debitLine(cash.ID, 1000),
		creditLine(capital.ID, 1000),
	})

	// An account with posted entries is protected.
	_, err := registry.DeleteAccount(ctx, cash.ID)
	if !errors.Is(err, ErrAccountHasTransactions) {
		t.Errorf("DeleteAccount error = %v, want ErrAccountHasTransactions", err)
	}

	// An unused account deletes cleanly.
	found, err := registry.DeleteAccount(ctx, unused.ID)
	if err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if !found {
		t.Error("expected delete of existing account to report found")
	}

	// A missing id reports not found without error.
	found, err = registry.DeleteAccount(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if found {
		t.Error("expected delete of missing account to report not found")
	}
}

func TestToggleActive(t *testing.T) {
	_, registry, _ := newTestLedger()
	ctx := context.Background()

	account := mustAccount(t, registry, "1100", "Cash", models.Asset)

	toggled, err := registry.ToggleActive(ctx, account.ID)
	if err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if toggled.Active {
		t.Error("expected account to be inactive after toggle")
	}

	toggled, err = registry.ToggleActive(ctx, account.ID)
	if err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if !toggled.Active {
		t.Error("expected account to be active after second toggle")
	}
}

func TestFindAccountNotFound(t *testing.T) {
	_, registry, _ := newTestLedger()
	ctx := context.Background()

	if _, err := registry.FindByID(ctx, "missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("FindByID error = %v, want ErrAccountNotFound", err)
	}
	if _, err := registry.FindByCode(ctx, "9999"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("FindByCode error = %v, want ErrAccountNotFound", err)
	}
}

func TestListAndSearchAccounts(t *testing.T) {
	_, registry, _ := newTestLedger()
	ctx := context.Background()

	mustAccount(t, registry, "1100", "Cash", models.Asset)
	mustAccount(t, registry, "2100", "Accounts Payable", models.Liability)
	receivable := mustAccount(t, registry, "1200", "Accounts Receivable", models.Asset)

	if _, err := registry.ToggleActive(ctx, receivable.ID); err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}

	all, err := registry.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAll returned %d accounts, want 3", len(all))
	}
	// Ordered by code.
	if all[0].Code != "1100" || all[1].Code != "1200" || all[2].Code != "2100" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].Code, all[1].Code, all[2].Code)
	}

	assets, err := registry.ListByType(ctx, models.Asset)
	if err != nil {
		t.Fatalf("ListByType: %v", err)
	}
	if len(assets) != 2 {
		t.Errorf("ListByType(Asset) returned %d accounts, want 2", len(assets))
	}

	active, err := registry.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("ListActive returned %d accounts, want 2", len(active))
	}

	matches, err := registry.SearchByName(ctx, "accounts")
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("SearchByName returned %d accounts, want 2", len(matches))
	}
}

func TestSeedDefaultChartOfAccounts(t *testing.T) {
	store, registry, _ := newTestLedger()
	ctx := context.Background()

	if err := registry.SeedDefaultChartOfAccounts(ctx); err != nil {
		t.Fatalf("SeedDefaultChartOfAccounts: %v", err)
	}

	count, err := store.CountAccounts(ctx)
	if err != nil {
		t.Fatalf("CountAccounts: %v", err)
	}
	want := len(DefaultChartOfAccounts())
	if count != want {
		t.Fatalf("seeded %d accounts, want %d", count, want)
	}

	// Seeding again is a no-op.
	if err := registry.SeedDefaultChartOfAccounts(ctx); err != nil {
		t.Fatalf("second SeedDefaultChartOfAccounts: %v", err)
	}
	count, err = store.CountAccounts(ctx)
	if err != nil {
		t.Fatalf("CountAccounts: %v", err)
	}
	if count != want {
		t.Errorf("reseeding changed account count to %d, want %d", count, want)
	}

	cash, err := registry.FindByCode(ctx, "1100")
	if err != nil {
		t.Fatalf("FindByCode(1100): %v", err)
	}
	if cash.Name != "Cash" || cash.Type != models.Asset {
		t.Errorf("account 1100 = %s/%s, want Cash/ASSET", cash.Name, cash.Type)
	}
}

func TestSeedChartSkipsNonEmptyLedger(t *testing.T) {
	store, registry, _ := newTestLedger()
	ctx := context.Background()

	mustAccount(t, registry, "9000", "Custom", models.Expense)

	if err := registry.SeedDefaultChartOfAccounts(ctx); err != nil {
		t.Fatalf("SeedDefaultChartOfAccounts: %v", err)
	}
	count, err := store.CountAccounts(ctx)
	if err != nil {
		t.Fatalf("CountAccounts: %v", err)
	}
	if count != 1 {
		t.Errorf("seeding a non-empty ledger created accounts: count = %d, want 1", count)
	}
}

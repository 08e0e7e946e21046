package models

import "testing"

func TestAccountTypePolarity(t *testing.T) {
	tests := []struct {
		accountType AccountType
		debitNormal bool
	}{
		{Asset, true},
		{Expense, true},
		{CostOfGoodsSold, true},
		{Liability, false},
		{Equity, false},
		{Revenue, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			if got := tt.accountType.IsDebitNormal(); got != tt.debitNormal {
				t.Errorf("IsDebitNormal() = %v, want %v", got, tt.debitNormal)
			}
			if got := tt.accountType.IsCreditNormal(); got != !tt.debitNormal {
				t.Errorf("IsCreditNormal() = %v, want %v", got, !tt.debitNormal)
			}
		})
	}
}

func TestAccountTypeValid(t *testing.T) {
	for _, accountType := range AccountTypes {
		if !accountType.Valid() {
			t.Errorf("expected %s to be valid", accountType)
		}
	}
	if AccountType("BANK").Valid() {
		t.Error("expected unknown type to be invalid")
	}
	if AccountType("BANK").IsCreditNormal() {
		t.Error("unknown type must not claim a normal balance")
	}
}

func TestAccountNormalBalance(t *testing.T) {
	cash := Account{Type: Asset}
	if got := cash.NormalBalance(); got != "Debit" {
		t.Errorf("NormalBalance() = %q, want Debit", got)
	}
	capital := Account{Type: Equity}
	if got := capital.NormalBalance(); got != "Credit" {
		t.Errorf("NormalBalance() = %q, want Credit", got)
	}
}

func TestAccountTypeDisplayName(t *testing.T) {
	if got := CostOfGoodsSold.DisplayName(); got != "Cost of Goods Sold" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := AccountType("BANK").DisplayName(); got != "BANK" {
		t.Errorf("DisplayName() = %q, want raw value for unknown type", got)
	}
}

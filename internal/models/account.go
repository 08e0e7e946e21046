package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account within the chart of accounts.
type AccountType string

const (
	Asset           AccountType = "ASSET"
	Liability       AccountType = "LIABILITY"
	Equity          AccountType = "EQUITY"
	Revenue         AccountType = "REVENUE"
	Expense         AccountType = "EXPENSE"
	CostOfGoodsSold AccountType = "COST_OF_GOODS_SOLD"
)

// AccountTypes lists every valid account type in statement order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, Expense, CostOfGoodsSold}

// debitNormal maps each account type to its normal-balance polarity.
// A debit increases debit-normal accounts and decreases credit-normal
// accounts; credits work the other way around.
var debitNormal = map[AccountType]bool{
	Asset:           true,
	Liability:       false,
	Equity:          false,
	Revenue:         false,
	Expense:         true,
	CostOfGoodsSold: true,
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	_, ok := debitNormal[t]
	return ok
}

// IsDebitNormal reports whether a debit increases this account type's balance.
func (t AccountType) IsDebitNormal() bool {
	return debitNormal[t]
}

// IsCreditNormal reports whether a credit increases this account type's balance.
func (t AccountType) IsCreditNormal() bool {
	return t.Valid() && !debitNormal[t]
}

// DisplayName returns the human-readable form used in reports.
func (t AccountType) DisplayName() string {
	switch t {
	case Asset:
		return "Asset"
	case Liability:
		return "Liability"
	case Equity:
		return "Equity"
	case Revenue:
		return "Revenue"
	case Expense:
		return "Expense"
	case CostOfGoodsSold:
		return "Cost of Goods Sold"
	default:
		return string(t)
	}
}

// Account represents a single account in the chart of accounts.
// ParentID is a non-owning reference to an optional parent account; no
// computation traverses the hierarchy.
type Account struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Type        AccountType     `json:"type"`
	ParentID    *string         `json:"parent_id,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	Description string          `json:"description,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NormalBalance returns "Debit" or "Credit" depending on the account type.
func (a *Account) NormalBalance() string {
	if a.Type.IsDebitNormal() {
		return "Debit"
	}
	return "Credit"
}

const (
	// MaxAccountCodeLen is the maximum length of an account code.
	MaxAccountCodeLen = 10
	// MaxAccountNameLen is the maximum length of an account name.
	MaxAccountNameLen = 100
)

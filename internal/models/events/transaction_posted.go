// Package events defines the payloads published when the ledger changes.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionPosted is emitted after a balanced transaction has been
// durably recorded and every touched account balance updated.
type TransactionPosted struct {
	TransactionID string          `json:"transaction_id"`
	Number        string          `json:"number"`
	Date          string          `json:"date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	EntryCount    int             `json:"entry_count"`
	PostedAt      time.Time       `json:"posted_at"`
}

// TransactionReversed is emitted after a transaction has been deleted and
// its balance effects reversed.
type TransactionReversed struct {
	TransactionID string          `json:"transaction_id"`
	Number        string          `json:"number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ReversedAt    time.Time       `json:"reversed_at"`
}

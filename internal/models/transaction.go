package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical YYYY-MM-DD form used for transaction dates.
const DateLayout = "2006-01-02"

// TransactionNumberPrefix prefixes every generated transaction number.
const TransactionNumberPrefix = "TXN-"

// Transaction is a journal header owning a set of entries. Entries cannot
// outlive their transaction; deleting the transaction deletes them all.
type Transaction struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Entries     []Entry         `json:"entries"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Entry is a single journal line referencing exactly one account. Exactly one
// of Debit/Credit is positive, the other zero.
type Entry struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Description   string          `json:"description,omitempty"`
}

// IsDebit reports whether the entry carries a debit amount.
func (e *Entry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// Amount returns whichever side of the entry is set.
func (e *Entry) Amount() decimal.Decimal {
	if e.IsDebit() {
		return e.Debit
	}
	return e.Credit
}

// TotalDebits sums the debit side of all entries.
func (t *Transaction) TotalDebits() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range t.Entries {
		sum = sum.Add(e.Debit)
	}
	return sum
}

// TotalCredits sums the credit side of all entries.
func (t *Transaction) TotalCredits() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range t.Entries {
		sum = sum.Add(e.Credit)
	}
	return sum
}

// IsBalanced reports whether total debits equal total credits.
func (t *Transaction) IsBalanced() bool {
	return t.TotalDebits().Equal(t.TotalCredits())
}

// NextTransactionNumber returns the number following last, or the initial
// number when last is empty or malformed. Numbers are zero-padded six-digit
// integers prefixed "TXN-" and are never reused.
func NextTransactionNumber(last string) string {
	if !strings.HasPrefix(last, TransactionNumberPrefix) {
		return TransactionNumberPrefix + "000001"
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, TransactionNumberPrefix))
	if err != nil {
		return TransactionNumberPrefix + "000001"
	}
	return fmt.Sprintf("%s%06d", TransactionNumberPrefix, n+1)
}

package ledger

import "errors"

// Validation failures are detected before any durable write is attempted;
// when one of these is returned, no state has changed.
var (
	// ErrDuplicateCode is returned when an account code collides with an
	// existing account on create or update.
	ErrDuplicateCode = errors.New("account code already exists")

	// ErrAccountNotFound is returned when a referenced account id does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when a referenced transaction id
	// does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAccountHasTransactions is returned on an attempt to delete an
	// account with posted entries.
	ErrAccountHasTransactions = errors.New("cannot delete account with existing transactions")

	// ErrInvalidAccount is returned when account fields fail validation.
	ErrInvalidAccount = errors.New("invalid account")

	// ErrInvalidEntry is returned when a journal line has both or neither of
	// debit and credit set, or a non-positive amount.
	ErrInvalidEntry = errors.New("invalid journal entry")

	// ErrUnbalanced is returned when a transaction's total debits do not
	// equal its total credits.
	ErrUnbalanced = errors.New("transaction is not balanced: total debits must equal total credits")

	// ErrInvalidRange is returned for a report period whose start is after
	// its end.
	ErrInvalidRange = errors.New("start date is after end date")
)

package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/events"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	evmodels "github.com/shunichi-ikebuchi/bookkeeping/internal/models/events"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage"
)

// Line is one journal line of a posting request. Exactly one of Debit and
// Credit must be positive.
type Line struct {
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// TransactionManager is the journal engine: the only component that creates,
// deletes or rewrites posted transactions, and the only one that mutates
// account balances as a side effect of posting.
//
// Concurrent postings that touch a shared account serialize on per-account
// mutexes, always acquired in sorted id order to avoid deadlocks. The store
// additionally applies the header, entries and balance deltas of one call as
// a single atomic unit.
type TransactionManager struct {
	store     storage.LedgerStore
	publisher events.Publisher

	muMap map[string]*sync.Mutex
	mapMu sync.Mutex
}

// NewTransactionManager creates a manager on the given store. A nil
// publisher disables event publishing.
func NewTransactionManager(store storage.LedgerStore, publisher events.Publisher) *TransactionManager {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &TransactionManager{
		store:     store,
		publisher: publisher,
		muMap:     make(map[string]*sync.Mutex),
	}
}

// Post validates, numbers and durably records a balanced transaction, and
// updates every referenced account's running balance. Validation failures
// (ErrInvalidEntry, ErrUnbalanced, ErrAccountNotFound) leave no state behind;
// a store failure rolls the whole call back.
func (m *TransactionManager) Post(ctx context.Context, description string, date time.Time, reference string, lines []Line) (*models.Transaction, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	unlock := m.lockAccounts(accountIDs(lines))
	defer unlock()

	accounts, err := m.loadAccounts(ctx, lines)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txn := &models.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: description,
		Reference:   reference,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	deltas := make(map[string]decimal.Decimal)
	for _, line := range lines {
		totalDebits = totalDebits.Add(line.Debit)
		totalCredits = totalCredits.Add(line.Credit)

		entry := models.Entry{
			ID:            uuid.NewString(),
			TransactionID: txn.ID,
			AccountID:     line.AccountID,
			Debit:         line.Debit,
			Credit:        line.Credit,
			Description:   line.Description,
		}
		txn.Entries = append(txn.Entries, entry)

		acct := accounts[line.AccountID]
		deltas[line.AccountID] = deltas[line.AccountID].Add(balanceDelta(acct.Type, entry))
	}

	if !totalDebits.Equal(totalCredits) {
		return nil, fmt.Errorf("%w: debits %s, credits %s", ErrUnbalanced, totalDebits, totalCredits)
	}
	txn.TotalAmount = totalDebits

	if err := m.store.CreateTransaction(ctx, txn, deltas); err != nil {
		return nil, err
	}

	_ = m.publisher.Publish(ctx, events.TopicTransactionPosted, evmodels.TransactionPosted{
		TransactionID: txn.ID,
		Number:        txn.Number,
		Date:          txn.Date.Format(models.DateLayout),
		TotalAmount:   txn.TotalAmount,
		EntryCount:    len(txn.Entries),
		PostedAt:      now,
	})
	return txn, nil
}

// Delete removes a transaction and applies the exact inverse of its balance
// effects. It returns false when the id does not exist.
func (m *TransactionManager) Delete(ctx context.Context, id string) (bool, error) {
	txn, err := m.store.TransactionByID(ctx, id)
	if err != nil {
		return false, err
	}
	if txn == nil {
		return false, nil
	}

	ids := make([]string, 0, len(txn.Entries))
	for _, e := range txn.Entries {
		ids = append(ids, e.AccountID)
	}
	unlock := m.lockAccounts(ids)
	defer unlock()

	deltas, err := m.reversalDeltas(ctx, txn.Entries)
	if err != nil {
		return false, err
	}

	found, err := m.store.DeleteTransaction(ctx, id, deltas)
	if err != nil || !found {
		return found, err
	}

	_ = m.publisher.Publish(ctx, events.TopicTransactionReversed, evmodels.TransactionReversed{
		TransactionID: txn.ID,
		Number:        txn.Number,
		TotalAmount:   txn.TotalAmount,
		ReversedAt:    time.Now(),
	})
	return true, nil
}

// Update amends header metadata only; entries and balances are untouched.
func (m *TransactionManager) Update(ctx context.Context, id, description string, date time.Time, reference string) (*models.Transaction, error) {
	txn, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	txn.Description = description
	txn.Date = date
	txn.Reference = reference
	txn.UpdatedAt = time.Now()

	if err := m.store.UpdateTransactionHeader(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// ReplaceLines swaps a transaction's entries for a new balanced set. The old
// entries' balance effects are reversed and the new ones applied as a single
// net delta in one atomic store operation, so no caller ever observes the
// ledger between reversal and repost.
func (m *TransactionManager) ReplaceLines(ctx context.Context, id string, lines []Line) (*models.Transaction, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	txn, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := accountIDs(lines)
	for _, e := range txn.Entries {
		ids = append(ids, e.AccountID)
	}
	unlock := m.lockAccounts(ids)
	defer unlock()

	accounts, err := m.loadAccounts(ctx, lines)
	if err != nil {
		return nil, err
	}

	deltas, err := m.reversalDeltas(ctx, txn.Entries)
	if err != nil {
		return nil, err
	}

	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	entries := make([]models.Entry, 0, len(lines))
	for _, line := range lines {
		totalDebits = totalDebits.Add(line.Debit)
		totalCredits = totalCredits.Add(line.Credit)

		entry := models.Entry{
			ID:            uuid.NewString(),
			TransactionID: txn.ID,
			AccountID:     line.AccountID,
			Debit:         line.Debit,
			Credit:        line.Credit,
			Description:   line.Description,
		}
		entries = append(entries, entry)
		deltas[line.AccountID] = deltas[line.AccountID].Add(balanceDelta(accounts[line.AccountID].Type, entry))
	}
	if !totalDebits.Equal(totalCredits) {
		return nil, fmt.Errorf("%w: debits %s, credits %s", ErrUnbalanced, totalDebits, totalCredits)
	}

	txn.Entries = entries
	txn.TotalAmount = totalDebits
	txn.UpdatedAt = time.Now()

	if err := m.store.ReplaceEntries(ctx, txn, deltas); err != nil {
		return nil, err
	}
	return txn, nil
}

// Get returns a transaction with its entries.
func (m *TransactionManager) Get(ctx context.Context, id string) (*models.Transaction, error) {
	txn, err := m.store.TransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return txn, nil
}

// List returns every transaction in number order.
func (m *TransactionManager) List(ctx context.Context) ([]models.Transaction, error) {
	return m.store.ListTransactions(ctx)
}

// ByDateRange returns the transactions dated within [start, end], inclusive.
func (m *TransactionManager) ByDateRange(ctx context.Context, start, end time.Time) ([]models.Transaction, error) {
	return m.store.TransactionsByDateRange(ctx, start, end)
}

// SearchByDescription returns transactions whose description contains the
// given substring, case-insensitively.
func (m *TransactionManager) SearchByDescription(ctx context.Context, description string) ([]models.Transaction, error) {
	return m.store.SearchTransactionsByDescription(ctx, description)
}

// Recent returns the newest transactions, most recent first.
func (m *TransactionManager) Recent(ctx context.Context, limit int) ([]models.Transaction, error) {
	return m.store.RecentTransactions(ctx, limit)
}

// balanceDelta returns the signed contribution of one entry to its account's
// running balance: a debit increases debit-normal accounts and decreases
// credit-normal accounts, and symmetrically for credits.
func balanceDelta(accountType models.AccountType, entry models.Entry) decimal.Decimal {
	if entry.IsDebit() {
		if accountType.IsDebitNormal() {
			return entry.Debit
		}
		return entry.Debit.Neg()
	}
	if accountType.IsCreditNormal() {
		return entry.Credit
	}
	return entry.Credit.Neg()
}

// reversalDeltas computes the exact inverse of the given entries' balance
// effects.
func (m *TransactionManager) reversalDeltas(ctx context.Context, entries []models.Entry) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal)
	for _, e := range entries {
		acct, err := m.store.AccountByID(ctx, e.AccountID)
		if err != nil {
			return nil, err
		}
		if acct == nil {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, e.AccountID)
		}
		deltas[e.AccountID] = deltas[e.AccountID].Add(balanceDelta(acct.Type, e).Neg())
	}
	return deltas, nil
}

// loadAccounts resolves every line's account, failing fast on unknown ids.
func (m *TransactionManager) loadAccounts(ctx context.Context, lines []Line) (map[string]*models.Account, error) {
	accounts := make(map[string]*models.Account)
	for i, line := range lines {
		if _, ok := accounts[line.AccountID]; ok {
			continue
		}
		acct, err := m.store.AccountByID(ctx, line.AccountID)
		if err != nil {
			return nil, err
		}
		if acct == nil {
			return nil, fmt.Errorf("%w: line %d references %s", ErrAccountNotFound, i+1, line.AccountID)
		}
		accounts[line.AccountID] = acct
	}
	return accounts, nil
}

func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: transaction has no lines", ErrInvalidEntry)
	}
	for i, line := range lines {
		hasDebit := line.Debit.IsPositive()
		hasCredit := line.Credit.IsPositive()
		switch {
		case line.Debit.IsNegative() || line.Credit.IsNegative():
			return fmt.Errorf("%w: line %d has a negative amount", ErrInvalidEntry, i+1)
		case hasDebit && hasCredit:
			return fmt.Errorf("%w: line %d has both debit and credit amounts", ErrInvalidEntry, i+1)
		case !hasDebit && !hasCredit:
			return fmt.Errorf("%w: line %d must have either a debit or a credit amount", ErrInvalidEntry, i+1)
		}
	}
	return nil
}

func accountIDs(lines []Line) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.AccountID)
	}
	return ids
}

// lockAccounts acquires the per-account mutexes for the given ids in sorted
// order and returns a function releasing them in reverse.
func (m *TransactionManager) lockAccounts(ids []string) func() {
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for id := range unique {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	locks := make([]*sync.Mutex, 0, len(sorted))
	for _, id := range sorted {
		mu := m.accountLock(id)
		mu.Lock()
		locks = append(locks, mu)
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func (m *TransactionManager) accountLock(id string) *sync.Mutex {
	m.mapMu.Lock()
	defer m.mapMu.Unlock()
	if _, ok := m.muMap[id]; !ok {
		m.muMap[id] = &sync.Mutex{}
	}
	return m.muMap[id]
}

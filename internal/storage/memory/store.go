// Package memory provides an in-memory LedgerStore used by tests and by
// callers that do not need durability. All multi-row operations run under a
// single lock, which gives the same all-or-nothing visibility as a database
// transaction.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage"
)

// Store is an in-memory implementation of storage.LedgerStore.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]models.Account
	transactions map[string]models.Transaction
	lastNumber   string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		accounts:     make(map[string]models.Account),
		transactions: make(map[string]models.Transaction),
	}
}

var _ storage.LedgerStore = (*Store)(nil)

func (s *Store) SaveAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = cloneAccount(*account)
	return nil
}

func (s *Store) UpdateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; !ok {
		return storage.ErrNotFound
	}
	s.accounts[account.ID] = cloneAccount(*account)
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return false, nil
	}
	delete(s.accounts, id)
	return true, nil
}

func (s *Store) SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	acct.Balance = balance
	acct.UpdatedAt = time.Now()
	s.accounts[id] = acct
	return nil
}

func (s *Store) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	out := cloneAccount(acct)
	return &out, nil
}

func (s *Store) AccountByCode(ctx context.Context, code string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acct := range s.accounts {
		if acct.Code == code {
			out := cloneAccount(acct)
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAccounts(func(models.Account) bool { return true }), nil
}

func (s *Store) AccountsByType(ctx context.Context, accountType models.AccountType) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAccounts(func(a models.Account) bool { return a.Type == accountType }), nil
}

func (s *Store) ActiveAccounts(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAccounts(func(a models.Account) bool { return a.Active }), nil
}

func (s *Store) SearchAccountsByName(ctx context.Context, name string) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(name)
	return s.filterAccounts(func(a models.Account) bool {
		return strings.Contains(strings.ToLower(a.Name), needle)
	}), nil
}

func (s *Store) CountAccounts(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}

func (s *Store) EntryCount(ctx context.Context, accountID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, txn := range s.transactions {
		for _, e := range txn.Entries {
			if e.AccountID == accountID {
				count++
			}
		}
	}
	return count, nil
}

func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction, deltas map[string]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range deltas {
		if _, ok := s.accounts[id]; !ok {
			return storage.ErrNotFound
		}
	}
	txn.Number = models.NextTransactionNumber(s.lastNumber)
	s.lastNumber = txn.Number
	s.applyDeltas(deltas)
	s.transactions[txn.ID] = cloneTransaction(*txn)
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string, deltas map[string]decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return false, nil
	}
	s.applyDeltas(deltas)
	delete(s.transactions, id)
	return true, nil
}

func (s *Store) ReplaceEntries(ctx context.Context, txn *models.Transaction, deltas map[string]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[txn.ID]; !ok {
		return storage.ErrNotFound
	}
	s.applyDeltas(deltas)
	s.transactions[txn.ID] = cloneTransaction(*txn)
	return nil
}

func (s *Store) UpdateTransactionHeader(ctx context.Context, txn *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.transactions[txn.ID]
	if !ok {
		return storage.ErrNotFound
	}
	stored.Date = txn.Date
	stored.Description = txn.Description
	stored.Reference = txn.Reference
	stored.UpdatedAt = txn.UpdatedAt
	s.transactions[txn.ID] = stored
	return nil
}

func (s *Store) TransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txn, ok := s.transactions[id]
	if !ok {
		return nil, nil
	}
	out := cloneTransaction(txn)
	return &out, nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterTransactions(func(models.Transaction) bool { return true }), nil
}

func (s *Store) TransactionsByDateRange(ctx context.Context, start, end time.Time) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterTransactions(func(t models.Transaction) bool {
		return inRange(t.Date, start, end)
	}), nil
}

func (s *Store) SearchTransactionsByDescription(ctx context.Context, description string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(description)
	return s.filterTransactions(func(t models.Transaction) bool {
		return strings.Contains(strings.ToLower(t.Description), needle)
	}), nil
}

func (s *Store) RecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.filterTransactions(func(models.Transaction) bool { return true })
	// filterTransactions sorts ascending by number; recent means the tail,
	// newest first.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].Number > all[j].Number
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) DebitCreditTotals(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	debit, credit := decimal.Zero, decimal.Zero
	for _, txn := range s.transactions {
		if !inRange(txn.Date, start, end) {
			continue
		}
		for _, e := range txn.Entries {
			if e.AccountID != accountID {
				continue
			}
			debit = debit.Add(e.Debit)
			credit = credit.Add(e.Credit)
		}
	}
	return debit, credit, nil
}

// applyDeltas adds each signed delta to its account balance. Callers hold mu.
func (s *Store) applyDeltas(deltas map[string]decimal.Decimal) {
	now := time.Now()
	for id, delta := range deltas {
		acct := s.accounts[id]
		acct.Balance = acct.Balance.Add(delta)
		acct.UpdatedAt = now
		s.accounts[id] = acct
	}
}

func (s *Store) filterAccounts(keep func(models.Account) bool) []models.Account {
	out := make([]models.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		if keep(acct) {
			out = append(out, cloneAccount(acct))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (s *Store) filterTransactions(keep func(models.Transaction) bool) []models.Transaction {
	out := make([]models.Transaction, 0, len(s.transactions))
	for _, txn := range s.transactions {
		if keep(txn) {
			out = append(out, cloneTransaction(txn))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func inRange(date, start, end time.Time) bool {
	if !start.IsZero() && date.Before(start) {
		return false
	}
	return !date.After(end)
}

func cloneAccount(a models.Account) models.Account {
	if a.ParentID != nil {
		parent := *a.ParentID
		a.ParentID = &parent
	}
	return a
}

func cloneTransaction(t models.Transaction) models.Transaction {
	entries := make([]models.Entry, len(t.Entries))
	copy(entries, t.Entries)
	t.Entries = entries
	return t
}

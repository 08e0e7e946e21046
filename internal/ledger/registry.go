// Package ledger implements the double-entry bookkeeping engine: the chart
// of accounts, the journal transaction manager, balance calculation and
// financial statement generation. All durable state lives behind the
// storage.LedgerStore interface; this package holds the accounting rules.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage"
)

// AccountRegistry owns the chart of accounts. It enforces unique account
// codes, the active/inactive lifecycle, and refuses to delete accounts with
// posted history.
type AccountRegistry struct {
	store storage.LedgerStore
}

// NewAccountRegistry creates a registry on the given store.
func NewAccountRegistry(store storage.LedgerStore) *AccountRegistry {
	return &AccountRegistry{store: store}
}

// CreateAccount creates a new account with a zero balance.
func (r *AccountRegistry) CreateAccount(ctx context.Context, code, name string, accountType models.AccountType, description string) (*models.Account, error) {
	if err := validateAccountFields(code, name, accountType); err != nil {
		return nil, err
	}

	existing, err := r.store.AccountByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}

	now := time.Now()
	account := &models.Account{
		ID:          uuid.NewString(),
		Code:        code,
		Name:        name,
		Type:        accountType,
		Balance:     decimal.Zero,
		Description: description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.store.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateAccount amends an account's code, name, type and description. A
// changed code is re-checked for uniqueness.
func (r *AccountRegistry) UpdateAccount(ctx context.Context, id, code, name string, accountType models.AccountType, description string) (*models.Account, error) {
	if err := validateAccountFields(code, name, accountType); err != nil {
		return nil, err
	}

	account, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if account.Code != code {
		existing, err := r.store.AccountByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
		}
	}

	account.Code = code
	account.Name = name
	account.Type = accountType
	account.Description = description
	account.UpdatedAt = time.Now()

	if err := r.store.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes an account without posted history. It returns false
// when the id does not exist and ErrAccountHasTransactions when entries
// reference the account.
func (r *AccountRegistry) DeleteAccount(ctx context.Context, id string) (bool, error) {
	account, err := r.store.AccountByID(ctx, id)
	if err != nil {
		return false, err
	}
	if account == nil {
		return false, nil
	}

	count, err := r.store.EntryCount(ctx, id)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, ErrAccountHasTransactions
	}

	return r.store.DeleteAccount(ctx, id)
}

// SetBalance overwrites an account's running balance. It exists for the
// transaction manager's post and reversal paths and is not part of the
// external mutation surface.
func (r *AccountRegistry) SetBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	err := r.store.SetAccountBalance(ctx, id, balance)
	if err == storage.ErrNotFound {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return err
}

// ToggleActive flips the account's active flag.
func (r *AccountRegistry) ToggleActive(ctx context.Context, id string) (*models.Account, error) {
	account, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account.Active = !account.Active
	account.UpdatedAt = time.Now()
	if err := r.store.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// FindByID returns the account with the given id.
func (r *AccountRegistry) FindByID(ctx context.Context, id string) (*models.Account, error) {
	account, err := r.store.AccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return account, nil
}

// FindByCode returns the account with the given code.
func (r *AccountRegistry) FindByCode(ctx context.Context, code string) (*models.Account, error) {
	account, err := r.store.AccountByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, code)
	}
	return account, nil
}

// ListAll returns every account ordered by code.
func (r *AccountRegistry) ListAll(ctx context.Context) ([]models.Account, error) {
	return r.store.ListAccounts(ctx)
}

// ListByType returns the accounts of one type ordered by code.
func (r *AccountRegistry) ListByType(ctx context.Context, accountType models.AccountType) ([]models.Account, error) {
	return r.store.AccountsByType(ctx, accountType)
}

// ListActive returns active accounts ordered by code.
func (r *AccountRegistry) ListActive(ctx context.Context) ([]models.Account, error) {
	return r.store.ActiveAccounts(ctx)
}

// SearchByName returns accounts whose name contains the given substring,
// case-insensitively.
func (r *AccountRegistry) SearchByName(ctx context.Context, name string) ([]models.Account, error) {
	return r.store.SearchAccountsByName(ctx, name)
}

func validateAccountFields(code, name string, accountType models.AccountType) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: code cannot be blank", ErrInvalidAccount)
	}
	if len(code) > models.MaxAccountCodeLen {
		return fmt.Errorf("%w: code cannot exceed %d characters", ErrInvalidAccount, models.MaxAccountCodeLen)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be blank", ErrInvalidAccount)
	}
	if len(name) > models.MaxAccountNameLen {
		return fmt.Errorf("%w: name cannot exceed %d characters", ErrInvalidAccount, models.MaxAccountNameLen)
	}
	if !accountType.Valid() {
		return fmt.Errorf("%w: unknown account type %q", ErrInvalidAccount, accountType)
	}
	return nil
}

// Package postgres implements storage.LedgerStore on top of PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage"
)

// Schema defines the ledger tables. Amounts use NUMERIC for exact decimals.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    parent_id TEXT,
    balance NUMERIC(20,4) NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_type ON accounts(type);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    number TEXT NOT NULL UNIQUE,
    date DATE NOT NULL,
    description TEXT NOT NULL,
    reference TEXT NOT NULL DEFAULT '',
    total_amount NUMERIC(20,4) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);

-- Last issued transaction number; outlives deleted transactions so
-- numbers are never reissued
CREATE TABLE IF NOT EXISTS transaction_numbers (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    last_number TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transaction_entries (
    id TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    debit NUMERIC(20,4) NOT NULL DEFAULT 0,
    credit NUMERIC(20,4) NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_account ON transaction_entries(account_id);
`

// Store is a PostgreSQL-backed implementation of storage.LedgerStore.
type Store struct {
	db *sql.DB
}

// New creates a Store on an open database handle. The caller owns the
// handle's lifecycle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// InitializeSchema creates the ledger tables if they don't exist.
func (s *Store) InitializeSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

var _ storage.LedgerStore = (*Store)(nil)

const accountColumns = `id, code, name, type, parent_id, balance, description, active, created_at, updated_at`

func (s *Store) SaveAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Code,
		account.Name,
		string(account.Type),
		account.ParentID,
		account.Balance,
		account.Description,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (s *Store) UpdateAccount(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET code = $1, name = $2, type = $3, parent_id = $4, balance = $5,
		    description = $6, active = $7, updated_at = $8
		WHERE id = $9
	`
	res, err := s.db.ExecContext(ctx, query,
		account.Code,
		account.Name,
		string(account.Type),
		account.ParentID,
		account.Balance,
		account.Description,
		account.Active,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return requireRows(res)
}

func (s *Store) DeleteAccount(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, updated_at = $2 WHERE id = $3`,
		balance, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set account balance: %w", err)
	}
	return requireRows(res)
}

func (s *Store) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccountRow(row)
}

func (s *Store) AccountByCode(ctx context.Context, code string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = $1`, code)
	return scanAccountRow(row)
}

func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
}

func (s *Store) AccountsByType(ctx context.Context, accountType models.AccountType) ([]models.Account, error) {
	return s.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE type = $1 ORDER BY code`,
		string(accountType),
	)
}

func (s *Store) ActiveAccounts(ctx context.Context) ([]models.Account, error) {
	return s.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts WHERE active ORDER BY code`)
}

func (s *Store) SearchAccountsByName(ctx context.Context, name string) ([]models.Account, error) {
	return s.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE name ILIKE $1 ORDER BY code`,
		"%"+name+"%",
	)
}

func (s *Store) CountAccounts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

func (s *Store) EntryCount(ctx context.Context, accountID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transaction_entries WHERE account_id = $1`, accountID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction, deltas map[string]decimal.Decimal) error {
	return s.transact(ctx, func(tx *sql.Tx) error {
		// The last issued number is tracked separately from the surviving
		// transaction rows so deleted numbers are never reissued. The row
		// lock serializes concurrent assignment.
		var last sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT last_number FROM transaction_numbers WHERE id = 1 FOR UPDATE`,
		).Scan(&last)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to read last transaction number: %w", err)
		}
		txn.Number = models.NextTransactionNumber(last.String)

		_, err = tx.ExecContext(ctx, `
			INSERT INTO transaction_numbers (id, last_number) VALUES (1, $1)
			ON CONFLICT (id) DO UPDATE SET last_number = EXCLUDED.last_number`,
			txn.Number,
		)
		if err != nil {
			return fmt.Errorf("failed to record transaction number: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (id, number, date, description, reference, total_amount, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			txn.ID,
			txn.Number,
			txn.Date.Format(models.DateLayout),
			txn.Description,
			txn.Reference,
			txn.TotalAmount,
			txn.CreatedAt,
			txn.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}

		if err := insertEntries(ctx, tx, txn.Entries); err != nil {
			return err
		}
		return applyDeltas(ctx, tx, deltas)
	})
}

func (s *Store) DeleteTransaction(ctx context.Context, id string, deltas map[string]decimal.Decimal) (bool, error) {
	found := false
	err := s.transact(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM transactions WHERE id = $1`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up transaction: %w", err)
		}
		found = true

		if err := applyDeltas(ctx, tx, deltas); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_entries WHERE transaction_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return nil
	})
	return found, err
}

func (s *Store) ReplaceEntries(ctx context.Context, txn *models.Transaction, deltas map[string]decimal.Decimal) error {
	return s.transact(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE transactions SET total_amount = $1, updated_at = $2 WHERE id = $3`,
			txn.TotalAmount, txn.UpdatedAt, txn.ID)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		if err := requireRows(res); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_entries WHERE transaction_id = $1`, txn.ID); err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}
		if err := insertEntries(ctx, tx, txn.Entries); err != nil {
			return err
		}
		return applyDeltas(ctx, tx, deltas)
	})
}

func (s *Store) UpdateTransactionHeader(ctx context.Context, txn *models.Transaction) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET date = $1, description = $2, reference = $3, updated_at = $4
		WHERE id = $5`,
		txn.Date.Format(models.DateLayout),
		txn.Description,
		txn.Reference,
		txn.UpdatedAt,
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireRows(res)
}

const transactionColumns = `id, number, date, description, reference, total_amount, created_at, updated_at`

func (s *Store) TransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	txns, err := s.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, nil
	}
	return &txns[0], nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY number`)
}

func (s *Store) TransactionsByDateRange(ctx context.Context, start, end time.Time) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE date >= $1 AND date <= $2
		ORDER BY number`,
		start.Format(models.DateLayout), end.Format(models.DateLayout),
	)
}

func (s *Store) SearchTransactionsByDescription(ctx context.Context, description string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE description ILIKE $1
		ORDER BY number`,
		"%"+description+"%",
	)
}

func (s *Store) RecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		ORDER BY date DESC, number DESC
		LIMIT $1`,
		limit,
	)
}

func (s *Store) DebitCreditTotals(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(e.debit), 0), COALESCE(SUM(e.credit), 0)
		FROM transaction_entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE e.account_id = $1 AND t.date <= $2
	`
	args := []interface{}{accountID, end.Format(models.DateLayout)}
	if !start.IsZero() {
		query += ` AND t.date >= $3`
		args = append(args, start.Format(models.DateLayout))
	}

	var debit, credit decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&debit, &credit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to query entry totals: %w", err)
	}
	return debit, credit, nil
}

// requireRows converts a zero-row update into storage.ErrNotFound.
func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) transact(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// applyDeltas adds each signed delta to its account balance, locking the row
// so concurrent postings on the same account serialize.
func applyDeltas(ctx context.Context, tx *sql.Tx, deltas map[string]decimal.Decimal) error {
	now := time.Now()
	for id, delta := range deltas {
		var balance decimal.Decimal
		err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&balance)
		if err == sql.ErrNoRows {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE accounts SET balance = $1, updated_at = $2 WHERE id = $3`,
			balance.Add(delta), now, id)
		if err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, entries []models.Entry) error {
	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transaction_entries (id, transaction_id, account_id, debit, credit, description)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.TransactionID, e.AccountID, e.Debit, e.Credit, e.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
	}
	return nil
}

func (s *Store) queryAccounts(ctx context.Context, query string, args ...interface{}) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	return accounts, rows.Err()
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range txns {
		entries, err := s.entriesForTransaction(ctx, txns[i].ID)
		if err != nil {
			return nil, err
		}
		txns[i].Entries = entries
	}
	return txns, nil
}

func (s *Store) entriesForTransaction(ctx context.Context, txnID string) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, account_id, debit, credit, description
		FROM transaction_entries
		WHERE transaction_id = $1
		ORDER BY id`,
		txnID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &e.Debit, &e.Credit, &e.Description); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var acct models.Account
	var accountType string
	err := row.Scan(
		&acct.ID,
		&acct.Code,
		&acct.Name,
		&accountType,
		&acct.ParentID,
		&acct.Balance,
		&acct.Description,
		&acct.Active,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	acct.Type = models.AccountType(accountType)
	return &acct, nil
}

func scanAccountRow(row *sql.Row) (*models.Account, error) {
	acct, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acct, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var txn models.Transaction
	var date time.Time
	err := row.Scan(
		&txn.ID,
		&txn.Number,
		&date,
		&txn.Description,
		&txn.Reference,
		&txn.TotalAmount,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	txn.Date = date
	return &txn, nil
}

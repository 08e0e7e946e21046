// Package sqlite implements storage.LedgerStore on top of a SQLite database.
// Multi-row operations (posting, deletion, entry replacement) run inside a
// single SQL transaction so the header, entries and balance updates commit
// or roll back together.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/storage"
	"github.com/shunichi-ikebuchi/bookkeeping/pkg/db"
)

// Store is a SQLite-backed implementation of storage.LedgerStore.
type Store struct {
	conn *db.Connection
}

// New creates a Store on an open connection. The caller owns the
// connection's lifecycle.
func New(conn *db.Connection) *Store {
	return &Store{conn: conn}
}

var _ storage.LedgerStore = (*Store)(nil)

const accountColumns = `id, code, name, type, parent_id, balance, description, active, created_at, updated_at`

func (s *Store) SaveAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.conn.Exec(query,
		account.ID,
		account.Code,
		account.Name,
		string(account.Type),
		account.ParentID,
		account.Balance.String(),
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
		SET code = ?, name = ?, type = ?, parent_id = ?, balance = ?,
		    description = ?, active = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.conn.Exec(query,
		account.Code,
		account.Name,
		string(account.Type),
		account.ParentID,
		account.Balance.String(),
		account.Description,
		account.Active,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) (bool, error) {
	res, err := s.conn.Exec(`DELETE FROM accounts WHERE id = ?`, id)
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
	res, err := s.conn.Exec(
		`UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`,
		balance.String(), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set account balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	row := s.conn.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccountRow(row)
}

func (s *Store) AccountByCode(ctx context.Context, code string) (*models.Account, error) {
	row := s.conn.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE code = ?`, code)
	return scanAccountRow(row)
}

func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.queryAccounts(`SELECT ` + accountColumns + ` FROM accounts ORDER BY code`)
}

func (s *Store) AccountsByType(ctx context.Context, accountType models.AccountType) ([]models.Account, error) {
	return s.queryAccounts(
		`SELECT `+accountColumns+` FROM accounts WHERE type = ? ORDER BY code`,
		string(accountType),
	)
}

func (s *Store) ActiveAccounts(ctx context.Context) ([]models.Account, error) {
	return s.queryAccounts(`SELECT ` + accountColumns + ` FROM accounts WHERE active = 1 ORDER BY code`)
}

func (s *Store) SearchAccountsByName(ctx context.Context, name string) ([]models.Account, error) {
	return s.queryAccounts(
		`SELECT `+accountColumns+` FROM accounts WHERE name LIKE ? COLLATE NOCASE ORDER BY code`,
		"%"+name+"%",
	)
}

func (s *Store) CountAccounts(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

func (s *Store) EntryCount(ctx context.Context, accountID string) (int, error) {
	var count int
	err := s.conn.QueryRow(
		`SELECT COUNT(*) FROM transaction_entries WHERE account_id = ?`, accountID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction, deltas map[string]decimal.Decimal) error {
	return s.conn.Transaction(func(tx *sql.Tx) error {
		// The last issued number is tracked separately from the surviving
		// transaction rows so deleted numbers are never reissued.
		var last sql.NullString
		err := tx.QueryRow(`SELECT last_number FROM transaction_numbers WHERE id = 1`).Scan(&last)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to read last transaction number: %w", err)
		}
		txn.Number = models.NextTransactionNumber(last.String)

		_, err = tx.Exec(`
			INSERT INTO transaction_numbers (id, last_number) VALUES (1, ?)
			ON CONFLICT(id) DO UPDATE SET last_number = excluded.last_number`,
			txn.Number,
		)
		if err != nil {
			return fmt.Errorf("failed to record transaction number: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO transactions (id, number, date, description, reference, total_amount, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			txn.ID,
			txn.Number,
			txn.Date.Format(models.DateLayout),
			txn.Description,
			txn.Reference,
			txn.TotalAmount.String(),
			txn.CreatedAt,
			txn.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}

		if err := insertEntries(tx, txn.Entries); err != nil {
			return err
		}
		return applyDeltas(tx, deltas)
	})
}

func (s *Store) DeleteTransaction(ctx context.Context, id string, deltas map[string]decimal.Decimal) (bool, error) {
	found := false
	err := s.conn.Transaction(func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(`SELECT 1 FROM transactions WHERE id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up transaction: %w", err)
		}
		found = true

		if err := applyDeltas(tx, deltas); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM transaction_entries WHERE transaction_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return nil
	})
	return found, err
}

func (s *Store) ReplaceEntries(ctx context.Context, txn *models.Transaction, deltas map[string]decimal.Decimal) error {
	return s.conn.Transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE transactions SET total_amount = ?, updated_at = ? WHERE id = ?`,
			txn.TotalAmount.String(), txn.UpdatedAt, txn.ID)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return storage.ErrNotFound
		}

		if _, err := tx.Exec(`DELETE FROM transaction_entries WHERE transaction_id = ?`, txn.ID); err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}
		if err := insertEntries(tx, txn.Entries); err != nil {
			return err
		}
		return applyDeltas(tx, deltas)
	})
}

func (s *Store) UpdateTransactionHeader(ctx context.Context, txn *models.Transaction) error {
	res, err := s.conn.Exec(`
		UPDATE transactions SET date = ?, description = ?, reference = ?, updated_at = ?
		WHERE id = ?`,
		txn.Date.Format(models.DateLayout),
		txn.Description,
		txn.Reference,
		txn.UpdatedAt,
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const transactionColumns = `id, number, date, description, reference, total_amount, created_at, updated_at`

func (s *Store) TransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	txns, err := s.queryTransactions(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, nil
	}
	return &txns[0], nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.queryTransactions(`SELECT ` + transactionColumns + ` FROM transactions ORDER BY number`)
}

func (s *Store) TransactionsByDateRange(ctx context.Context, start, end time.Time) ([]models.Transaction, error) {
	return s.queryTransactions(`
		SELECT `+transactionColumns+` FROM transactions
		WHERE date >= ? AND date <= ?
		ORDER BY number`,
		start.Format(models.DateLayout), end.Format(models.DateLayout),
	)
}

func (s *Store) SearchTransactionsByDescription(ctx context.Context, description string) ([]models.Transaction, error) {
	return s.queryTransactions(`
		SELECT `+transactionColumns+` FROM transactions
		WHERE description LIKE ? COLLATE NOCASE
		ORDER BY number`,
		"%"+description+"%",
	)
}

func (s *Store) RecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return s.queryTransactions(`
		SELECT `+transactionColumns+` FROM transactions
		ORDER BY date DESC, number DESC
		LIMIT ?`,
		limit,
	)
}

func (s *Store) DebitCreditTotals(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	// Sums are computed in Go: amounts are stored as decimal text and SQL
	// SUM would coerce them to floats.
	query := `
		SELECT e.debit, e.credit
		FROM transaction_entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE e.account_id = ? AND t.date <= ?
	`
	args := []interface{}{accountID, end.Format(models.DateLayout)}
	if !start.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, start.Format(models.DateLayout))
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to query entry totals: %w", err)
	}
	defer rows.Close()

	debit, credit := decimal.Zero, decimal.Zero
	for rows.Next() {
		var d, c string
		if err := rows.Scan(&d, &c); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		dd, err := decimal.NewFromString(d)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("invalid debit amount %q: %w", d, err)
		}
		cc, err := decimal.NewFromString(c)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("invalid credit amount %q: %w", c, err)
		}
		debit = debit.Add(dd)
		credit = credit.Add(cc)
	}
	return debit, credit, rows.Err()
}

// applyDeltas adds each signed delta to its account balance within tx.
func applyDeltas(tx *sql.Tx, deltas map[string]decimal.Decimal) error {
	now := time.Now()
	for id, delta := range deltas {
		var raw string
		err := tx.QueryRow(`SELECT balance FROM accounts WHERE id = ?`, id).Scan(&raw)
		if err == sql.ErrNoRows {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		balance, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid balance %q: %w", raw, err)
		}
		_, err = tx.Exec(`UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`,
			balance.Add(delta).String(), now, id)
		if err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}
	}
	return nil
}

func insertEntries(tx *sql.Tx, entries []models.Entry) error {
	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO transaction_entries (id, transaction_id, account_id, debit, credit, description)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.TransactionID, e.AccountID, e.Debit.String(), e.Credit.String(), e.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
	}
	return nil
}

func (s *Store) queryAccounts(query string, args ...interface{}) ([]models.Account, error) {
	rows, err := s.conn.Query(query, args...)
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

func (s *Store) queryTransactions(query string, args ...interface{}) ([]models.Transaction, error) {
	rows, err := s.conn.Query(query, args...)
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
		entries, err := s.entriesForTransaction(txns[i].ID)
		if err != nil {
			return nil, err
		}
		txns[i].Entries = entries
	}
	return txns, nil
}

func (s *Store) entriesForTransaction(txnID string) ([]models.Entry, error) {
	rows, err := s.conn.Query(`
		SELECT id, transaction_id, account_id, debit, credit, description
		FROM transaction_entries
		WHERE transaction_id = ?
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
		var debit, credit string
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &debit, &credit, &e.Description); err != nil {
			return nil, err
		}
		if e.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("invalid debit amount %q: %w", debit, err)
		}
		if e.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("invalid credit amount %q: %w", credit, err)
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
	var accountType, balance string
	err := row.Scan(
		&acct.ID,
		&acct.Code,
		&acct.Name,
		&accountType,
		&acct.ParentID,
		&balance,
		&acct.Description,
		&acct.Active,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	acct.Type = models.AccountType(accountType)
	if acct.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", balance, err)
	}
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
	var date, total string
	err := row.Scan(
		&txn.ID,
		&txn.Number,
		&date,
		&txn.Description,
		&txn.Reference,
		&total,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if txn.Date, err = time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid transaction date %q: %w", date, err)
	}
	if txn.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("invalid total amount %q: %w", total, err)
	}
	return &txn, nil
}

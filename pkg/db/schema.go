package db

// Schema defines the SQL statements to create the ledger tables.
// Amounts are stored as exact decimal strings, dates as YYYY-MM-DD text.
const Schema = `
-- Chart of accounts
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    parent_id TEXT,
    balance TEXT NOT NULL DEFAULT '0',
    description TEXT NOT NULL DEFAULT '',
    active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_type ON accounts(type);

-- Journal headers
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    number TEXT NOT NULL UNIQUE,
    date TEXT NOT NULL,                -- YYYY-MM-DD
    description TEXT NOT NULL,
    reference TEXT NOT NULL DEFAULT '',
    total_amount TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);

-- Last issued transaction number; outlives deleted transactions so
-- numbers are never reissued
CREATE TABLE IF NOT EXISTS transaction_numbers (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    last_number TEXT NOT NULL
);

-- Journal lines; exactly one of debit/credit is positive
CREATE TABLE IF NOT EXISTS transaction_entries (
    id TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    debit TEXT NOT NULL DEFAULT '0',
    credit TEXT NOT NULL DEFAULT '0',
    description TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_transaction ON transaction_entries(transaction_id);
CREATE INDEX IF NOT EXISTS idx_entries_account ON transaction_entries(account_id);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}

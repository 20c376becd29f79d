package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema creates the ledger tables. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS branches (
    id         BIGSERIAL PRIMARY KEY,
    code       VARCHAR(10) NOT NULL UNIQUE,
    name       VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- users are owned by the identity provider; the ledger only reads role and branch
CREATE TABLE IF NOT EXISTS users (
    id         BIGSERIAL PRIMARY KEY,
    name       VARCHAR(255) NOT NULL,
    role       VARCHAR(20) NOT NULL DEFAULT 'branch_manager',
    branch_id  BIGINT REFERENCES branches(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_branch ON users(branch_id);

CREATE TABLE IF NOT EXISTS accounts (
    id              BIGSERIAL PRIMARY KEY,
    code            VARCHAR(20) NOT NULL UNIQUE,
    name            VARCHAR(255) NOT NULL,
    nature          VARCHAR(20) NOT NULL
                    CHECK (nature IN ('asset', 'liability', 'equity', 'income', 'revenue', 'expense')),
    category        VARCHAR(30) NOT NULL DEFAULT '',
    description     TEXT NOT NULL DEFAULT '',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    opening_balance NUMERIC(14,2) NOT NULL DEFAULT 0,
    current_balance NUMERIC(14,2) NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transactions (
    id           BIGSERIAL PRIMARY KEY,
    voucher_no   VARCHAR(50) NOT NULL UNIQUE,
    date         DATE NOT NULL,
    type         VARCHAR(20) NOT NULL CHECK (type IN ('cash', 'bank', 'contra', 'journal')),
    branch_id    BIGINT NOT NULL REFERENCES branches(id),
    narration    TEXT NOT NULL DEFAULT '',
    notes        TEXT NOT NULL DEFAULT '',
    bank_name    VARCHAR(255) NOT NULL DEFAULT '',
    cheque_no    VARCHAR(50) NOT NULL DEFAULT '',
    cheque_date  DATE,
    created_by   BIGINT NOT NULL,
    total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
    status       VARCHAR(20) NOT NULL DEFAULT 'pending'
                 CHECK (status IN ('pending', 'approved', 'cancelled')),
    approved_by  BIGINT,
    approved_at  TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_branch ON transactions(branch_id);
CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id             BIGSERIAL PRIMARY KEY,
    transaction_id BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    account_id     BIGINT NOT NULL REFERENCES accounts(id),
    branch_id      BIGINT NOT NULL REFERENCES branches(id),
    entry_type     VARCHAR(6) NOT NULL CHECK (entry_type IN ('debit', 'credit')),
    amount         NUMERIC(14,2) NOT NULL CHECK (amount > 0),
    description    VARCHAR(255) NOT NULL DEFAULT '',
    notes          TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_transaction ON ledger_entries(transaction_id, entry_type);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_account ON ledger_entries(account_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_branch ON ledger_entries(branch_id);

CREATE TABLE IF NOT EXISTS voucher_sequences (
    id          BIGSERIAL PRIMARY KEY,
    branch_id   BIGINT NOT NULL REFERENCES branches(id),
    date        DATE NOT NULL,
    last_number INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (branch_id, date)
);
`

// Migrate applies Schema
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Package store defines the ledger store used by the posting core.
package store

import (
	"context"
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/branchledger/cashbook/internal/models"
)

// Store is the durable record keeper for the ledger
type Store interface {
	// WithinTx runs fn as one atomic unit: every write made through tx is
	// committed when fn returns nil and discarded otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Reader

	// StatementEntries streams the postings of an account ordered by
	// transaction date then entry id. Each range re-reads the store.
	StatementEntries(ctx context.Context, accountID int64, filter models.StatementFilter) iter.Seq2[models.StatementEntry, error]
}

// Reader holds the lookups shared by the store and its transactions
type Reader interface {
	GetBranch(ctx context.Context, id int64) (*models.Branch, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	// GetTransaction returns the header with its entries and their accounts
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
}

// Tx is the write surface available inside an atomic unit
type Tx interface {
	Reader

	// NextVoucherNumber creates the (branch, day) counter row if absent and
	// increments it by one in a single step, returning the new value.
	NextVoucherNumber(ctx context.Context, branchID int64, day time.Time) (int, error)

	CreateBranch(ctx context.Context, branch *models.Branch) error
	CreateAccount(ctx context.Context, account *models.Account) error
	// LockAccount reads the account and holds it exclusively until the unit ends
	LockAccount(ctx context.Context, id int64) (*models.Account, error)
	UpdateOpeningBalance(ctx context.Context, id int64, opening decimal.Decimal) error
	UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	DeleteAccount(ctx context.Context, id int64) error
	// SumPostings totals the debit and credit entries of an account
	SumPostings(ctx context.Context, accountID int64) (debits, credits decimal.Decimal, err error)
	CountPostings(ctx context.Context, accountID int64) (int, error)

	InsertTransaction(ctx context.Context, txn *models.Transaction) error
	InsertEntry(ctx context.Context, entry *models.LedgerEntry) error
	// LockTransaction reads the header with its entries and holds it exclusively
	LockTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error
	DeleteEntries(ctx context.Context, transactionID int64) error
	DeleteTransaction(ctx context.Context, id int64) error
}

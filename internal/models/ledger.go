package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the side of a posting
type EntryType string

const (
	EntryDebit  EntryType = "debit"
	EntryCredit EntryType = "credit"
)

// BalanceTolerance is the accepted difference between debit and credit totals
var BalanceTolerance = decimal.New(1, -2)

// MaxAmount is the exclusive upper bound of money columns (NUMERIC(14,2))
var MaxAmount = decimal.New(1, 12)

// WithinMaxAmount reports whether |d| fits the money columns
func WithinMaxAmount(d decimal.Decimal) bool {
	return d.Abs().LessThan(MaxAmount)
}

// LedgerEntry is one posting against an account
type LedgerEntry struct {
	ID            int64           `json:"id" db:"id"`
	TransactionID int64           `json:"transaction_id" db:"transaction_id"`
	AccountID     int64           `json:"account_id" db:"account_id"`
	BranchID      int64           `json:"branch_id" db:"branch_id"`
	EntryType     EntryType       `json:"entry_type" db:"entry_type"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Description   string          `json:"description,omitempty" db:"description"`
	Notes         string          `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	Account       *Account        `json:"account,omitempty"`
}

// Debit returns the amount when the entry is a debit, nil otherwise
func (e LedgerEntry) Debit() *decimal.Decimal {
	if e.EntryType != EntryDebit {
		return nil
	}
	amount := e.Amount
	return &amount
}

// Credit returns the amount when the entry is a credit, nil otherwise
func (e LedgerEntry) Credit() *decimal.Decimal {
	if e.EntryType != EntryCredit {
		return nil
	}
	amount := e.Amount
	return &amount
}

// Totals sums debit and credit entries separately
func Totals(entries []LedgerEntry) (debits, credits decimal.Decimal) {
	for _, e := range entries {
		switch e.EntryType {
		case EntryDebit:
			debits = debits.Add(e.Amount)
		case EntryCredit:
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}

// IsBalanced reports whether debits equal credits within BalanceTolerance
func IsBalanced(entries []LedgerEntry) bool {
	debits, credits := Totals(entries)
	return debits.Sub(credits).Abs().LessThan(BalanceTolerance)
}

// VoucherSequence is the per branch-day voucher counter
type VoucherSequence struct {
	BranchID   int64     `json:"branch_id" db:"branch_id"`
	Date       time.Time `json:"date" db:"date"`
	LastNumber int       `json:"last_number" db:"last_number"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementFilter narrows an account statement. Zero values mean "no filter".
type StatementFilter struct {
	BranchID *int64
	DateFrom *time.Time
	DateTo   *time.Time
}

// Scoped reports whether the opening balance does not apply to the statement
func (f StatementFilter) Scoped() bool {
	return f.BranchID != nil || f.DateFrom != nil
}

// StatementEntry is a posting joined with its transaction header
type StatementEntry struct {
	EntryID       int64
	TransactionID int64
	Date          time.Time
	VoucherNo     string
	Narration     string
	Type          TransactionType
	BranchID      int64
	BranchCode    string
	EntryType     EntryType
	Amount        decimal.Decimal
}

// StatementRow is one line of an account statement with its running balance
type StatementRow struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	Date          string          `json:"date"`
	VoucherNo     string          `json:"voucher_no"`
	Narration     string          `json:"narration,omitempty"`
	Branch        string          `json:"branch"`
	Type          TransactionType `json:"type"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
}

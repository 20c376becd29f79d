package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used on the wire and in voucher numbers
const DateLayout = "2006-01-02"

// TransactionType is the cashbook kind of a transaction
type TransactionType string

const (
	TypeCash    TransactionType = "cash"
	TypeBank    TransactionType = "bank"
	TypeContra  TransactionType = "contra"
	TypeJournal TransactionType = "journal"
)

// TransactionStatus is the lifecycle state of a transaction
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusApproved  TransactionStatus = "approved"
	StatusCancelled TransactionStatus = "cancelled"
)

// Transaction is the header of one money-movement event
type Transaction struct {
	ID          int64             `json:"id" db:"id"`
	VoucherNo   string            `json:"voucher_no" db:"voucher_no"`
	Date        time.Time         `json:"date" db:"date"`
	Type        TransactionType   `json:"type" db:"type"`
	BranchID    int64             `json:"branch_id" db:"branch_id"`
	Narration   string            `json:"narration,omitempty" db:"narration"`
	Notes       string            `json:"notes,omitempty" db:"notes"`
	BankName    string            `json:"bank_name,omitempty" db:"bank_name"`
	ChequeNo    string            `json:"cheque_no,omitempty" db:"cheque_no"`
	ChequeDate  *time.Time        `json:"cheque_date,omitempty" db:"cheque_date"`
	CreatedBy   int64             `json:"created_by" db:"created_by"`
	TotalAmount decimal.Decimal   `json:"total_amount" db:"total_amount"`
	Status      TransactionStatus `json:"status" db:"status"`
	ApprovedBy  *int64            `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt  *time.Time        `json:"approved_at,omitempty" db:"approved_at"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
	Entries     []LedgerEntry     `json:"entries,omitempty"`
}

// AccountIDs returns the distinct accounts touched by the entries, in entry order
func (t *Transaction) AccountIDs() []int64 {
	seen := make(map[int64]struct{}, len(t.Entries))
	ids := make([]int64, 0, len(t.Entries))
	for _, e := range t.Entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		ids = append(ids, e.AccountID)
	}
	return ids
}

// CreateTransactionRequest is a two-account transfer
type CreateTransactionRequest struct {
	Date          string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	BranchID      *int64          `json:"branch_id,omitempty" validate:"omitempty,gt=0"`
	Type          TransactionType `json:"type,omitempty" validate:"omitempty,oneof=cash bank contra journal"`
	FromAccountID int64           `json:"from_account_id" validate:"required,gt=0"`
	ToAccountID   int64           `json:"to_account_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount"`
	Narration     string          `json:"narration,omitempty"`
	VoucherNo     string          `json:"voucher_no,omitempty" validate:"omitempty,max=50"`
	BankName      string          `json:"bank_name,omitempty" validate:"omitempty,max=255"`
	ChequeNo      string          `json:"cheque_no,omitempty" validate:"omitempty,max=50"`
	ChequeDate    string          `json:"cheque_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// JournalEntryInput is one caller-supplied posting of a journal
type JournalEntryInput struct {
	AccountID   int64           `json:"account_id" validate:"required,gt=0"`
	EntryType   EntryType       `json:"entry_type" validate:"required,oneof=debit credit"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=255"`
	Notes       string          `json:"notes,omitempty"`
}

// CreateJournalRequest is the n-line variant: the entries must already balance
type CreateJournalRequest struct {
	TransactionDate string              `json:"transaction_date" validate:"required,datetime=2006-01-02"`
	BranchID        *int64              `json:"branch_id,omitempty" validate:"omitempty,gt=0"`
	Description     string              `json:"description" validate:"required,max=255"`
	Notes           string              `json:"notes,omitempty"`
	Entries         []JournalEntryInput `json:"entries" validate:"required,min=2,dive"`
}

// UpdateTransactionRequest edits a pending transaction. Nil fields are left as is.
type UpdateTransactionRequest struct {
	Date      *string             `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Narration *string             `json:"narration,omitempty" validate:"omitempty,max=255"`
	Notes     *string             `json:"notes,omitempty"`
	Entries   []JournalEntryInput `json:"entries,omitempty" validate:"omitempty,min=2,dive"`
}

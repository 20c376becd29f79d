package services

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store"
)

// StatementService builds account statements with a running balance
type StatementService struct {
	store  store.Store
	logger *logrus.Logger
}

func NewStatementService(st store.Store, logger *logrus.Logger) *StatementService {
	return &StatementService{store: st, logger: logger}
}

// Statement is a read-only view over an account's postings
type Statement struct {
	Account        *models.Account
	Filter         models.StatementFilter
	OpeningBalance decimal.Decimal

	store store.Store
	empty bool
}

// Statement prepares the statement of accountID. Branch managers only see
// their own branch, and nothing when they have no branch.
func (s *StatementService) Statement(ctx context.Context, accountID int64, filter models.StatementFilter, actor models.User) (*Statement, error) {
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return nil, apperrors.NewFieldValidationError("validation failed", map[string]string{
			"date_from": "date_from must not be after date_to",
		})
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, storageError("failed to get account", err)
	}

	st := &Statement{Account: account, Filter: filter, store: s.store}
	if actor.IsBranchScoped() {
		if actor.BranchID == nil {
			st.empty = true
		} else {
			branchID := *actor.BranchID
			st.Filter.BranchID = &branchID
		}
	}
	if !st.Filter.Scoped() {
		st.OpeningBalance = account.OpeningBalance
	}
	return st, nil
}

// Rows streams the statement in date then entry order. The running balance
// adds debits and subtracts credits whatever the account nature. Each range
// reads the store again.
func (st *Statement) Rows(ctx context.Context) iter.Seq2[models.StatementRow, error] {
	return func(yield func(models.StatementRow, error) bool) {
		if st.empty {
			return
		}

		balance := st.OpeningBalance
		for e, err := range st.store.StatementEntries(ctx, st.Account.ID, st.Filter) {
			if err != nil {
				yield(models.StatementRow{}, apperrors.NewInternalError("failed to read statement", err))
				return
			}

			row := models.StatementRow{
				ID:            e.EntryID,
				TransactionID: e.TransactionID,
				Date:          e.Date.Format(models.DateLayout),
				VoucherNo:     e.VoucherNo,
				Narration:     e.Narration,
				Branch:        e.BranchCode,
				Type:          e.Type,
			}
			if e.EntryType == models.EntryDebit {
				row.Debit = e.Amount
			} else {
				row.Credit = e.Amount
			}
			balance = balance.Add(row.Debit).Sub(row.Credit)
			row.Balance = balance

			if !yield(row, nil) {
				return
			}
		}
	}
}

// Collect drains Rows into a slice
func (st *Statement) Collect(ctx context.Context) ([]models.StatementRow, error) {
	rows := []models.StatementRow{}
	for row, err := range st.Rows(ctx) {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

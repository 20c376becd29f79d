package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/audit"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store"
)

// TransactionService posts transactions and drives their lifecycle
type TransactionService struct {
	store     store.Store
	vouchers  *VoucherService
	balances  *BalanceService
	audit     *audit.AuditLogger
	logger    *logrus.Logger
	validator *ValidationHelper
	now       func() time.Time
}

func NewTransactionService(st store.Store, vouchers *VoucherService, balances *BalanceService, auditLogger *audit.AuditLogger, logger *logrus.Logger) *TransactionService {
	return &TransactionService{
		store:     st,
		vouchers:  vouchers,
		balances:  balances,
		audit:     auditLogger,
		logger:    logger,
		validator: NewValidationHelper(),
		now:       time.Now,
	}
}

// Create posts a two-account transfer: the destination is debited and the
// source credited with the full amount.
func (s *TransactionService) Create(ctx context.Context, req models.CreateTransactionRequest, actor models.User) (*models.Transaction, error) {
	fields := s.validator.FieldErrors(&req)
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		fields["amount"] = "amount must be greater than zero"
	} else if !models.WithinMaxAmount(amount) {
		fields["amount"] = tooLarge
	}
	if req.FromAccountID != 0 && req.FromAccountID == req.ToAccountID {
		fields["to_account_id"] = "source and destination accounts must be different"
	}
	if req.Type == "" {
		req.Type = models.TypeCash
	}
	if req.Type == models.TypeBank {
		if req.BankName == "" {
			fields["bank_name"] = "bank_name is required for bank transactions"
		}
		if req.ChequeNo == "" {
			fields["cheque_no"] = "cheque_no is required for bank transactions"
		}
		if req.ChequeDate == "" {
			fields["cheque_date"] = "cheque_date is required for bank transactions"
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError("validation failed", fields)
	}

	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	var chequeDate *time.Time
	if req.ChequeDate != "" {
		d, err := time.Parse(models.DateLayout, req.ChequeDate)
		if err != nil {
			return nil, apperrors.NewFieldValidationError("validation failed", map[string]string{
				"cheque_date": "cheque_date must be a date in YYYY-MM-DD format",
			})
		}
		chequeDate = &d
	}

	branchID, err := s.resolveBranch(ctx, req.BranchID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccounts(ctx, req.FromAccountID, req.ToAccountID); err != nil {
		return nil, err
	}

	voucherNo := req.VoucherNo
	if voucherNo == "" {
		if voucherNo, err = s.vouchers.Generate(ctx, branchID, date); err != nil {
			return nil, err
		}
	}

	header := &models.Transaction{
		VoucherNo:   voucherNo,
		Date:        date,
		Type:        req.Type,
		BranchID:    branchID,
		Narration:   req.Narration,
		BankName:    req.BankName,
		ChequeNo:    req.ChequeNo,
		ChequeDate:  chequeDate,
		CreatedBy:   actor.ID,
		TotalAmount: amount,
		Status:      models.StatusPending,
	}
	entries := []models.LedgerEntry{
		{AccountID: req.ToAccountID, EntryType: models.EntryDebit, Amount: amount, Description: req.Narration},
		{AccountID: req.FromAccountID, EntryType: models.EntryCredit, Amount: amount, Description: req.Narration},
	}

	return s.post(ctx, header, entries, actor, "failed to create transaction")
}

// CreateJournal posts a caller-supplied set of entries that must already balance
func (s *TransactionService) CreateJournal(ctx context.Context, req models.CreateJournalRequest, actor models.User) (*models.Transaction, error) {
	fields := s.validator.FieldErrors(&req)
	entries, total := s.journalEntries(req.Entries, fields)
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError("validation failed", fields)
	}

	date, err := s.parseDate(req.TransactionDate)
	if err != nil {
		return nil, err
	}
	branchID, err := s.resolveBranch(ctx, req.BranchID, actor)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AccountID)
	}
	if err := s.checkAccounts(ctx, ids...); err != nil {
		return nil, err
	}

	voucherNo, err := s.vouchers.Generate(ctx, branchID, date)
	if err != nil {
		return nil, err
	}

	header := &models.Transaction{
		VoucherNo:   voucherNo,
		Date:        date,
		Type:        models.TypeJournal,
		BranchID:    branchID,
		Narration:   req.Description,
		Notes:       req.Notes,
		CreatedBy:   actor.ID,
		TotalAmount: total,
		Status:      models.StatusPending,
	}
	return s.post(ctx, header, entries, actor, "failed to create journal entry")
}

// post writes the header and its entries as one unit, re-checks the balance
// against what was persisted and recomputes every touched account.
func (s *TransactionService) post(ctx context.Context, header *models.Transaction, entries []models.LedgerEntry, actor models.User, failure string) (*models.Transaction, error) {
	var result *models.Transaction
	var balances map[int64]decimal.Decimal

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := lockActiveAccounts(ctx, tx, entryAccountIDs(entries)); err != nil {
			return err
		}

		if err := tx.InsertTransaction(ctx, header); err != nil {
			return err
		}
		if err := insertEntries(ctx, tx, header, entries); err != nil {
			return err
		}

		persisted, err := tx.GetTransaction(ctx, header.ID)
		if err != nil {
			return err
		}
		if err := checkBalanced(persisted.Entries); err != nil {
			return err
		}

		if balances, err = s.balances.RecomputeTx(ctx, tx, persisted.AccountIDs()...); err != nil {
			return err
		}

		result, err = tx.GetTransaction(ctx, header.ID)
		return err
	})
	if err != nil {
		s.audit.LogError("post", 0, actor.ID, err)
		return nil, storageError(failure, err)
	}

	s.balances.Publish(ctx, balances)
	s.audit.LogPosted(result.ID, result.VoucherNo, actor.ID, result.TotalAmount)
	s.logger.WithFields(logrus.Fields{
		"transaction_id": result.ID,
		"voucher_no":     result.VoucherNo,
		"branch_id":      result.BranchID,
		"entries":        len(result.Entries),
	}).Info("Transaction posted")
	return result, nil
}

// Get returns a transaction with its entries and their accounts
func (s *TransactionService) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	txn, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, storageError("failed to get transaction", err)
	}
	return txn, nil
}

// Update edits a pending transaction. When entries are given they replace
// the existing ones and both the old and the new accounts are recomputed.
func (s *TransactionService) Update(ctx context.Context, id int64, req models.UpdateTransactionRequest, actor models.User) (*models.Transaction, error) {
	fields := s.validator.FieldErrors(&req)
	var entries []models.LedgerEntry
	var total decimal.Decimal
	if req.Entries != nil {
		entries, total = s.journalEntries(req.Entries, fields)
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError("validation failed", fields)
	}

	var date time.Time
	if req.Date != nil {
		d, err := s.parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}
	if entries != nil {
		if err := s.checkAccounts(ctx, entryAccountIDs(entries)...); err != nil {
			return nil, err
		}
	}

	var result *models.Transaction
	var balances map[int64]decimal.Decimal
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		txn, err := s.lockPending(ctx, tx, id, actor)
		if err != nil {
			return err
		}

		if req.Date != nil {
			txn.Date = date
		}
		if req.Narration != nil {
			txn.Narration = *req.Narration
		}
		if req.Notes != nil {
			txn.Notes = *req.Notes
		}

		var touched []int64
		if entries != nil {
			touched = distinctSorted(append(txn.AccountIDs(), entryAccountIDs(entries)...))
			if err := lockAccounts(ctx, tx, touched, entryAccountIDs(entries)); err != nil {
				return err
			}
			if err := tx.DeleteEntries(ctx, txn.ID); err != nil {
				return err
			}
			if err := insertEntries(ctx, tx, txn, entries); err != nil {
				return err
			}
			txn.TotalAmount = total
		}

		if err := tx.UpdateTransaction(ctx, txn); err != nil {
			return err
		}

		if entries != nil {
			persisted, err := tx.GetTransaction(ctx, txn.ID)
			if err != nil {
				return err
			}
			if err := checkBalanced(persisted.Entries); err != nil {
				return err
			}
			if balances, err = s.balances.RecomputeTx(ctx, tx, touched...); err != nil {
				return err
			}
		}

		result, err = tx.GetTransaction(ctx, txn.ID)
		return err
	})
	if err != nil {
		return nil, storageError("failed to update transaction", err)
	}

	s.balances.Publish(ctx, balances)
	s.audit.LogTransition(audit.EventUpdated, result.ID, result.VoucherNo, actor.ID,
		string(models.StatusPending), string(result.Status))
	return result, nil
}

// Approve moves a pending transaction to approved, recording who and when
func (s *TransactionService) Approve(ctx context.Context, id int64, actor models.User) (*models.Transaction, error) {
	return s.transition(ctx, id, actor, models.StatusApproved, audit.EventApproved, func(txn *models.Transaction) {
		approvedAt := s.now()
		approvedBy := actor.ID
		txn.ApprovedBy = &approvedBy
		txn.ApprovedAt = &approvedAt
	})
}

// Cancel moves a pending transaction to cancelled. Its postings stay in place.
func (s *TransactionService) Cancel(ctx context.Context, id int64, actor models.User) (*models.Transaction, error) {
	return s.transition(ctx, id, actor, models.StatusCancelled, audit.EventCancelled, nil)
}

func (s *TransactionService) transition(ctx context.Context, id int64, actor models.User, to models.TransactionStatus, event string, apply func(*models.Transaction)) (*models.Transaction, error) {
	var result *models.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		txn, err := s.lockPending(ctx, tx, id, actor)
		if err != nil {
			return err
		}

		txn.Status = to
		if apply != nil {
			apply(txn)
		}
		if err := tx.UpdateTransaction(ctx, txn); err != nil {
			return err
		}
		result = txn
		return nil
	})
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to mark transaction %s", to), err)
	}

	s.audit.LogTransition(event, result.ID, result.VoucherNo, actor.ID, string(models.StatusPending), string(to))
	return result, nil
}

// Delete removes a transaction that is not approved together with its
// entries, then recomputes the accounts it touched.
func (s *TransactionService) Delete(ctx context.Context, id int64, actor models.User) error {
	var deleted *models.Transaction
	var balances map[int64]decimal.Decimal
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		txn, err := tx.LockTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := authorizeBranch(actor, txn.BranchID); err != nil {
			return err
		}
		if txn.Status == models.StatusApproved {
			return statusConflict(txn.Status)
		}

		if err := tx.DeleteEntries(ctx, txn.ID); err != nil {
			return err
		}
		if err := tx.DeleteTransaction(ctx, txn.ID); err != nil {
			return err
		}
		if balances, err = s.balances.RecomputeTx(ctx, tx, txn.AccountIDs()...); err != nil {
			return err
		}
		deleted = txn
		return nil
	})
	if err != nil {
		return storageError("failed to delete transaction", err)
	}

	s.balances.Publish(ctx, balances)
	s.audit.LogTransition(audit.EventDeleted, deleted.ID, deleted.VoucherNo, actor.ID, string(deleted.Status), "deleted")
	return nil
}

func (s *TransactionService) lockPending(ctx context.Context, tx store.Tx, id int64, actor models.User) (*models.Transaction, error) {
	txn, err := tx.LockTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeBranch(actor, txn.BranchID); err != nil {
		return nil, err
	}
	if txn.Status != models.StatusPending {
		return nil, statusConflict(txn.Status)
	}
	return txn, nil
}

// journalEntries converts caller entries, adding per-entry and balance
// violations to fields. The total is the debit side.
func (s *TransactionService) journalEntries(inputs []models.JournalEntryInput, fields map[string]string) ([]models.LedgerEntry, decimal.Decimal) {
	entries := make([]models.LedgerEntry, 0, len(inputs))
	for i, in := range inputs {
		amount := in.Amount.Round(2)
		if !amount.IsPositive() {
			fields[fmt.Sprintf("entries[%d].amount", i)] = "amount must be greater than zero"
		} else if !models.WithinMaxAmount(amount) {
			fields[fmt.Sprintf("entries[%d].amount", i)] = tooLarge
		}
		entries = append(entries, models.LedgerEntry{
			AccountID:   in.AccountID,
			EntryType:   in.EntryType,
			Amount:      amount,
			Description: in.Description,
			Notes:       in.Notes,
		})
	}

	debits, credits := models.Totals(entries)
	switch {
	case len(fields) > 0:
	case !models.WithinMaxAmount(debits) || !models.WithinMaxAmount(credits):
		fields["entries"] = "total " + tooLarge
	case !models.IsBalanced(entries):
		fields["entries"] = fmt.Sprintf("total debits (%s) must equal total credits (%s)",
			debits.StringFixed(2), credits.StringFixed(2))
	}
	return entries, debits
}

func (s *TransactionService) parseDate(value string) (time.Time, error) {
	if value == "" {
		return calendarDay(s.now()), nil
	}
	d, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewFieldValidationError("validation failed", map[string]string{
			"date": "date must be a date in YYYY-MM-DD format",
		})
	}
	return d, nil
}

// resolveBranch falls back to the actor's branch and keeps branch managers on
// their own branch
func (s *TransactionService) resolveBranch(ctx context.Context, requested *int64, actor models.User) (int64, error) {
	var branchID int64
	switch {
	case requested != nil:
		branchID = *requested
	case actor.BranchID != nil:
		branchID = *actor.BranchID
	default:
		return 0, apperrors.NewFieldValidationError("validation failed", map[string]string{
			"branch_id": "branch is required",
		})
	}

	if err := authorizeBranch(actor, branchID); err != nil {
		return 0, err
	}
	if _, err := s.store.GetBranch(ctx, branchID); err != nil {
		return 0, storageError("failed to get branch", err)
	}
	return branchID, nil
}

// checkAccounts rejects unknown or inactive accounts before anything is written
func (s *TransactionService) checkAccounts(ctx context.Context, ids ...int64) error {
	for _, id := range distinctSorted(ids) {
		account, err := s.store.GetAccount(ctx, id)
		if err != nil {
			return storageError("failed to get account", err)
		}
		if !account.IsActive {
			return inactiveAccount(account)
		}
	}
	return nil
}

func authorizeBranch(actor models.User, branchID int64) error {
	if !actor.IsBranchScoped() {
		return nil
	}
	if actor.BranchID == nil || *actor.BranchID != branchID {
		return apperrors.NewAuthorizationError("branch managers may only act on their own branch")
	}
	return nil
}

func lockActiveAccounts(ctx context.Context, tx store.Tx, ids []int64) error {
	return lockAccounts(ctx, tx, ids, ids)
}

// lockAccounts locks ids in ascending id order. Only the accounts listed in
// active have to be active.
func lockAccounts(ctx context.Context, tx store.Tx, ids, active []int64) error {
	mustBeActive := make(map[int64]bool, len(active))
	for _, id := range active {
		mustBeActive[id] = true
	}

	for _, id := range distinctSorted(ids) {
		account, err := tx.LockAccount(ctx, id)
		if err != nil {
			return err
		}
		if mustBeActive[id] && !account.IsActive {
			return inactiveAccount(account)
		}
	}
	return nil
}

func insertEntries(ctx context.Context, tx store.Tx, header *models.Transaction, entries []models.LedgerEntry) error {
	for i := range entries {
		entry := entries[i]
		entry.TransactionID = header.ID
		entry.BranchID = header.BranchID
		if err := tx.InsertEntry(ctx, &entry); err != nil {
			return err
		}
	}
	return nil
}

func checkBalanced(entries []models.LedgerEntry) error {
	if models.IsBalanced(entries) {
		return nil
	}
	debits, credits := models.Totals(entries)
	return apperrors.NewValidationError("transaction is not balanced").
		WithDetail("entries", fmt.Sprintf("total debits (%s) must equal total credits (%s)",
			debits.StringFixed(2), credits.StringFixed(2)))
}

func entryAccountIDs(entries []models.LedgerEntry) []int64 {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AccountID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func inactiveAccount(account *models.Account) error {
	return apperrors.NewValidationError("account is inactive").
		WithDetail("account_id", fmt.Sprintf("account %s is inactive", account.Code))
}

func statusConflict(status models.TransactionStatus) error {
	return apperrors.NewConflictError(fmt.Sprintf("transaction is already %s", status)).
		WithDetail("status", string(status))
}

// Package postgres implements the ledger store on PostgreSQL through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store"
)

const uniqueViolation = "23505"

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// WithinTx begins a database transaction, runs fn and commits. Any error or
// panic from fn rolls the transaction back.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &pgTx{q: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) GetBranch(ctx context.Context, id int64) (*models.Branch, error) {
	return getBranch(ctx, s.db, id)
}

func (s *Store) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return getAccount(ctx, s.db, id, false)
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return getTransaction(ctx, s.db, id, false)
}

// StatementEntries streams matching postings from an open cursor. Every
// range issues the query again.
func (s *Store) StatementEntries(ctx context.Context, accountID int64, filter models.StatementFilter) iter.Seq2[models.StatementEntry, error] {
	query, args := statementQuery(accountID, filter)

	return func(yield func(models.StatementEntry, error) bool) {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(models.StatementEntry{}, fmt.Errorf("failed to query statement: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var e models.StatementEntry
			var entryType, txnType string
			if err := rows.Scan(&e.EntryID, &e.TransactionID, &e.Date, &e.VoucherNo, &e.Narration,
				&txnType, &e.BranchID, &e.BranchCode, &entryType, &e.Amount); err != nil {
				yield(models.StatementEntry{}, fmt.Errorf("failed to scan statement row: %w", err))
				return
			}
			e.Type = models.TransactionType(txnType)
			e.EntryType = models.EntryType(entryType)
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.StatementEntry{}, err)
		}
	}
}

func statementQuery(accountID int64, filter models.StatementFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`
		SELECT e.id, t.id, t.date, t.voucher_no, t.narration, t.type,
		       e.branch_id, b.code, e.entry_type, e.amount
		FROM ledger_entries e
		JOIN transactions t ON t.id = e.transaction_id
		JOIN branches b ON b.id = e.branch_id
		WHERE e.account_id = $1`)
	args := []any{accountID}

	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		fmt.Fprintf(&b, " AND e.branch_id = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, filter.DateFrom.Format(models.DateLayout))
		fmt.Fprintf(&b, " AND t.date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, filter.DateTo.Format(models.DateLayout))
		fmt.Fprintf(&b, " AND t.date <= $%d", len(args))
	}
	b.WriteString(" ORDER BY t.date, e.id")
	return b.String(), args
}

type pgTx struct {
	q querier
}

func (t *pgTx) GetBranch(ctx context.Context, id int64) (*models.Branch, error) {
	return getBranch(ctx, t.q, id)
}

func (t *pgTx) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return getAccount(ctx, t.q, id, false)
}

func (t *pgTx) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return getTransaction(ctx, t.q, id, false)
}

// NextVoucherNumber creates the counter at 1 or increments it in one statement
func (t *pgTx) NextVoucherNumber(ctx context.Context, branchID int64, day time.Time) (int, error) {
	var n int
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO voucher_sequences (branch_id, date, last_number, created_at, updated_at)
		VALUES ($1, $2, 1, NOW(), NOW())
		ON CONFLICT (branch_id, date)
		DO UPDATE SET last_number = voucher_sequences.last_number + 1, updated_at = NOW()
		RETURNING last_number`,
		branchID, day.Format(models.DateLayout)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to advance voucher sequence: %w", err)
	}
	return n, nil
}

func (t *pgTx) CreateBranch(ctx context.Context, branch *models.Branch) error {
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO branches (code, name, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at`,
		branch.Code, branch.Name).Scan(&branch.ID, &branch.CreatedAt)
	if isUniqueViolation(err) {
		return apperrors.NewConflictError("branch code already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to insert branch: %w", err)
	}
	return nil
}

func (t *pgTx) CreateAccount(ctx context.Context, a *models.Account) error {
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO accounts (code, name, nature, category, description, is_active,
		                      opening_balance, current_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		a.Code, a.Name, string(a.Nature), a.Category, a.Description, a.IsActive,
		a.OpeningBalance, a.CurrentBalance).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.NewConflictError("account code already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (t *pgTx) LockAccount(ctx context.Context, id int64) (*models.Account, error) {
	return getAccount(ctx, t.q, id, true)
}

func (t *pgTx) UpdateOpeningBalance(ctx context.Context, id int64, opening decimal.Decimal) error {
	return t.execOne(ctx, "account not found", `
		UPDATE accounts SET opening_balance = $1, updated_at = NOW() WHERE id = $2`,
		opening, id)
}

func (t *pgTx) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	return t.execOne(ctx, "account not found", `
		UPDATE accounts SET current_balance = $1, updated_at = NOW() WHERE id = $2`,
		balance, id)
}

func (t *pgTx) DeleteAccount(ctx context.Context, id int64) error {
	return t.execOne(ctx, "account not found", `DELETE FROM accounts WHERE id = $1`, id)
}

func (t *pgTx) SumPostings(ctx context.Context, accountID int64) (decimal.Decimal, decimal.Decimal, error) {
	var debits, credits decimal.Decimal
	err := t.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN entry_type = 'debit' THEN amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN entry_type = 'credit' THEN amount ELSE 0 END), 0)
		FROM ledger_entries
		WHERE account_id = $1`, accountID).Scan(&debits, &credits)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum postings: %w", err)
	}
	return debits, credits, nil
}

func (t *pgTx) CountPostings(ctx context.Context, accountID int64) (int, error) {
	var n int
	err := t.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count postings: %w", err)
	}
	return n, nil
}

func (t *pgTx) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO transactions (voucher_no, date, type, branch_id, narration, notes,
		                          bank_name, cheque_no, cheque_date, created_by,
		                          total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		txn.VoucherNo, txn.Date.Format(models.DateLayout), string(txn.Type), txn.BranchID,
		txn.Narration, txn.Notes, txn.BankName, txn.ChequeNo, nullDate(txn.ChequeDate),
		txn.CreatedBy, txn.TotalAmount, string(txn.Status)).
		Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.NewConflictError("voucher number already exists").WithDetail("voucher_no", txn.VoucherNo)
	}
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (t *pgTx) InsertEntry(ctx context.Context, e *models.LedgerEntry) error {
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO ledger_entries (transaction_id, account_id, branch_id, entry_type,
		                            amount, description, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at`,
		e.TransactionID, e.AccountID, e.BranchID, string(e.EntryType),
		e.Amount, e.Description, e.Notes).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

func (t *pgTx) LockTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return getTransaction(ctx, t.q, id, true)
}

func (t *pgTx) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	var approvedBy sql.NullInt64
	if txn.ApprovedBy != nil {
		approvedBy = sql.NullInt64{Int64: *txn.ApprovedBy, Valid: true}
	}
	var approvedAt sql.NullTime
	if txn.ApprovedAt != nil {
		approvedAt = sql.NullTime{Time: *txn.ApprovedAt, Valid: true}
	}

	err := t.q.QueryRowContext(ctx, `
		UPDATE transactions
		SET date = $1, narration = $2, notes = $3, total_amount = $4, status = $5,
		    approved_by = $6, approved_at = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`,
		txn.Date.Format(models.DateLayout), txn.Narration, txn.Notes, txn.TotalAmount,
		string(txn.Status), approvedBy, approvedAt, txn.ID).Scan(&txn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError("transaction not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (t *pgTx) DeleteEntries(ctx context.Context, transactionID int64) error {
	if _, err := t.q.ExecContext(ctx, `DELETE FROM ledger_entries WHERE transaction_id = $1`, transactionID); err != nil {
		return fmt.Errorf("failed to delete ledger entries: %w", err)
	}
	return nil
}

func (t *pgTx) DeleteTransaction(ctx context.Context, id int64) error {
	return t.execOne(ctx, "transaction not found", `DELETE FROM transactions WHERE id = $1`, id)
}

// execOne runs a statement that must touch exactly one row
func (t *pgTx) execOne(ctx context.Context, notFound, query string, args ...any) error {
	result, err := t.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(notFound)
	}
	return nil
}

func getBranch(ctx context.Context, q querier, id int64) (*models.Branch, error) {
	var b models.Branch
	err := q.QueryRowContext(ctx, `
		SELECT id, code, name, created_at FROM branches WHERE id = $1`, id).
		Scan(&b.ID, &b.Code, &b.Name, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("branch not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return &b, nil
}

const accountColumns = `id, code, name, nature, category, description, is_active,
	opening_balance, current_balance, created_at, updated_at`

func getAccount(ctx context.Context, q querier, id int64, lock bool) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var a models.Account
	var nature string
	err := q.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Code, &a.Name, &nature, &a.Category,
		&a.Description, &a.IsActive, &a.OpeningBalance, &a.CurrentBalance, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.Nature = models.AccountNature(nature)
	return &a, nil
}

const transactionColumns = `id, voucher_no, date, type, branch_id, narration, notes,
	bank_name, cheque_no, cheque_date, created_by, total_amount, status,
	approved_by, approved_at, created_at, updated_at`

func getTransaction(ctx context.Context, q querier, id int64, lock bool) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var txn models.Transaction
	var txnType, status string
	var chequeDate, approvedAt sql.NullTime
	var approvedBy sql.NullInt64
	err := q.QueryRowContext(ctx, query, id).Scan(&txn.ID, &txn.VoucherNo, &txn.Date, &txnType,
		&txn.BranchID, &txn.Narration, &txn.Notes, &txn.BankName, &txn.ChequeNo, &chequeDate,
		&txn.CreatedBy, &txn.TotalAmount, &status, &approvedBy, &approvedAt,
		&txn.CreatedAt, &txn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("transaction not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	txn.Type = models.TransactionType(txnType)
	txn.Status = models.TransactionStatus(status)
	if chequeDate.Valid {
		txn.ChequeDate = &chequeDate.Time
	}
	if approvedBy.Valid {
		txn.ApprovedBy = &approvedBy.Int64
	}
	if approvedAt.Valid {
		txn.ApprovedAt = &approvedAt.Time
	}

	entries, err := getEntries(ctx, q, id)
	if err != nil {
		return nil, err
	}
	txn.Entries = entries
	return &txn, nil
}

func getEntries(ctx context.Context, q querier, transactionID int64) ([]models.LedgerEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT e.id, e.transaction_id, e.account_id, e.branch_id, e.entry_type, e.amount,
		       e.description, e.notes, e.created_at,
		       a.code, a.name, a.nature, a.is_active
		FROM ledger_entries e
		JOIN accounts a ON a.id = e.account_id
		WHERE e.transaction_id = $1
		ORDER BY e.id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		var a models.Account
		var entryType, nature string
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &e.BranchID, &entryType, &e.Amount,
			&e.Description, &e.Notes, &e.CreatedAt, &a.Code, &a.Name, &nature, &a.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.EntryType = models.EntryType(entryType)
		a.ID = e.AccountID
		a.Nature = models.AccountNature(nature)
		e.Account = &a
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(models.DateLayout)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*pgTx)(nil)
)

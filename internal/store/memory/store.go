// Package memory is an in-process ledger store guarded by a single mutex.
// Every unit of work runs against a private copy of the state which replaces
// the shared state only when the unit succeeds.
package memory

import (
	"context"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store"
)

type sequenceKey struct {
	branchID int64
	day      string
}

type state struct {
	branches     map[int64]models.Branch
	accounts     map[int64]models.Account
	transactions map[int64]models.Transaction
	entries      map[int64]models.LedgerEntry
	sequences    map[sequenceKey]int

	lastBranchID      int64
	lastAccountID     int64
	lastTransactionID int64
	lastEntryID       int64
}

func newState() *state {
	return &state{
		branches:     make(map[int64]models.Branch),
		accounts:     make(map[int64]models.Account),
		transactions: make(map[int64]models.Transaction),
		entries:      make(map[int64]models.LedgerEntry),
		sequences:    make(map[sequenceKey]int),
	}
}

func (s *state) clone() *state {
	c := &state{
		branches:          make(map[int64]models.Branch, len(s.branches)),
		accounts:          make(map[int64]models.Account, len(s.accounts)),
		transactions:      make(map[int64]models.Transaction, len(s.transactions)),
		entries:           make(map[int64]models.LedgerEntry, len(s.entries)),
		sequences:         make(map[sequenceKey]int, len(s.sequences)),
		lastBranchID:      s.lastBranchID,
		lastAccountID:     s.lastAccountID,
		lastTransactionID: s.lastTransactionID,
		lastEntryID:       s.lastEntryID,
	}
	for k, v := range s.branches {
		c.branches[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// Store is the in-memory ledger store
type Store struct {
	mu     sync.Mutex
	st     *state
	now    func() time.Time
	faults map[string]error
}

// New creates an empty store
func New() *Store {
	return &Store{
		st:     newState(),
		now:    time.Now,
		faults: make(map[string]error),
	}
}

// SetClock replaces the clock used for timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// InjectFault makes every later call of the named Tx operation fail with err.
// A nil err clears the fault.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// WithinTx runs fn against a private copy of the state and publishes it on success
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	tx := &memTx{st: work, now: s.now, faults: s.faults}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.st = work
	return nil
}

// GetBranch returns a branch by id
func (s *Store) GetBranch(ctx context.Context, id int64) (*models.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getBranch(id)
}

// GetAccount returns an account by id
func (s *Store) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getAccount(id)
}

// GetTransaction returns a transaction with its entries
func (s *Store) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getTransaction(id)
}

// StatementEntries snapshots the matching postings on every range
func (s *Store) StatementEntries(ctx context.Context, accountID int64, filter models.StatementFilter) iter.Seq2[models.StatementEntry, error] {
	return func(yield func(models.StatementEntry, error) bool) {
		s.mu.Lock()
		rows := s.st.statementEntries(accountID, filter)
		s.mu.Unlock()

		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				yield(models.StatementEntry{}, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func (s *state) getBranch(id int64) (*models.Branch, error) {
	b, ok := s.branches[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("branch not found")
	}
	return &b, nil
}

func (s *state) getAccount(id int64) (*models.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("account not found")
	}
	return &a, nil
}

func (s *state) getTransaction(id int64) (*models.Transaction, error) {
	t, ok := s.transactions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("transaction not found")
	}
	t.Entries = s.entriesOf(id)
	for i := range t.Entries {
		if a, ok := s.accounts[t.Entries[i].AccountID]; ok {
			t.Entries[i].Account = &a
		}
	}
	return &t, nil
}

func (s *state) entriesOf(transactionID int64) []models.LedgerEntry {
	var out []models.LedgerEntry
	for _, e := range s.entries {
		if e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *state) statementEntries(accountID int64, filter models.StatementFilter) []models.StatementEntry {
	var rows []models.StatementEntry
	for _, e := range s.entries {
		if e.AccountID != accountID {
			continue
		}
		if filter.BranchID != nil && e.BranchID != *filter.BranchID {
			continue
		}
		t, ok := s.transactions[e.TransactionID]
		if !ok {
			continue
		}
		if filter.DateFrom != nil && t.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && t.Date.After(*filter.DateTo) {
			continue
		}
		rows = append(rows, models.StatementEntry{
			EntryID:       e.ID,
			TransactionID: t.ID,
			Date:          t.Date,
			VoucherNo:     t.VoucherNo,
			Narration:     t.Narration,
			Type:          t.Type,
			BranchID:      e.BranchID,
			BranchCode:    s.branches[e.BranchID].Code,
			EntryType:     e.EntryType,
			Amount:        e.Amount,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].EntryID < rows[j].EntryID
	})
	return rows
}

type memTx struct {
	st     *state
	now    func() time.Time
	faults map[string]error
}

func (t *memTx) fault(op string) error {
	return t.faults[op]
}

func (t *memTx) GetBranch(ctx context.Context, id int64) (*models.Branch, error) {
	return t.st.getBranch(id)
}

func (t *memTx) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return t.st.getAccount(id)
}

func (t *memTx) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return t.st.getTransaction(id)
}

func (t *memTx) NextVoucherNumber(ctx context.Context, branchID int64, day time.Time) (int, error) {
	if err := t.fault("NextVoucherNumber"); err != nil {
		return 0, err
	}
	key := sequenceKey{branchID: branchID, day: day.Format(models.DateLayout)}
	t.st.sequences[key]++
	return t.st.sequences[key], nil
}

func (t *memTx) CreateBranch(ctx context.Context, branch *models.Branch) error {
	if err := t.fault("CreateBranch"); err != nil {
		return err
	}
	for _, b := range t.st.branches {
		if b.Code == branch.Code {
			return apperrors.NewConflictError("branch code already exists")
		}
	}
	t.st.lastBranchID++
	branch.ID = t.st.lastBranchID
	branch.CreatedAt = t.now()
	t.st.branches[branch.ID] = *branch
	return nil
}

func (t *memTx) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := t.fault("CreateAccount"); err != nil {
		return err
	}
	for _, a := range t.st.accounts {
		if a.Code == account.Code {
			return apperrors.NewConflictError("account code already exists")
		}
	}
	t.st.lastAccountID++
	now := t.now()
	account.ID = t.st.lastAccountID
	account.CreatedAt = now
	account.UpdatedAt = now
	t.st.accounts[account.ID] = *account
	return nil
}

func (t *memTx) LockAccount(ctx context.Context, id int64) (*models.Account, error) {
	if err := t.fault("LockAccount"); err != nil {
		return nil, err
	}
	return t.st.getAccount(id)
}

func (t *memTx) UpdateOpeningBalance(ctx context.Context, id int64, opening decimal.Decimal) error {
	if err := t.fault("UpdateOpeningBalance"); err != nil {
		return err
	}
	a, ok := t.st.accounts[id]
	if !ok {
		return apperrors.NewNotFoundError("account not found")
	}
	a.OpeningBalance = opening
	a.UpdatedAt = t.now()
	t.st.accounts[id] = a
	return nil
}

func (t *memTx) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	if err := t.fault("UpdateAccountBalance"); err != nil {
		return err
	}
	a, ok := t.st.accounts[id]
	if !ok {
		return apperrors.NewNotFoundError("account not found")
	}
	a.CurrentBalance = balance
	a.UpdatedAt = t.now()
	t.st.accounts[id] = a
	return nil
}

func (t *memTx) DeleteAccount(ctx context.Context, id int64) error {
	if err := t.fault("DeleteAccount"); err != nil {
		return err
	}
	if _, ok := t.st.accounts[id]; !ok {
		return apperrors.NewNotFoundError("account not found")
	}
	delete(t.st.accounts, id)
	return nil
}

func (t *memTx) SumPostings(ctx context.Context, accountID int64) (decimal.Decimal, decimal.Decimal, error) {
	if err := t.fault("SumPostings"); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	var debits, credits decimal.Decimal
	for _, e := range t.st.entries {
		if e.AccountID != accountID {
			continue
		}
		switch e.EntryType {
		case models.EntryDebit:
			debits = debits.Add(e.Amount)
		case models.EntryCredit:
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits, nil
}

func (t *memTx) CountPostings(ctx context.Context, accountID int64) (int, error) {
	n := 0
	for _, e := range t.st.entries {
		if e.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	if err := t.fault("InsertTransaction"); err != nil {
		return err
	}
	for _, existing := range t.st.transactions {
		if existing.VoucherNo == txn.VoucherNo {
			return apperrors.NewConflictError("voucher number already exists").WithDetail("voucher_no", txn.VoucherNo)
		}
	}
	if _, ok := t.st.branches[txn.BranchID]; !ok {
		return apperrors.NewNotFoundError("branch not found")
	}
	t.st.lastTransactionID++
	now := t.now()
	txn.ID = t.st.lastTransactionID
	txn.CreatedAt = now
	txn.UpdatedAt = now

	header := *txn
	header.Entries = nil
	t.st.transactions[txn.ID] = header
	return nil
}

func (t *memTx) InsertEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if err := t.fault("InsertEntry"); err != nil {
		return err
	}
	if _, ok := t.st.transactions[entry.TransactionID]; !ok {
		return apperrors.NewNotFoundError("transaction not found")
	}
	if _, ok := t.st.accounts[entry.AccountID]; !ok {
		return apperrors.NewNotFoundError("account not found")
	}
	t.st.lastEntryID++
	entry.ID = t.st.lastEntryID
	entry.CreatedAt = t.now()

	stored := *entry
	stored.Account = nil
	t.st.entries[entry.ID] = stored
	return nil
}

func (t *memTx) LockTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	if err := t.fault("LockTransaction"); err != nil {
		return nil, err
	}
	return t.st.getTransaction(id)
}

func (t *memTx) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	if err := t.fault("UpdateTransaction"); err != nil {
		return err
	}
	existing, ok := t.st.transactions[txn.ID]
	if !ok {
		return apperrors.NewNotFoundError("transaction not found")
	}
	existing.Date = txn.Date
	existing.Narration = txn.Narration
	existing.Notes = txn.Notes
	existing.TotalAmount = txn.TotalAmount
	existing.Status = txn.Status
	existing.ApprovedBy = txn.ApprovedBy
	existing.ApprovedAt = txn.ApprovedAt
	existing.UpdatedAt = t.now()
	txn.UpdatedAt = existing.UpdatedAt
	t.st.transactions[txn.ID] = existing
	return nil
}

func (t *memTx) DeleteEntries(ctx context.Context, transactionID int64) error {
	if err := t.fault("DeleteEntries"); err != nil {
		return err
	}
	for id, e := range t.st.entries {
		if e.TransactionID == transactionID {
			delete(t.st.entries, id)
		}
	}
	return nil
}

func (t *memTx) DeleteTransaction(ctx context.Context, id int64) error {
	if err := t.fault("DeleteTransaction"); err != nil {
		return err
	}
	if _, ok := t.st.transactions[id]; !ok {
		return apperrors.NewNotFoundError("transaction not found")
	}
	delete(t.st.transactions, id)
	return nil
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*memTx)(nil)
)

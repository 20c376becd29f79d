package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store"
)

func seed(t *testing.T, s *Store) (branch models.Branch, cash, sales models.Account) {
	t.Helper()
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		branch = models.Branch{Code: "HQ", Name: "Head Office"}
		if err := tx.CreateBranch(ctx, &branch); err != nil {
			return err
		}
		cash = models.Account{Code: "1000", Name: "Cash", Nature: models.NatureAsset, IsActive: true}
		if err := tx.CreateAccount(ctx, &cash); err != nil {
			return err
		}
		sales = models.Account{Code: "4000", Name: "Sales", Nature: models.NatureIncome, IsActive: true}
		return tx.CreateAccount(ctx, &sales)
	})
	require.NoError(t, err)
	return branch, cash, sales
}

func TestStore_NextVoucherNumber(t *testing.T) {
	s := New()
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("starts at one per branch and day", func(t *testing.T) {
		var first, second, otherDay, otherBranch int
		err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
			first, _ = tx.NextVoucherNumber(ctx, 1, day)
			second, _ = tx.NextVoucherNumber(ctx, 1, day)
			otherDay, _ = tx.NextVoucherNumber(ctx, 1, day.AddDate(0, 0, 1))
			otherBranch, _ = tx.NextVoucherNumber(ctx, 2, day)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, first)
		assert.Equal(t, 2, second)
		assert.Equal(t, 1, otherDay)
		assert.Equal(t, 1, otherBranch)
	})

	t.Run("concurrent callers never share a number", func(t *testing.T) {
		const workers = 50
		results := make(chan int, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
					n, err := tx.NextVoucherNumber(ctx, 9, day)
					if err != nil {
						return err
					}
					results <- n
					return nil
				})
			}()
		}
		wg.Wait()
		close(results)

		seen := make(map[int]bool)
		for n := range results {
			assert.False(t, seen[n], "number %d issued twice", n)
			seen[n] = true
		}
		assert.Len(t, seen, workers)
		for i := 1; i <= workers; i++ {
			assert.True(t, seen[i], "gap at %d", i)
		}
	})
}

func TestStore_WithinTxDiscardsFailedUnit(t *testing.T) {
	s := New()
	branch, cash, _ := seed(t, s)

	boom := errors.New("boom")
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		txn := &models.Transaction{VoucherNo: "V-1", BranchID: branch.ID, Status: models.StatusPending}
		if err := tx.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		if err := tx.UpdateAccountBalance(ctx, cash.ID, decimal.NewFromInt(999)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	account, err := s.GetAccount(context.Background(), cash.ID)
	require.NoError(t, err)
	assert.True(t, account.CurrentBalance.IsZero())

	_, err = s.GetTransaction(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_InjectFault(t *testing.T) {
	s := New()
	branch, cash, _ := seed(t, s)

	diskFull := errors.New("disk full")
	s.InjectFault("InsertEntry", diskFull)

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		txn := &models.Transaction{VoucherNo: "V-1", BranchID: branch.ID}
		if err := tx.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		return tx.InsertEntry(ctx, &models.LedgerEntry{TransactionID: txn.ID, AccountID: cash.ID,
			BranchID: branch.ID, EntryType: models.EntryDebit, Amount: decimal.NewFromInt(1)})
	})
	assert.ErrorIs(t, err, diskFull)

	s.InjectFault("InsertEntry", nil)
	_, err = s.GetTransaction(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_DuplicateVoucher(t *testing.T) {
	s := New()
	branch, _, _ := seed(t, s)

	insert := func() error {
		return s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
			return tx.InsertTransaction(ctx, &models.Transaction{VoucherNo: "MANUAL-1", BranchID: branch.ID})
		})
	}
	require.NoError(t, insert())
	assert.ErrorIs(t, insert(), apperrors.ErrConflict)
}

func TestStore_StatementEntries(t *testing.T) {
	s := New()
	branch, cash, sales := seed(t, s)

	jan2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	post := func(voucher string, day time.Time, amount int64) {
		err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
			txn := &models.Transaction{VoucherNo: voucher, Date: day, BranchID: branch.ID, Type: models.TypeCash}
			if err := tx.InsertTransaction(ctx, txn); err != nil {
				return err
			}
			if err := tx.InsertEntry(ctx, &models.LedgerEntry{TransactionID: txn.ID, AccountID: cash.ID,
				BranchID: branch.ID, EntryType: models.EntryDebit, Amount: decimal.NewFromInt(amount)}); err != nil {
				return err
			}
			return tx.InsertEntry(ctx, &models.LedgerEntry{TransactionID: txn.ID, AccountID: sales.ID,
				BranchID: branch.ID, EntryType: models.EntryCredit, Amount: decimal.NewFromInt(amount)})
		})
		require.NoError(t, err)
	}
	// posted out of date order
	post("V-2", jan2, 30)
	post("V-1", jan1, 100)

	var vouchers []string
	for e, err := range s.StatementEntries(context.Background(), cash.ID, models.StatementFilter{}) {
		require.NoError(t, err)
		vouchers = append(vouchers, e.VoucherNo)
		assert.Equal(t, "HQ", e.BranchCode)
	}
	assert.Equal(t, []string{"V-1", "V-2"}, vouchers)

	vouchers = nil
	for e, err := range s.StatementEntries(context.Background(), cash.ID, models.StatementFilter{DateFrom: &jan2}) {
		require.NoError(t, err)
		vouchers = append(vouchers, e.VoucherNo)
	}
	assert.Equal(t, []string{"V-2"}, vouchers)

	other := int64(77)
	for range s.StatementEntries(context.Background(), cash.ID, models.StatementFilter{BranchID: &other}) {
		t.Fatal("expected no entries for another branch")
	}
}

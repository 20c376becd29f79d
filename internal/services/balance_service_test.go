package services

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store"
)

func TestComputeBalance(t *testing.T) {
	opening, debits, credits := dec("100"), dec("50"), dec("20")

	tests := []struct {
		nature models.AccountNature
		want   string
	}{
		{models.NatureAsset, "130"},
		{models.NatureExpense, "130"},
		{models.NatureLiability, "70"},
		{models.NatureEquity, "70"},
		{models.NatureIncome, "70"},
		{models.NatureRevenue, "70"},
	}
	for _, tt := range tests {
		t.Run(string(tt.nature), func(t *testing.T) {
			got := ComputeBalance(tt.nature, opening, debits, credits)
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

var rawVouchers atomic.Int64

// postEntries writes raw postings against one account, bypassing the poster
func postEntries(t *testing.T, l *ledger, branchID, accountID int64, entries []models.LedgerEntry) {
	t.Helper()
	err := l.store.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		txn := &models.Transaction{
			VoucherNo: FormatVoucherNumber("RAW", testDay, int(rawVouchers.Add(1))),
			Date:      testDay,
			BranchID:  branchID,
			Status:    models.StatusPending,
		}
		if err := tx.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		for _, e := range entries {
			e.TransactionID = txn.ID
			e.AccountID = accountID
			e.BranchID = branchID
			if err := tx.InsertEntry(ctx, &e); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestBalanceService_Recompute(t *testing.T) {
	ctx := context.Background()

	t.Run("nature aware from source postings", func(t *testing.T) {
		l := newLedger(t)
		b := l.branch(t, "HO")
		asset := l.account(t, "1001", models.NatureAsset, 100)
		liability := l.account(t, "2001", models.NatureLiability, 100)

		for _, id := range []int64{asset.ID, liability.ID} {
			postEntries(t, l, b.ID, id, []models.LedgerEntry{
				{EntryType: models.EntryDebit, Amount: dec("50")},
				{EntryType: models.EntryCredit, Amount: dec("20")},
			})
		}

		got, err := l.balances.Recompute(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, "130.00", got.StringFixed(2))

		got, err = l.balances.Recompute(ctx, liability.ID)
		require.NoError(t, err)
		assert.Equal(t, "70.00", got.StringFixed(2))
		assert.True(t, l.balanceOf(t, liability.ID).Equal(dec("70")))
	})

	t.Run("idempotent", func(t *testing.T) {
		l := newLedger(t)
		b := l.branch(t, "HO")
		cash := l.account(t, "1001", models.NatureAsset, 10)
		postEntries(t, l, b.ID, cash.ID, []models.LedgerEntry{{EntryType: models.EntryDebit, Amount: dec("5.55")}})

		first, err := l.balances.Recompute(ctx, cash.ID)
		require.NoError(t, err)
		second, err := l.balances.Recompute(ctx, cash.ID)
		require.NoError(t, err)
		assert.True(t, first.Equal(second))
		assert.Equal(t, "15.55", second.StringFixed(2))
	})

	t.Run("order of postings does not matter", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		entries := make([]models.LedgerEntry, 25)
		for i := range entries {
			entryType := models.EntryDebit
			if rng.Intn(2) == 0 {
				entryType = models.EntryCredit
			}
			entries[i] = models.LedgerEntry{
				EntryType: entryType,
				Amount:    decimal.New(int64(rng.Intn(100000)+1), -2),
			}
		}
		shuffled := append([]models.LedgerEntry(nil), entries...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		replay := func(postings []models.LedgerEntry) decimal.Decimal {
			l := newLedger(t)
			b := l.branch(t, "HO")
			a := l.account(t, "4001", models.NatureIncome, 250)
			for _, p := range postings {
				postEntries(t, l, b.ID, a.ID, []models.LedgerEntry{p})
			}
			got, err := l.balances.Recompute(ctx, a.ID)
			require.NoError(t, err)
			return got
		}

		assert.True(t, replay(entries).Equal(replay(shuffled)))
	})

	t.Run("unknown account", func(t *testing.T) {
		l := newLedger(t)
		_, err := l.balances.Recompute(ctx, 404)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		l := newLedger(t)
		cash := l.account(t, "1001", models.NatureAsset, 10)
		l.store.InjectFault("SumPostings", errors.New("io timeout"))

		_, err := l.balances.Recompute(ctx, cash.ID)
		assert.ErrorIs(t, err, apperrors.ErrInternal)
		assert.True(t, l.balanceOf(t, cash.ID).Equal(dec("10")))
	})
}

func TestBalanceService_RecomputeTxLocksEachAccountOnce(t *testing.T) {
	l := newLedger(t)
	a := l.account(t, "1001", models.NatureAsset, 1)
	b := l.account(t, "1002", models.NatureAsset, 2)

	var balances map[int64]decimal.Decimal
	err := l.store.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		balances, err = l.balances.RecomputeTx(ctx, tx, b.ID, a.ID, b.ID, a.ID)
		return err
	})
	require.NoError(t, err)
	assert.Len(t, balances, 2)
	assert.True(t, balances[b.ID].Equal(dec("2")))
}

func TestBalanceService_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		l := newLedgerWithCache(t, rdb)

		mock.ExpectGet("ledger:balance:7").SetVal("130.00")

		got, err := l.balances.Balance(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "130.00", got.StringFixed(2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss reads the store and fills the cache", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		l := newLedgerWithCache(t, rdb)

		mock.ExpectDel("ledger:balance:1").SetVal(0)
		cash := l.account(t, "1001", models.NatureAsset, 40)

		mock.ExpectGet("ledger:balance:1").RedisNil()
		mock.ExpectSet("ledger:balance:1", "40.00", time.Minute).SetVal("OK")

		got, err := l.balances.Balance(ctx, cash.ID)
		require.NoError(t, err)
		assert.Equal(t, "40.00", got.StringFixed(2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreachable cache falls back to the store", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		l := newLedgerWithCache(t, rdb)

		mock.ExpectDel("ledger:balance:1").SetErr(errors.New("connection refused"))
		cash := l.account(t, "1001", models.NatureAsset, 15)

		mock.ExpectGet("ledger:balance:1").SetErr(errors.New("connection refused"))
		mock.ExpectSet("ledger:balance:1", "15.00", time.Minute).SetErr(errors.New("connection refused"))

		got, err := l.balances.Balance(ctx, cash.ID)
		require.NoError(t, err)
		assert.Equal(t, "15.00", got.StringFixed(2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("recompute evicts the cached balance", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		l := newLedgerWithCache(t, rdb)

		mock.ExpectDel("ledger:balance:1").SetVal(0)
		asset := l.account(t, "1001", models.NatureAsset, 100)
		mock.ExpectDel("ledger:balance:1").SetVal(1)

		_, err := l.balances.Recompute(ctx, asset.ID)
		require.NoError(t, err)

		mock.ExpectGet("ledger:balance:1").RedisNil()
		mock.ExpectSet("ledger:balance:1", "100.00", time.Minute).SetVal("OK")

		got, err := l.balances.Balance(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, "100.00", got.StringFixed(2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("posting drops stale balances instead of writing them", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		l := newLedgerWithCache(t, rdb)
		ho := l.branch(t, "HO")

		mock.ExpectDel("ledger:balance:1").SetVal(0)
		cash := l.account(t, "1001", models.NatureAsset, 0)
		mock.ExpectDel("ledger:balance:2").SetVal(0)
		sales := l.account(t, "4001", models.NatureIncome, 0)

		mock.ExpectDel("ledger:balance:1").SetVal(1)
		mock.ExpectDel("ledger:balance:2").SetVal(1)
		_, err := l.transactions.Create(ctx, models.CreateTransactionRequest{
			Date:          "2025-01-02",
			BranchID:      &ho.ID,
			Type:          models.TypeCash,
			FromAccountID: sales.ID,
			ToAccountID:   cash.ID,
			Amount:        dec("10"),
			Narration:     "counter sale",
		}, accountant(nil))
		require.NoError(t, err)

		mock.ExpectGet("ledger:balance:1").RedisNil()
		mock.ExpectSet("ledger:balance:1", "10.00", time.Minute).SetVal("OK")

		got, err := l.balances.Balance(ctx, cash.ID)
		require.NoError(t, err)
		assert.Equal(t, "10.00", got.StringFixed(2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

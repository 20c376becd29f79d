package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/audit"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store"
)

// ComputeBalance applies the account nature to the opening balance and the
// posting totals. Debit-normal accounts grow with debits, all others with credits.
func ComputeBalance(nature models.AccountNature, opening, debits, credits decimal.Decimal) decimal.Decimal {
	if nature.IsDebitNormal() {
		return opening.Add(debits).Sub(credits)
	}
	return opening.Add(credits).Sub(debits)
}

// BalanceService maintains the denormalized current balance of accounts
type BalanceService struct {
	store  store.Store
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
	audit  *audit.AuditLogger
}

// NewBalanceService creates the recalculator. rdb may be nil, in which case
// reads always go to the store.
func NewBalanceService(st store.Store, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger, auditLogger *audit.AuditLogger) *BalanceService {
	return &BalanceService{
		store:  st,
		redis:  rdb,
		ttl:    ttl,
		logger: logger,
		audit:  auditLogger,
	}
}

// RecomputeTx recomputes every distinct account in ids inside the caller's
// unit. Accounts are locked in ascending id order.
func (s *BalanceService) RecomputeTx(ctx context.Context, tx store.Tx, ids ...int64) (map[int64]decimal.Decimal, error) {
	balances := make(map[int64]decimal.Decimal, len(ids))
	for _, id := range distinctSorted(ids) {
		account, err := tx.LockAccount(ctx, id)
		if err != nil {
			return nil, err
		}

		debits, credits, err := tx.SumPostings(ctx, id)
		if err != nil {
			return nil, err
		}

		balance := ComputeBalance(account.Nature, account.OpeningBalance, debits, credits).Round(2)
		if err := tx.UpdateAccountBalance(ctx, id, balance); err != nil {
			return nil, err
		}
		balances[id] = balance
	}
	return balances, nil
}

// Recompute rebuilds one account's balance from its postings in its own unit
func (s *BalanceService) Recompute(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var balances map[int64]decimal.Decimal
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		balances, err = s.RecomputeTx(ctx, tx, accountID)
		return err
	})
	if err != nil {
		return decimal.Zero, storageError("failed to recompute balance", err)
	}

	s.Publish(ctx, balances)
	return balances[accountID], nil
}

// Publish records committed balances in the audit trail and evicts their
// cached values. The next Balance read refills the cache from the store.
func (s *BalanceService) Publish(ctx context.Context, balances map[int64]decimal.Decimal) {
	ids := make([]int64, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		s.audit.LogBalance(id, balances[id])
		s.Evict(ctx, id)
	}
}

// Balance returns the current balance, preferring the cache
func (s *BalanceService) Balance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	if s.redis != nil {
		val, err := s.redis.Get(ctx, balanceKey(accountID)).Result()
		switch {
		case err == nil:
			if balance, perr := decimal.NewFromString(val); perr == nil {
				return balance, nil
			}
			s.logger.WithField("account_id", accountID).Warn("Discarding malformed cached balance")
		case !errors.Is(err, redis.Nil):
			s.logger.WithError(err).Warn("Balance cache read failed")
		}
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, storageError("failed to get balance", err)
	}
	s.cacheBalance(ctx, accountID, account.CurrentBalance)
	return account.CurrentBalance, nil
}

// Evict drops a cached balance
func (s *BalanceService) Evict(ctx context.Context, accountID int64) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, balanceKey(accountID)).Err(); err != nil {
		s.logger.WithError(err).WithField("account_id", accountID).Warn("Balance cache eviction failed")
	}
}

func (s *BalanceService) cacheBalance(ctx context.Context, accountID int64, balance decimal.Decimal) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, balanceKey(accountID), balance.StringFixed(2), s.ttl).Err(); err != nil {
		s.logger.WithError(err).WithField("account_id", accountID).Warn("Balance cache write failed")
	}
}

func balanceKey(accountID int64) string {
	return fmt.Sprintf("ledger:balance:%d", accountID)
}

func distinctSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

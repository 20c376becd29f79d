package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/branchledger/cashbook/internal/audit"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store/memory"
)

var testDay = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

// ledger wires every service over one memory store
type ledger struct {
	store        *memory.Store
	hook         *test.Hook
	logger       *logrus.Logger
	vouchers     *VoucherService
	balances     *BalanceService
	transactions *TransactionService
	statements   *StatementService
	accounts     *AccountService
	branches     *BranchService
}

func newLedger(t *testing.T) *ledger {
	return newLedgerWithCache(t, nil)
}

func newLedgerWithCache(t *testing.T, rdb *redis.Client) *ledger {
	t.Helper()
	logger, hook := test.NewNullLogger()
	st := memory.New()
	auditLogger := audit.NewAuditLogger(logger)

	l := &ledger{store: st, hook: hook, logger: logger}
	l.vouchers = NewVoucherService(st, logger)
	l.vouchers.now = func() time.Time { return testDay.Add(9 * time.Hour) }
	l.balances = NewBalanceService(st, rdb, time.Minute, logger, auditLogger)
	l.transactions = NewTransactionService(st, l.vouchers, l.balances, auditLogger, logger)
	l.transactions.now = l.vouchers.now
	l.statements = NewStatementService(st, logger)
	l.accounts = NewAccountService(st, l.balances, logger)
	l.branches = NewBranchService(st, logger)
	return l
}

func (l *ledger) branch(t *testing.T, code string) *models.Branch {
	t.Helper()
	b, err := l.branches.Create(context.Background(), models.CreateBranchRequest{Code: code, Name: code + " branch"})
	require.NoError(t, err)
	return b
}

func (l *ledger) account(t *testing.T, code string, nature models.AccountNature, opening int64) *models.Account {
	t.Helper()
	a, err := l.accounts.Create(context.Background(), models.CreateAccountRequest{
		Code:           code,
		Name:           code,
		Nature:         nature,
		OpeningBalance: decimal.NewFromInt(opening),
	})
	require.NoError(t, err)
	return a
}

func (l *ledger) balanceOf(t *testing.T, id int64) decimal.Decimal {
	t.Helper()
	a, err := l.store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return a.CurrentBalance
}

func ptr[T any](v T) *T {
	return &v
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func accountant(branchID *int64) models.User {
	return models.User{ID: 10, Name: "accountant", Role: models.RoleAccountant, BranchID: branchID}
}

func manager(branchID *int64) models.User {
	return models.User{ID: 20, Name: "manager", Role: models.RoleBranchManager, BranchID: branchID}
}

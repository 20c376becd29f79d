package services

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"

	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store"
)

// MockStore is a testify mock of store.Store for failure paths the memory
// store cannot produce
type MockStore struct {
	mock.Mock
}

func (m *MockStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func (m *MockStore) GetBranch(ctx context.Context, id int64) (*models.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Branch), args.Error(1)
}

func (m *MockStore) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStore) StatementEntries(ctx context.Context, accountID int64, filter models.StatementFilter) iter.Seq2[models.StatementEntry, error] {
	args := m.Called(ctx, accountID, filter)
	return args.Get(0).(iter.Seq2[models.StatementEntry, error])
}

var _ store.Store = (*MockStore)(nil)

// lockRecorder delegates to a real store and records every LockAccount call
// made inside its units
type lockRecorder struct {
	store.Store
	mock.Mock
}

func (r *lockRecorder) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return r.Store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, &recordingTx{Tx: tx, r: r})
	})
}

// lockedIDs returns account ids in the order they were first locked
func (r *lockRecorder) lockedIDs() []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, call := range r.Calls {
		id := call.Arguments.Get(0).(int64)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

type recordingTx struct {
	store.Tx
	r *lockRecorder
}

func (t *recordingTx) LockAccount(ctx context.Context, id int64) (*models.Account, error) {
	t.r.Called(id)
	return t.Tx.LockAccount(ctx, id)
}

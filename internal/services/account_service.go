package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store"
)

// AccountService manages the chart of accounts
type AccountService struct {
	store     store.Store
	balances  *BalanceService
	logger    *logrus.Logger
	validator *ValidationHelper
}

func NewAccountService(st store.Store, balances *BalanceService, logger *logrus.Logger) *AccountService {
	return &AccountService{
		store:     st,
		balances:  balances,
		logger:    logger,
		validator: NewValidationHelper(),
	}
}

// Create adds an account. Its current balance starts at the opening balance.
func (s *AccountService) Create(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error) {
	fields := s.validator.FieldErrors(&req)
	opening := req.OpeningBalance.Round(2)
	if !models.WithinMaxAmount(opening) {
		fields["opening_balance"] = tooLarge
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError("validation failed", fields)
	}

	account := &models.Account{
		Code:           req.Code,
		Name:           req.Name,
		Nature:         req.Nature,
		Category:       req.Category,
		Description:    req.Description,
		IsActive:       req.IsActive == nil || *req.IsActive,
		OpeningBalance: opening,
		CurrentBalance: opening,
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateAccount(ctx, account)
	})
	if err != nil {
		return nil, storageError("failed to create account", err)
	}

	s.balances.Publish(ctx, map[int64]decimal.Decimal{account.ID: account.CurrentBalance})
	s.logger.WithFields(logrus.Fields{
		"account_id": account.ID,
		"code":       account.Code,
		"nature":     account.Nature,
	}).Info("Account created")
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, storageError("failed to get account", err)
	}
	return account, nil
}

// UpdateOpeningBalance changes the opening balance and recomputes the
// current balance in the same unit
func (s *AccountService) UpdateOpeningBalance(ctx context.Context, id int64, opening decimal.Decimal) (*models.Account, error) {
	opening = opening.Round(2)
	if !models.WithinMaxAmount(opening) {
		return nil, apperrors.NewFieldValidationError("validation failed", map[string]string{
			"opening_balance": tooLarge,
		})
	}

	var account *models.Account
	var balances map[int64]decimal.Decimal
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.LockAccount(ctx, id); err != nil {
			return err
		}
		if err := tx.UpdateOpeningBalance(ctx, id, opening); err != nil {
			return err
		}

		var err error
		if balances, err = s.balances.RecomputeTx(ctx, tx, id); err != nil {
			return err
		}
		account, err = tx.GetAccount(ctx, id)
		return err
	})
	if err != nil {
		return nil, storageError("failed to update opening balance", err)
	}

	s.balances.Publish(ctx, balances)
	return account, nil
}

// Delete removes an account that has never been posted to
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.LockAccount(ctx, id); err != nil {
			return err
		}

		n, err := tx.CountPostings(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.NewConflictError("account has ledger entries and cannot be deleted")
		}
		return tx.DeleteAccount(ctx, id)
	})
	if err != nil {
		return storageError("failed to delete account", err)
	}

	s.balances.Evict(ctx, id)
	return nil
}

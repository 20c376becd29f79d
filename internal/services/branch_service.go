package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/store"
)

type BranchService struct {
	store     store.Store
	logger    *logrus.Logger
	validator *ValidationHelper
}

func NewBranchService(st store.Store, logger *logrus.Logger) *BranchService {
	return &BranchService{store: st, logger: logger, validator: NewValidationHelper()}
}

// Create adds a branch. Codes are stored upper-cased.
func (s *BranchService) Create(ctx context.Context, req models.CreateBranchRequest) (*models.Branch, error) {
	if fields := s.validator.FieldErrors(&req); len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError("validation failed", fields)
	}

	branch := &models.Branch{Code: strings.ToUpper(req.Code), Name: req.Name}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateBranch(ctx, branch)
	})
	if err != nil {
		return nil, storageError("failed to create branch", err)
	}

	s.logger.WithField("code", branch.Code).Info("Branch created")
	return branch, nil
}

func (s *BranchService) Get(ctx context.Context, id int64) (*models.Branch, error) {
	branch, err := s.store.GetBranch(ctx, id)
	if err != nil {
		return nil, storageError("failed to get branch", err)
	}
	return branch, nil
}

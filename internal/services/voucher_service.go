package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/store"
)

// VoucherService issues per branch-day voucher numbers
type VoucherService struct {
	store  store.Store
	logger *logrus.Logger
	now    func() time.Time
}

func NewVoucherService(st store.Store, logger *logrus.Logger) *VoucherService {
	return &VoucherService{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// Generate advances the (branch, day) counter and returns the formatted
// voucher number. A zero date means today. The counter step commits on its
// own, so a number is consumed even when the posting that asked for it fails.
func (s *VoucherService) Generate(ctx context.Context, branchID int64, date time.Time) (string, error) {
	if branchID <= 0 {
		return "", apperrors.NewFieldValidationError("validation failed", map[string]string{
			"branch_id": "branch_id must be greater than 0",
		})
	}
	if date.IsZero() {
		date = s.now()
	}
	day := calendarDay(date)

	var voucherNo string
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		branch, err := tx.GetBranch(ctx, branchID)
		if err != nil {
			return err
		}

		n, err := tx.NextVoucherNumber(ctx, branchID, day)
		if err != nil {
			return err
		}
		voucherNo = FormatVoucherNumber(branch.Code, day, n)
		return nil
	})
	if err != nil {
		return "", storageError("failed to generate voucher number", err)
	}

	s.logger.WithFields(logrus.Fields{
		"branch_id":  branchID,
		"voucher_no": voucherNo,
	}).Debug("Voucher number issued")
	return voucherNo, nil
}

// FormatVoucherNumber renders BR-{CODE}-{YYYYMMDD}-{NNNN}. Numbers wider than
// four digits are printed in full.
func FormatVoucherNumber(branchCode string, day time.Time, n int) string {
	return fmt.Sprintf("BR-%s-%s-%04d", strings.ToUpper(branchCode), day.Format("20060102"), n)
}

// calendarDay drops the clock part of t, keeping its calendar date
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// storageError passes ledger errors through and hides everything else behind
// an internal error carrying message
func storageError(message string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.NewInternalError(message, err)
}

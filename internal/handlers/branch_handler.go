package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/services"
)

// NextVoucherRequest asks for the next voucher number of a branch
type NextVoucherRequest struct {
	BranchID int64  `json:"branch_id"`
	Date     string `json:"date,omitempty"`
}

// NextVoucherResponse carries a freshly issued voucher number
type NextVoucherResponse struct {
	VoucherNo string `json:"voucher_no"`
}

type BranchHandler struct {
	branches *services.BranchService
	vouchers *services.VoucherService
	logger   *logrus.Logger
}

func NewBranchHandler(branches *services.BranchService, vouchers *services.VoucherService, logger *logrus.Logger) *BranchHandler {
	return &BranchHandler{branches: branches, vouchers: vouchers, logger: logger}
}

// CreateBranch adds a branch
// @Summary Create branch
// @Tags Branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateBranchRequest true "Branch"
// @Success 201 {object} models.Branch
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /branches [post]
func (h *BranchHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}

	var req models.CreateBranchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	branch, err := h.branches.Create(r.Context(), req)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, branch)
}

// GetBranch returns a branch
// @Summary Get branch
// @Tags Branches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Branch ID"
// @Success 200 {object} models.Branch
// @Failure 404 {object} services.ErrorResponse
// @Router /branches/{id} [get]
func (h *BranchHandler) GetBranch(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	branch, err := h.branches.Get(r.Context(), id)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, branch)
}

// NextVoucher issues the next voucher number of a branch and day
// @Summary Next voucher number
// @Description Consumes a number of the branch-day sequence. The date defaults to today.
// @Tags Branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body NextVoucherRequest true "Branch and day"
// @Success 201 {object} NextVoucherResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /vouchers/next [post]
func (h *BranchHandler) NextVoucher(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req NextVoucherRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var date time.Time
	if req.Date != "" {
		d, err := time.Parse(models.DateLayout, req.Date)
		if err != nil {
			services.SendAppError(w, h.logger, apperrors.NewFieldValidationError("validation failed", map[string]string{
				"date": "date must be a date in YYYY-MM-DD format",
			}))
			return
		}
		date = d
	}
	if actor.IsBranchScoped() && (actor.BranchID == nil || *actor.BranchID != req.BranchID) {
		services.SendAppError(w, h.logger, apperrors.NewAuthorizationError("branch managers may only act on their own branch"))
		return
	}

	voucherNo, err := h.vouchers.Generate(r.Context(), req.BranchID, date)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, NextVoucherResponse{VoucherNo: voucherNo})
}

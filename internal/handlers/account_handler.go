package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/services"
)

// OpeningBalanceRequest sets an account's opening balance
type OpeningBalanceRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// BalanceResponse is the current balance of one account
type BalanceResponse struct {
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

type AccountHandler struct {
	accounts *services.AccountService
	balances *services.BalanceService
	logger   *logrus.Logger
}

func NewAccountHandler(accounts *services.AccountService, balances *services.BalanceService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, balances: balances, logger: logger}
}

// CreateAccount adds an account to the chart of accounts
// @Summary Create account
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateAccountRequest true "Account"
// @Success 201 {object} models.Account
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}

	var req models.CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.Create(r.Context(), req)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, account)
}

// GetAccount returns an account
// @Summary Get account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} models.Account
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, account)
}

// DeleteAccount removes an account without postings
// @Summary Delete account
// @Tags Accounts
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 204
// @Failure 409 {object} services.ErrorResponse
// @Router /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateOpeningBalance changes the opening balance and recomputes the account
// @Summary Update opening balance
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param request body OpeningBalanceRequest true "Opening balance"
// @Success 200 {object} models.Account
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{id}/opening-balance [put]
func (h *AccountHandler) UpdateOpeningBalance(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req OpeningBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.UpdateOpeningBalance(r.Context(), id, req.OpeningBalance)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, account)
}

// RecomputeBalance rebuilds the current balance from the account's postings
// @Summary Recompute balance
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} BalanceResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{id}/recompute [post]
func (h *AccountHandler) RecomputeBalance(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	balance, err := h.balances.Recompute(r.Context(), id)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, BalanceResponse{AccountID: id, Balance: balance})
}

// GetBalance returns the current balance, served from the cache when warm
// @Summary Get balance
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} BalanceResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{id}/balance [get]
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	balance, err := h.balances.Balance(r.Context(), id)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, BalanceResponse{AccountID: id, Balance: balance})
}

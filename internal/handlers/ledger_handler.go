package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/apperrors"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/services"
)

// StatementResponse is an account statement with its running balance rows
type StatementResponse struct {
	Account        *models.Account       `json:"account"`
	OpeningBalance decimal.Decimal       `json:"opening_balance"`
	ClosingBalance decimal.Decimal       `json:"closing_balance"`
	Rows           []models.StatementRow `json:"rows"`
}

type LedgerHandler struct {
	statements *services.StatementService
	logger     *logrus.Logger
}

func NewLedgerHandler(statements *services.StatementService, logger *logrus.Logger) *LedgerHandler {
	return &LedgerHandler{statements: statements, logger: logger}
}

// GetLedger returns the statement of one account
// @Summary Account statement
// @Description Postings of an account in date order with a running balance. Branch managers only see their own branch.
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param account_id query int true "Account ID"
// @Param branch_id query int false "Branch ID"
// @Param date_from query string false "First day (YYYY-MM-DD)"
// @Param date_to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} StatementResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /ledger [get]
func (h *LedgerHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	fields := make(map[string]string)
	accountID := parseQueryID(q.Get("account_id"), "account_id", fields)
	if accountID == nil && fields["account_id"] == "" {
		fields["account_id"] = "account_id is required"
	}
	filter := models.StatementFilter{
		BranchID: parseQueryID(q.Get("branch_id"), "branch_id", fields),
		DateFrom: parseQueryDate(q.Get("date_from"), "date_from", fields),
		DateTo:   parseQueryDate(q.Get("date_to"), "date_to", fields),
	}
	if len(fields) > 0 {
		services.SendAppError(w, h.logger, apperrors.NewFieldValidationError("validation failed", fields))
		return
	}

	statement, err := h.statements.Statement(r.Context(), *accountID, filter, actor)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	rows, err := statement.Collect(r.Context())
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}

	closing := statement.OpeningBalance
	if len(rows) > 0 {
		closing = rows[len(rows)-1].Balance
	}
	services.SendJSON(w, http.StatusOK, StatementResponse{
		Account:        statement.Account,
		OpeningBalance: statement.OpeningBalance,
		ClosingBalance: closing,
		Rows:           rows,
	})
}

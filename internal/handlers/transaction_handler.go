package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/services"
)

type TransactionHandler struct {
	service *services.TransactionService
	logger  *logrus.Logger
}

func NewTransactionHandler(service *services.TransactionService, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{service: service, logger: logger}
}

// CreateTransaction posts a two-account transfer
// @Summary Create transaction
// @Description Debit the destination and credit the source account. The voucher number is generated when omitted.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateTransactionRequest true "Transfer"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req models.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.service.Create(r.Context(), req, actor)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, txn)
}

// CreateJournal posts a balanced set of entries
// @Summary Create journal entry
// @Description Post caller-supplied debit and credit lines that must balance
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateJournalRequest true "Journal"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /journals [post]
func (h *TransactionHandler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req models.CreateJournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.service.CreateJournal(r.Context(), req, actor)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, txn)
}

// GetTransaction returns a transaction with its entries
// @Summary Get transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} services.ErrorResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(w, r); !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	txn, err := h.service.Get(r.Context(), id)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, txn)
}

// UpdateTransaction edits a pending transaction
// @Summary Update transaction
// @Description Only pending transactions can be edited. Entries, when given, replace the existing ones.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body models.UpdateTransactionRequest true "Changes"
// @Success 200 {object} models.Transaction
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.service.Update(r.Context(), id, req, actor)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, txn)
}

// ApproveTransaction moves a pending transaction to approved
// @Summary Approve transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 409 {object} services.ErrorResponse
// @Router /transactions/{id}/approve [post]
func (h *TransactionHandler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

// CancelTransaction moves a pending transaction to cancelled
// @Summary Cancel transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 409 {object} services.ErrorResponse
// @Router /transactions/{id}/cancel [post]
func (h *TransactionHandler) CancelTransaction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

func (h *TransactionHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id int64, actor models.User) (*models.Transaction, error)) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	txn, err := apply(r.Context(), id, actor)
	if err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, txn)
}

// DeleteTransaction removes a pending transaction and restores balances
// @Summary Delete transaction
// @Tags Transactions
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 409 {object} services.ErrorResponse
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, actor); err != nil {
		services.SendAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

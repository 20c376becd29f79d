package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers groups the API handlers mounted under /api/v1
type Handlers struct {
	Transactions *TransactionHandler
	Ledger       *LedgerHandler
	Accounts     *AccountHandler
	Branches     *BranchHandler
}

// Mount registers the ledger routes on r behind auth
func (h *Handlers) Mount(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/transactions", h.Transactions.CreateTransaction)
		r.Get("/transactions/{id}", h.Transactions.GetTransaction)
		r.Put("/transactions/{id}", h.Transactions.UpdateTransaction)
		r.Delete("/transactions/{id}", h.Transactions.DeleteTransaction)
		r.Post("/transactions/{id}/approve", h.Transactions.ApproveTransaction)
		r.Post("/transactions/{id}/cancel", h.Transactions.CancelTransaction)
		r.Post("/journals", h.Transactions.CreateJournal)

		r.Get("/ledger", h.Ledger.GetLedger)

		r.Post("/accounts", h.Accounts.CreateAccount)
		r.Get("/accounts/{id}", h.Accounts.GetAccount)
		r.Delete("/accounts/{id}", h.Accounts.DeleteAccount)
		r.Put("/accounts/{id}/opening-balance", h.Accounts.UpdateOpeningBalance)
		r.Post("/accounts/{id}/recompute", h.Accounts.RecomputeBalance)
		r.Get("/accounts/{id}/balance", h.Accounts.GetBalance)

		r.Post("/branches", h.Branches.CreateBranch)
		r.Get("/branches/{id}", h.Branches.GetBranch)
		r.Post("/vouchers/next", h.Branches.NextVoucher)
	})
}

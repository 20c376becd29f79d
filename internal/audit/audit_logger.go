// Package audit writes the structured trail of ledger mutations.
package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	EventPosted            = "POSTED"
	EventUpdated           = "UPDATED"
	EventApproved          = "APPROVED"
	EventCancelled         = "CANCELLED"
	EventDeleted           = "DELETED"
	EventBalanceRecomputed = "BALANCE_RECOMPUTED"
	EventError             = "ERROR"
)

type AuditEvent struct {
	ID            string
	Timestamp     time.Time
	EventType     string
	TransactionID int64
	VoucherNo     string
	AccountID     int64
	ActorID       int64
	Amount        decimal.Decimal
	Status        string
	Details       map[string]string
}

type AuditLogger struct {
	logger *logrus.Logger
	now    func() time.Time
}

func NewAuditLogger(logger *logrus.Logger) *AuditLogger {
	return &AuditLogger{logger: logger, now: time.Now}
}

// LogPosted records a new transaction with its voucher and total
func (a *AuditLogger) LogPosted(transactionID int64, voucherNo string, actorID int64, total decimal.Decimal) {
	a.log(AuditEvent{
		EventType:     EventPosted,
		TransactionID: transactionID,
		VoucherNo:     voucherNo,
		ActorID:       actorID,
		Amount:        total,
		Status:        "SUCCESS",
	})
}

// LogTransition records a lifecycle change (approve, cancel, update, delete)
func (a *AuditLogger) LogTransition(eventType string, transactionID int64, voucherNo string, actorID int64, from, to string) {
	a.log(AuditEvent{
		EventType:     eventType,
		TransactionID: transactionID,
		VoucherNo:     voucherNo,
		ActorID:       actorID,
		Status:        "SUCCESS",
		Details:       map[string]string{"from": from, "to": to},
	})
}

func (a *AuditLogger) LogBalance(accountID int64, balance decimal.Decimal) {
	a.log(AuditEvent{
		EventType: EventBalanceRecomputed,
		AccountID: accountID,
		Amount:    balance,
		Status:    "SUCCESS",
	})
}

func (a *AuditLogger) LogError(operation string, transactionID int64, actorID int64, err error) {
	a.log(AuditEvent{
		EventType:     EventError,
		TransactionID: transactionID,
		ActorID:       actorID,
		Status:        "FAILED",
		Details:       map[string]string{"operation": operation, "error": err.Error()},
	})
}

func (a *AuditLogger) log(event AuditEvent) {
	event.ID = uuid.NewString()
	event.Timestamp = a.now()

	fields := logrus.Fields{
		"audit":      true,
		"event_id":   event.ID,
		"event_type": event.EventType,
		"status":     event.Status,
		"timestamp":  event.Timestamp.Format(time.RFC3339Nano),
	}
	if event.TransactionID != 0 {
		fields["transaction_id"] = event.TransactionID
	}
	if event.VoucherNo != "" {
		fields["voucher_no"] = event.VoucherNo
	}
	if event.AccountID != 0 {
		fields["account_id"] = event.AccountID
	}
	if event.ActorID != 0 {
		fields["actor_id"] = event.ActorID
	}
	if !event.Amount.IsZero() || event.EventType == EventBalanceRecomputed {
		fields["amount"] = event.Amount.StringFixed(2)
	}
	for k, v := range event.Details {
		fields[k] = v
	}

	entry := a.logger.WithFields(fields)
	if event.EventType == EventError {
		entry.Warn("AUDIT")
		return
	}
	entry.Info("AUDIT")
}

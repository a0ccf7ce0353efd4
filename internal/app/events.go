package app

import (
	"context"
	"log"

	"github.com/loukys/codestore/internal/domain"
)

// Notifier receives domain events emitted by the purchase flow. The contract
// is fire-and-forget: implementations must not fail the purchase.
type Notifier interface {
	SaleCompleted(ctx context.Context, rec domain.HistoryRecord)
	PaymentUnreconciled(ctx context.Context, rec domain.Reconciliation)
}

// LogNotifier writes events to a logger. Stands in for admin alerting
// (telegram, email) in deployments without a real channel.
type LogNotifier struct {
	Logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) SaleCompleted(_ context.Context, rec domain.HistoryRecord) {
	n.Logger.Printf(
		"sale completed id=%s purchaser=%s product=%s price=%d",
		rec.ID, rec.PurchaserID, rec.ProductID, rec.Price,
	)
}

func (n *LogNotifier) PaymentUnreconciled(_ context.Context, rec domain.Reconciliation) {
	n.Logger.Printf(
		"ALERT: unreconciled payment id=%s purchaser=%s product=%s trx=%s price=%d reason=%q",
		rec.ID, rec.PurchaserID, rec.ProductID, rec.TransactionID, rec.Price, rec.Reason,
	)
}

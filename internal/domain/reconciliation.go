package domain

import "time"

// Reconciliation marks a payment that was confirmed by the gateway but could
// not be fulfilled (the stock pool drained between initiation and
// confirmation). These require manual resolution and are never dropped.
type Reconciliation struct {
	ID            string
	PurchaserID   string
	ProductID     string
	TransactionID string
	Price         int64
	Reason        string
	CreatedAt     time.Time
}

package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusExpired   PaymentStatus = "expired"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PendingPayment is an in-flight purchase attempt. A purchaser holds at most
// one at a time; starting a new purchase replaces the previous entry.
type PendingPayment struct {
	PurchaserID   string
	ProductID     string
	Price         int64
	TransactionID string
	Status        PaymentStatus
	CreatedAt     time.Time
}

// Expired reports whether the entry is past its payment window. Expiry is
// checked lazily on access; there is no background sweep.
func (p PendingPayment) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(p.CreatedAt) > timeout
}

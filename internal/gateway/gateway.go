package gateway

import (
	"context"
	"errors"
	"fmt"
)

// DepositStatus is the gateway-reported state of a payment intent.
type DepositStatus string

const (
	StatusPending DepositStatus = "pending"
	StatusSuccess DepositStatus = "success"
	StatusFailed  DepositStatus = "failed"
)

// Deposit is a created payment intent: the external transaction id plus the
// QR payload the purchaser scans to pay.
type Deposit struct {
	ID        string
	Amount    int64
	QRPayload string
}

// Client wraps the external deposit API. Calls are blocking I/O with bounded
// timeouts; callers must not hold storage locks while invoking them.
type Client interface {
	CreateDeposit(ctx context.Context, amount int64) (Deposit, error)
	DepositStatus(ctx context.Context, transactionID string) (DepositStatus, error)
	CancelDeposit(ctx context.Context, transactionID string) error
}

// ErrUnavailable covers transport failures, non-2xx responses and unparseable
// bodies. Safe to retry.
var ErrUnavailable = errors.New("payment gateway unavailable")

// RejectedError is returned when the gateway explicitly declines a request.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "payment gateway rejected request"
	}
	return fmt.Sprintf("payment gateway rejected request: %s", e.Message)
}

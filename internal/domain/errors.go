package domain

import "errors"

var (
	ErrProductNotFound        = errors.New("product not found")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrOutOfStock             = errors.New("out of stock")
	ErrNoPendingPayment       = errors.New("no pending payment")
	ErrPaymentExpired         = errors.New("payment expired")
	ErrPurchaserRequired      = errors.New("purchaser id required")
	ErrConcurrentModification = errors.New("concurrent modification")
)

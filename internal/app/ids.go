package app

import "github.com/google/uuid"

func newID() string {
	return uuid.NewString()
}

// newTransactionID produces the caller-visible id for history records.
func newTransactionID() string {
	return "TX-" + uuid.NewString()
}

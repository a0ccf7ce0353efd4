package domain

import "time"

const HistoryStatusSuccess = "success"

// HistoryRecord is one completed sale. Records are append-only and immutable
// once written; only successful purchases are persisted.
type HistoryRecord struct {
	ID          string
	PurchaserID string
	ProductID   string
	Code        string
	Price       int64
	Status      string
	CreatedAt   time.Time
}

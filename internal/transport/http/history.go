package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/loukys/codestore/internal/domain"
)

// HistoryReader is the minimal interface needed to serve purchase history.
type HistoryReader interface {
	ForPurchaser(ctx context.Context, purchaserID string) ([]domain.HistoryRecord, error)
}

// HandlePurchaserHistory returns an HTTP handler for a purchaser's history.
func HandlePurchaserHistory(svc HistoryReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		purchaserID, ok := parseHistoryPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		records, err := svc.ForPurchaser(r.Context(), purchaserID)
		if err != nil {
			if errors.Is(err, domain.ErrPurchaserRequired) {
				writeError(w, http.StatusBadRequest, codePurchaserRequired, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(historyRecordsResponse(records))
	}
}

func parseHistoryPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 {
		return "", false
	}
	if parts[0] != "history" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type historyRecordResponse struct {
	ID          string    `json:"id"`
	PurchaserID string    `json:"purchaser_id"`
	ProductID   string    `json:"product_id"`
	Code        string    `json:"code"`
	Price       int64     `json:"price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func historyRecordsResponse(records []domain.HistoryRecord) []historyRecordResponse {
	resp := make([]historyRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, historyRecordResponse{
			ID:          rec.ID,
			PurchaserID: rec.PurchaserID,
			ProductID:   rec.ProductID,
			Code:        rec.Code,
			Price:       rec.Price,
			Status:      rec.Status,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return resp
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/loukys/codestore/internal/app"
	"github.com/loukys/codestore/internal/domain"
)

// AdminReporter is the minimal interface needed for the dashboard endpoints.
type AdminReporter interface {
	Stats(ctx context.Context) (app.StatsResult, error)
	Export(ctx context.Context) (app.ExportBundle, error)
}

// SalesReader is the minimal interface needed to list recent sales.
type SalesReader interface {
	Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
}

// StockAdmin is the minimal interface needed for stock and price management.
type StockAdmin interface {
	AddCodes(ctx context.Context, productID string, codes []string) (int, error)
	SetPrice(ctx context.Context, productID string, price int64) error
}

// HandleAdminStats returns an HTTP handler for live store counters.
func HandleAdminStats(svc AdminReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := statsResponse{
			StockCounts:     stats.StockCounts,
			PendingPayments: stats.PendingPayments,
			SalesToday:      stats.SalesToday,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleAdminExport returns an HTTP handler for the backup snapshot.
func HandleAdminExport(svc AdminReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		bundle, err := svc.Export(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := exportResponse{
			GeneratedAt: bundle.GeneratedAt,
			Stock:       bundle.Stock,
			Prices:      bundle.Prices,
			History:     historyRecordsResponse(bundle.History),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleAdminSales returns an HTTP handler for recent sales, newest first.
func HandleAdminSales(svc SalesReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid limit")
				return
			}
			limit = parsed
		}

		records, err := svc.Recent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(historyRecordsResponse(records))
	}
}

// HandleAdminProduct returns an HTTP handler for the codes and price
// subroutes under /admin/products/{productID}/.
func HandleAdminProduct(svc StockAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, action, ok := parseAdminProductPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		switch action {
		case "codes":
			var req addCodesRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if len(req.Codes) == 0 {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "codes are required")
				return
			}

			added, err := svc.AddCodes(r.Context(), productID, req.Codes)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
					return
				}
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(addCodesResponse{Added: added})
		case "price":
			var req setPriceRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			if err := svc.SetPrice(r.Context(), productID, req.Price); err != nil {
				switch {
				case errors.Is(err, domain.ErrInvalidPrice):
					writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
				case errors.Is(err, domain.ErrProductNotFound):
					writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(setPriceResponse{ProductID: productID, Price: req.Price})
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func parseAdminProductPath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", "", false
	}
	if parts[0] != "admin" || parts[1] != "products" || parts[2] == "" || parts[3] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}

type statsResponse struct {
	StockCounts     map[string]int `json:"stock_counts"`
	PendingPayments int            `json:"pending_payments"`
	SalesToday      int            `json:"sales_today"`
}

type exportResponse struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Stock       map[string][]string     `json:"stock"`
	Prices      map[string]int64        `json:"prices"`
	History     []historyRecordResponse `json:"history"`
}

type addCodesRequest struct {
	Codes []string `json:"codes"`
}

type addCodesResponse struct {
	Added int `json:"added"`
}

type setPriceRequest struct {
	Price int64 `json:"price"`
}

type setPriceResponse struct {
	ProductID string `json:"product_id"`
	Price     int64  `json:"price"`
}

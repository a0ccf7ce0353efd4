package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/loukys/codestore/internal/domain"
)

// ProductLister is the minimal interface needed to list the catalog.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]domain.ProductStock, error)
}

// HandleListProducts returns an HTTP handler for the public catalog.
func HandleListProducts(svc ProductLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		products, err := svc.ListProducts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]productResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, productResponse{
				ID:           p.ID,
				Name:         p.Name,
				DurationDays: p.DurationDays,
				Price:        p.Price,
				Stock:        p.StockCount,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type productResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DurationDays int    `json:"duration_days"`
	Price        int64  `json:"price"`
	Stock        int    `json:"stock"`
}

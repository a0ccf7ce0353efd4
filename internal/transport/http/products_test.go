package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loukys/codestore/internal/domain"
)

func TestHandleListProducts(t *testing.T) {
	t.Parallel()

	t.Run("returns catalog with stock", func(t *testing.T) {
		t.Parallel()
		svc := &stubProductLister{
			products: []domain.ProductStock{
				{Product: domain.Product{ID: "VIP7D", Name: "VIP 7 Hari", DurationDays: 7, Price: 20000}, StockCount: 3},
				{Product: domain.Product{ID: "VIP30D", Name: "VIP 30 Hari", DurationDays: 30, Price: 60000}, StockCount: 0},
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		rec := httptest.NewRecorder()

		HandleListProducts(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp []productResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp) != 2 {
			t.Fatalf("expected 2 products, got %d", len(resp))
		}
		if resp[0].ID != "VIP7D" || resp[0].Stock != 3 || resp[0].Price != 20000 {
			t.Fatalf("unexpected first product: %+v", resp[0])
		}
		if resp[1].Stock != 0 {
			t.Fatalf("expected sold-out product listed with stock 0, got %+v", resp[1])
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		rec := httptest.NewRecorder()

		HandleListProducts(&stubProductLister{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})

	t.Run("service failure", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		rec := httptest.NewRecorder()

		HandleListProducts(&stubProductLister{err: errors.New("boom")}).ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
	})
}

type stubProductLister struct {
	products []domain.ProductStock
	err      error
}

func (s *stubProductLister) ListProducts(_ context.Context) ([]domain.ProductStock, error) {
	return s.products, s.err
}

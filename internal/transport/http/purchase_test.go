package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/loukys/codestore/internal/app"
	"github.com/loukys/codestore/internal/domain"
	"github.com/loukys/codestore/internal/gateway"
)

func TestHandleInitiatePurchase(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	successView := app.PaymentView{
		TransactionID: "T1",
		ProductID:     "VIP7D",
		Amount:        20000,
		QRPayload:     "QR",
		ExpiresAt:     now.Add(time.Hour),
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"purchaser_id":"user-1","product_id":"VIP7D"}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"transaction_id":"T1"`,
		},
		{
			name:           "invalid json",
			body:           `{"purchaser_id":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing purchaser",
			body:           `{"product_id":"VIP7D"}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codePurchaserRequired,
		},
		{
			name:           "missing product",
			body:           `{"purchaser_id":"user-1"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "product not found",
			body:           `{"purchaser_id":"user-1","product_id":"VIP99D"}`,
			serviceErr:     domain.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "out of stock",
			body:           `{"purchaser_id":"user-1","product_id":"VIP7D"}`,
			serviceErr:     domain.ErrOutOfStock,
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeOutOfStock,
		},
		{
			name:           "gateway rejected",
			body:           `{"purchaser_id":"user-1","product_id":"VIP7D"}`,
			serviceErr:     &gateway.RejectedError{Message: "amount too low"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedSubstr: "amount too low",
		},
		{
			name:           "gateway unavailable",
			body:           `{"purchaser_id":"user-1","product_id":"VIP7D"}`,
			serviceErr:     gateway.ErrUnavailable,
			expectedStatus: http.StatusBadGateway,
			expectedSubstr: codeGatewayUnavailable,
		},
		{
			name:           "internal error",
			body:           `{"purchaser_id":"user-1","product_id":"VIP7D"}`,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubPurchaseService{
				view: successView,
				err:  tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler := HandleInitiatePurchase(svc)
			handler.ServeHTTP(rec, req)

			res := rec.Result()
			if res.StatusCode != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, res.StatusCode)
			}
			if tt.expectedSubstr != "" {
				body := rec.Body.String()
				if !strings.Contains(body, tt.expectedSubstr) {
					t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
				}
			}
		})
	}
}

func TestHandlePurchaseAction_Poll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		result         app.PollResult
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "fulfilled",
			result:         app.PollResult{State: app.PollStateFulfilled, Code: "code-a"},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"code":"code-a"`,
		},
		{
			name:           "still pending",
			result:         app.PollResult{State: app.PollStatePending},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"status":"pending"`,
		},
		{
			name:           "deposit failed",
			result:         app.PollResult{State: app.PollStateFailed},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"status":"failed"`,
		},
		{
			name:           "no pending payment",
			serviceErr:     domain.ErrNoPendingPayment,
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeNoPendingPayment,
		},
		{
			name:           "expired",
			serviceErr:     domain.ErrPaymentExpired,
			expectedStatus: http.StatusConflict,
			expectedSubstr: codePaymentExpired,
		},
		{
			name:           "out of stock at fulfillment",
			serviceErr:     domain.ErrOutOfStock,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "gateway unavailable",
			serviceErr:     gateway.ErrUnavailable,
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "internal error",
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubPurchaseService{
				pollResult: tt.result,
				err:        tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/purchases/user-1/poll", nil)
			rec := httptest.NewRecorder()

			handler := HandlePurchaseAction(svc)
			handler.ServeHTTP(rec, req)

			res := rec.Result()
			if res.StatusCode != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, res.StatusCode)
			}
			if tt.expectedSubstr != "" {
				body := rec.Body.String()
				if !strings.Contains(body, tt.expectedSubstr) {
					t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
				}
			}
			if svc.purchaserID != "user-1" {
				t.Fatalf("expected purchaser user-1, got %q", svc.purchaserID)
			}
		})
	}
}

func TestHandlePurchaseAction_Cancel(t *testing.T) {
	t.Parallel()

	svc := &stubPurchaseService{}
	req := httptest.NewRequest(http.MethodPost, "/purchases/user-1/cancel", nil)
	rec := httptest.NewRecorder()

	HandlePurchaseAction(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"cancelled"`) {
		t.Fatalf("expected cancelled status, got %q", rec.Body.String())
	}
	if !svc.cancelCalled {
		t.Fatalf("expected cancel to reach the service")
	}
}

func TestHandlePurchaseAction_PathAndMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "unknown action", method: http.MethodPost, path: "/purchases/user-1/refund", expectedStatus: http.StatusNotFound},
		{name: "missing purchaser", method: http.MethodPost, path: "/purchases//poll", expectedStatus: http.StatusNotFound},
		{name: "wrong depth", method: http.MethodPost, path: "/purchases/user-1", expectedStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodGet, path: "/purchases/user-1/poll", expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			HandlePurchaseAction(&stubPurchaseService{}).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

type stubPurchaseService struct {
	view       app.PaymentView
	pollResult app.PollResult
	err        error

	purchaserID  string
	cancelCalled bool
}

func (s *stubPurchaseService) Initiate(_ context.Context, purchaserID, _ string) (app.PaymentView, error) {
	s.purchaserID = purchaserID
	return s.view, s.err
}

func (s *stubPurchaseService) Poll(_ context.Context, purchaserID string) (app.PollResult, error) {
	s.purchaserID = purchaserID
	return s.pollResult, s.err
}

func (s *stubPurchaseService) Cancel(_ context.Context, purchaserID string) error {
	s.purchaserID = purchaserID
	s.cancelCalled = true
	return s.err
}

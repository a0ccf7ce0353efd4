package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/loukys/codestore/internal/app"
	"github.com/loukys/codestore/internal/domain"
	"github.com/loukys/codestore/internal/gateway"
)

// PurchaseStarter is the minimal interface needed to initiate a purchase.
type PurchaseStarter interface {
	Initiate(ctx context.Context, purchaserID, productID string) (app.PaymentView, error)
}

// PurchaseTracker is the minimal interface needed to poll or cancel a
// pending purchase.
type PurchaseTracker interface {
	Poll(ctx context.Context, purchaserID string) (app.PollResult, error)
	Cancel(ctx context.Context, purchaserID string) error
}

// HandleInitiatePurchase returns an HTTP handler for starting purchases.
func HandleInitiatePurchase(svc PurchaseStarter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req initiatePurchaseRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.PurchaserID == "" {
			writeError(w, http.StatusBadRequest, codePurchaserRequired, domain.ErrPurchaserRequired.Error())
			return
		}
		if req.ProductID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "product_id is required")
			return
		}

		view, err := svc.Initiate(r.Context(), req.PurchaserID, req.ProductID)
		if err != nil {
			writePurchaseError(w, err)
			return
		}

		resp := paymentViewResponse{
			TransactionID: view.TransactionID,
			ProductID:     view.ProductID,
			Amount:        view.Amount,
			QRPayload:     view.QRPayload,
			ExpiresAt:     view.ExpiresAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandlePurchaseAction returns an HTTP handler for the poll and cancel
// subroutes under /purchases/{purchaserID}/.
func HandlePurchaseAction(svc PurchaseTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchaserID, action, ok := parsePurchaseActionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		switch action {
		case "poll":
			res, err := svc.Poll(r.Context(), purchaserID)
			if err != nil {
				writePurchaseError(w, err)
				return
			}
			resp := pollResponse{Status: string(res.State)}
			if res.State == app.PollStateFulfilled {
				resp.Code = res.Code
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		case "cancel":
			if err := svc.Cancel(r.Context(), purchaserID); err != nil {
				writePurchaseError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(cancelResponse{Status: "cancelled"})
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

// writePurchaseError maps purchase lifecycle failures onto the shared error
// body. Gateway outages surface as 502 so callers can retry; explicit gateway
// rejections carry the upstream message on a 422.
func writePurchaseError(w http.ResponseWriter, err error) {
	var rejected *gateway.RejectedError
	switch {
	case errors.Is(err, domain.ErrPurchaserRequired):
		writeError(w, http.StatusBadRequest, codePurchaserRequired, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case errors.Is(err, domain.ErrOutOfStock):
		writeError(w, http.StatusConflict, codeOutOfStock, err.Error())
	case errors.Is(err, domain.ErrNoPendingPayment):
		writeError(w, http.StatusConflict, codeNoPendingPayment, err.Error())
	case errors.Is(err, domain.ErrPaymentExpired):
		writeError(w, http.StatusConflict, codePaymentExpired, err.Error())
	case errors.As(err, &rejected):
		writeError(w, http.StatusUnprocessableEntity, codePaymentRejected, rejected.Message)
	case errors.Is(err, gateway.ErrUnavailable):
		writeError(w, http.StatusBadGateway, codeGatewayUnavailable, "payment gateway unavailable")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func parsePurchaseActionPath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "purchases" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type initiatePurchaseRequest struct {
	PurchaserID string `json:"purchaser_id"`
	ProductID   string `json:"product_id"`
}

type paymentViewResponse struct {
	TransactionID string    `json:"transaction_id"`
	ProductID     string    `json:"product_id"`
	Amount        int64     `json:"amount"`
	QRPayload     string    `json:"qr_payload"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type pollResponse struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
}

type cancelResponse struct {
	Status string `json:"status"`
}

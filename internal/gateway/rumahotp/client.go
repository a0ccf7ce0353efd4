// Package rumahotp implements the gateway.Client contract against the
// rumahotp QRIS deposit API.
package rumahotp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/loukys/codestore/internal/gateway"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type depositData struct {
	ID     json.Number `json:"id"`
	Amount int64       `json:"amount"`
	QR     string      `json:"qr"`
	Status string      `json:"status"`
}

type depositResponse struct {
	Success bool        `json:"success"`
	Data    depositData `json:"data"`
	Message string      `json:"message"`
}

func (c *Client) CreateDeposit(ctx context.Context, amount int64) (gateway.Deposit, error) {
	query := url.Values{
		"amount":     {strconv.FormatInt(amount, 10)},
		"payment_id": {"qris"},
	}

	var resp depositResponse
	if err := c.get(ctx, "/deposit/create", query, &resp); err != nil {
		return gateway.Deposit{}, err
	}
	if !resp.Success {
		return gateway.Deposit{}, &gateway.RejectedError{Message: resp.Message}
	}
	if resp.Data.ID.String() == "" {
		return gateway.Deposit{}, fmt.Errorf("%w: create response missing deposit id", gateway.ErrUnavailable)
	}

	return gateway.Deposit{
		ID:        resp.Data.ID.String(),
		Amount:    resp.Data.Amount,
		QRPayload: resp.Data.QR,
	}, nil
}

func (c *Client) DepositStatus(ctx context.Context, transactionID string) (gateway.DepositStatus, error) {
	query := url.Values{"deposit_id": {transactionID}}

	var resp depositResponse
	if err := c.get(ctx, "/deposit/get_status", query, &resp); err != nil {
		return "", err
	}

	switch resp.Data.Status {
	case "pending":
		return gateway.StatusPending, nil
	case "success":
		return gateway.StatusSuccess, nil
	default:
		// Expired and cancelled deposits surface here as well.
		return gateway.StatusFailed, nil
	}
}

func (c *Client) CancelDeposit(ctx context.Context, transactionID string) error {
	query := url.Values{"deposit_id": {transactionID}}

	var resp depositResponse
	return c.get(ctx, "/deposit/cancel", query, &resp)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", gateway.ErrUnavailable, err)
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", gateway.ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", gateway.ErrUnavailable, err)
	}
	return nil
}

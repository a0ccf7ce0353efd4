package app

import (
	"context"
	"errors"
	"time"

	"github.com/loukys/codestore/internal/clock"
	"github.com/loukys/codestore/internal/domain"
	"github.com/loukys/codestore/internal/gateway"
)

type PurchaseRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	CountStock(ctx context.Context, productID string) (int, error)
	UpsertPendingPayment(ctx context.Context, p domain.PendingPayment) error
	GetPendingPayment(ctx context.Context, purchaserID string) (*domain.PendingPayment, error)
	DeletePendingPayment(ctx context.Context, purchaserID string) error
	DeletePendingPaymentMatching(ctx context.Context, purchaserID, transactionID string) (bool, error)
	TakeOneCode(ctx context.Context, productID string) (string, error)
	CreateHistoryRecord(ctx context.Context, rec domain.HistoryRecord) error
	CreateReconciliation(ctx context.Context, rec domain.Reconciliation) error
}

// PurchaseService drives the purchase lifecycle: initiate a deposit, poll the
// gateway for confirmation, fulfill by allocating a code, record history.
type PurchaseService struct {
	repo     PurchaseRepository
	gateway  gateway.Client
	notifier Notifier
	clock    clock.Clock
	timeout  time.Duration
}

const defaultPaymentTimeout = time.Hour

// maxTxAttempts bounds retries when the store reports a concurrent
// modification during fulfillment.
const maxTxAttempts = 3

func NewPurchaseService(repo PurchaseRepository, gw gateway.Client, notifier Notifier, clk clock.Clock, opts ...PurchaseServiceOption) *PurchaseService {
	svc := &PurchaseService{
		repo:     repo,
		gateway:  gw,
		notifier: notifier,
		clock:    clk,
		timeout:  defaultPaymentTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type PurchaseServiceOption func(*PurchaseService)

// WithPaymentTimeout overrides how long a pending payment stays valid.
func WithPaymentTimeout(d time.Duration) PurchaseServiceOption {
	return func(s *PurchaseService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// PaymentView is what the purchaser needs to complete payment.
type PaymentView struct {
	TransactionID string
	ProductID     string
	Amount        int64
	QRPayload     string
	ExpiresAt     time.Time
}

type PollState string

const (
	PollStatePending   PollState = "pending"
	PollStateFulfilled PollState = "fulfilled"
	PollStateFailed    PollState = "failed"
)

// PollResult reports the outcome of a status check. Code is set only when
// State is PollStateFulfilled.
type PollResult struct {
	State PollState
	Code  string
}

// Initiate starts a purchase: verifies stock, creates a deposit with the
// gateway and tracks the attempt. Any gateway failure aborts with no state
// change. An earlier pending attempt by the same purchaser is replaced.
func (s *PurchaseService) Initiate(ctx context.Context, purchaserID, productID string) (PaymentView, error) {
	if purchaserID == "" {
		return PaymentView{}, domain.ErrPurchaserRequired
	}

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return PaymentView{}, err
	}

	count, err := s.repo.CountStock(ctx, productID)
	if err != nil {
		return PaymentView{}, err
	}
	if count == 0 {
		return PaymentView{}, domain.ErrOutOfStock
	}

	deposit, err := s.gateway.CreateDeposit(ctx, product.Price)
	if err != nil {
		return PaymentView{}, err
	}

	now := s.clock.Now()
	pending := domain.PendingPayment{
		PurchaserID:   purchaserID,
		ProductID:     product.ID,
		Price:         product.Price,
		TransactionID: deposit.ID,
		Status:        domain.PaymentStatusPending,
		CreatedAt:     now,
	}
	if err := s.repo.UpsertPendingPayment(ctx, pending); err != nil {
		return PaymentView{}, err
	}

	return PaymentView{
		TransactionID: deposit.ID,
		ProductID:     product.ID,
		Amount:        product.Price,
		QRPayload:     deposit.QRPayload,
		ExpiresAt:     now.Add(s.timeout),
	}, nil
}

// Poll checks the gateway for the purchaser's pending payment and fulfills on
// confirmation. Safe to call repeatedly; a confirmation that was already
// processed surfaces as ErrNoPendingPayment.
func (s *PurchaseService) Poll(ctx context.Context, purchaserID string) (PollResult, error) {
	if purchaserID == "" {
		return PollResult{}, domain.ErrPurchaserRequired
	}

	pending, err := s.repo.GetPendingPayment(ctx, purchaserID)
	if err != nil {
		return PollResult{}, err
	}
	if pending == nil {
		return PollResult{}, domain.ErrNoPendingPayment
	}

	if pending.Expired(s.clock.Now(), s.timeout) {
		if err := s.repo.DeletePendingPayment(ctx, purchaserID); err != nil {
			return PollResult{}, err
		}
		return PollResult{}, domain.ErrPaymentExpired
	}

	status, err := s.gateway.DepositStatus(ctx, pending.TransactionID)
	if err != nil {
		return PollResult{}, err
	}

	switch status {
	case gateway.StatusSuccess:
		return s.fulfill(ctx, *pending)
	case gateway.StatusPending:
		return PollResult{State: PollStatePending}, nil
	default:
		// Expired or cancelled upstream. Drop the local entry; failed
		// attempts are not persisted.
		if err := s.repo.DeletePendingPayment(ctx, purchaserID); err != nil {
			return PollResult{}, err
		}
		return PollResult{State: PollStateFailed}, nil
	}
}

// Cancel abandons the purchaser's pending attempt. The upstream cancel is best
// effort; the local entry is cleared regardless of gateway outcome.
func (s *PurchaseService) Cancel(ctx context.Context, purchaserID string) error {
	if purchaserID == "" {
		return domain.ErrPurchaserRequired
	}

	pending, err := s.repo.GetPendingPayment(ctx, purchaserID)
	if err != nil {
		return err
	}
	if pending == nil {
		return nil
	}

	_ = s.gateway.CancelDeposit(ctx, pending.TransactionID)

	return s.repo.DeletePendingPayment(ctx, purchaserID)
}

type fulfillOutcome int

const (
	outcomeAlreadyHandled fulfillOutcome = iota
	outcomeFulfilled
	outcomeUnreconciled
)

// fulfill converts a confirmed payment into an allocated code plus a history
// record. Removing the pending entry first, inside the same transaction as the
// code pop, is what makes duplicate confirmations no-ops: the loser of the
// race sees zero rows deleted and touches nothing.
func (s *PurchaseService) fulfill(ctx context.Context, pending domain.PendingPayment) (PollResult, error) {
	var (
		outcome fulfillOutcome
		record  domain.HistoryRecord
		rec     domain.Reconciliation
	)
	now := s.clock.Now()

	run := func(ctx context.Context) error {
		removed, err := s.repo.DeletePendingPaymentMatching(ctx, pending.PurchaserID, pending.TransactionID)
		if err != nil {
			return err
		}
		if !removed {
			outcome = outcomeAlreadyHandled
			return nil
		}

		code, err := s.repo.TakeOneCode(ctx, pending.ProductID)
		if errors.Is(err, domain.ErrOutOfStock) {
			// Payment succeeded but the pool drained while this attempt was
			// awaiting confirmation. Persist the case for manual resolution
			// instead of dropping the purchaser's money.
			rec = domain.Reconciliation{
				ID:            newID(),
				PurchaserID:   pending.PurchaserID,
				ProductID:     pending.ProductID,
				TransactionID: pending.TransactionID,
				Price:         pending.Price,
				Reason:        "paid but out of stock",
				CreatedAt:     now,
			}
			if err := s.repo.CreateReconciliation(ctx, rec); err != nil {
				return err
			}
			outcome = outcomeUnreconciled
			return nil
		}
		if err != nil {
			return err
		}

		record = domain.HistoryRecord{
			ID:          newTransactionID(),
			PurchaserID: pending.PurchaserID,
			ProductID:   pending.ProductID,
			Code:        code,
			Price:       pending.Price,
			Status:      domain.HistoryStatusSuccess,
			CreatedAt:   now,
		}
		if err := s.repo.CreateHistoryRecord(ctx, record); err != nil {
			return err
		}
		outcome = outcomeFulfilled
		return nil
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.repo.WithTx(ctx, run)
		if !errors.Is(err, domain.ErrConcurrentModification) {
			break
		}
	}
	if err != nil {
		return PollResult{}, err
	}

	switch outcome {
	case outcomeFulfilled:
		s.notifier.SaleCompleted(ctx, record)
		return PollResult{State: PollStateFulfilled, Code: record.Code}, nil
	case outcomeUnreconciled:
		s.notifier.PaymentUnreconciled(ctx, rec)
		return PollResult{}, domain.ErrOutOfStock
	default:
		return PollResult{}, domain.ErrNoPendingPayment
	}
}

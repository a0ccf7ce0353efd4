package app

import (
	"context"
	"strings"

	"github.com/loukys/codestore/internal/domain"
)

type StockRepository interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.ProductStock, error)
	AddCodes(ctx context.Context, productID string, codes []string) (int, error)
	UpdatePrice(ctx context.Context, productID string, price int64) error
	CountStock(ctx context.Context, productID string) (int, error)
}

// StockService owns the code pools and product prices. Codes leave a pool
// only through purchase fulfillment; this service only appends and reads.
type StockService struct {
	repo     StockRepository
	minPrice int64
}

const defaultMinimumPrice = 1000

func NewStockService(repo StockRepository, opts ...StockServiceOption) *StockService {
	svc := &StockService{
		repo:     repo,
		minPrice: defaultMinimumPrice,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type StockServiceOption func(*StockService)

// WithMinimumPrice overrides the lowest price an admin may set.
func WithMinimumPrice(min int64) StockServiceOption {
	return func(s *StockService) {
		if min > 0 {
			s.minPrice = min
		}
	}
}

// AddCodes appends codes to a product pool and returns how many were stored.
// Blank entries are skipped. Duplicates are the caller's responsibility, as
// pools are plain sequences rather than sets.
func (s *StockService) AddCodes(ctx context.Context, productID string, codes []string) (int, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return 0, err
	}

	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		cleaned = append(cleaned, code)
	}
	if len(cleaned) == 0 {
		return 0, nil
	}

	return s.repo.AddCodes(ctx, productID, cleaned)
}

func (s *StockService) SetPrice(ctx context.Context, productID string, price int64) error {
	if price < s.minPrice {
		return domain.ErrInvalidPrice
	}
	return s.repo.UpdatePrice(ctx, productID, price)
}

func (s *StockService) ListProducts(ctx context.Context) ([]domain.ProductStock, error) {
	return s.repo.ListProducts(ctx)
}

func (s *StockService) StockCount(ctx context.Context, productID string) (int, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return 0, err
	}
	return s.repo.CountStock(ctx, productID)
}

func (s *StockService) Price(ctx context.Context, productID string) (int64, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.Price, nil
}

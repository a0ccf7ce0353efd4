package app

import (
	"context"
	"time"

	"github.com/loukys/codestore/internal/clock"
	"github.com/loukys/codestore/internal/domain"
)

type AdminRepository interface {
	StockCounts(ctx context.Context) (map[string]int, error)
	PendingCount(ctx context.Context) (int, error)
	SalesCountSince(ctx context.Context, since time.Time) (int, error)
	StockByProduct(ctx context.Context) (map[string][]string, error)
	Prices(ctx context.Context) (map[string]int64, error)
	AllHistory(ctx context.Context) ([]domain.HistoryRecord, error)
}

// AdminService backs the store dashboard: live counters and full backups.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type StatsResult struct {
	StockCounts     map[string]int
	PendingPayments int
	SalesToday      int
}

func (s *AdminService) Stats(ctx context.Context) (StatsResult, error) {
	counts, err := s.repo.StockCounts(ctx)
	if err != nil {
		return StatsResult{}, err
	}
	pending, err := s.repo.PendingCount(ctx)
	if err != nil {
		return StatsResult{}, err
	}

	now := s.clock.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.repo.SalesCountSince(ctx, midnight)
	if err != nil {
		return StatsResult{}, err
	}

	return StatsResult{
		StockCounts:     counts,
		PendingPayments: pending,
		SalesToday:      today,
	}, nil
}

// ExportBundle is a point-in-time backup of stock, prices and sales history.
type ExportBundle struct {
	GeneratedAt time.Time
	Stock       map[string][]string
	Prices      map[string]int64
	History     []domain.HistoryRecord
}

func (s *AdminService) Export(ctx context.Context) (ExportBundle, error) {
	stock, err := s.repo.StockByProduct(ctx)
	if err != nil {
		return ExportBundle{}, err
	}
	prices, err := s.repo.Prices(ctx)
	if err != nil {
		return ExportBundle{}, err
	}
	history, err := s.repo.AllHistory(ctx)
	if err != nil {
		return ExportBundle{}, err
	}

	return ExportBundle{
		GeneratedAt: s.clock.Now(),
		Stock:       stock,
		Prices:      prices,
		History:     history,
	}, nil
}

package app

import (
	"context"

	"github.com/loukys/codestore/internal/domain"
)

type HistoryRepository interface {
	ListByPurchaser(ctx context.Context, purchaserID string) ([]domain.HistoryRecord, error)
	ListRecent(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
}

// HistoryService exposes the read side of the sales ledger. Writes happen
// only inside purchase fulfillment.
type HistoryService struct {
	repo HistoryRepository
}

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

func NewHistoryService(repo HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

func (s *HistoryService) ForPurchaser(ctx context.Context, purchaserID string) ([]domain.HistoryRecord, error) {
	if purchaserID == "" {
		return nil, domain.ErrPurchaserRequired
	}
	return s.repo.ListByPurchaser(ctx, purchaserID)
}

func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

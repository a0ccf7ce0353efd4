package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loukys/codestore/internal/domain"
)

type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func (r *HistoryRepository) ListByPurchaser(ctx context.Context, purchaserID string) ([]domain.HistoryRecord, error) {
	const query = `
SELECT id, purchaser_id, product_id, code, price, status, created_at
FROM history_records
WHERE purchaser_id = $1
ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, purchaserID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return scanHistoryRows(rows)
}

func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	const query = `
SELECT id, purchaser_id, product_id, code, price, status, created_at
FROM history_records
ORDER BY created_at DESC, id DESC
LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent history: %w", err)
	}
	return scanHistoryRows(rows)
}

func scanHistoryRows(rows pgx.Rows) ([]domain.HistoryRecord, error) {
	defer rows.Close()

	var out []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.PurchaserID, &rec.ProductID, &rec.Code, &rec.Price, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history rows: %w", err)
	}
	return out, nil
}

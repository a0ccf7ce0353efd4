package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loukys/codestore/internal/domain"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) StockCounts(ctx context.Context) (map[string]int, error) {
	const query = `
SELECT p.id, COUNT(s.id)
FROM products p
LEFT JOIN stock_codes s ON s.product_id = p.id
GROUP BY p.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stock counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan stock count: %w", err)
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stock counts: %w", err)
	}
	return counts, nil
}

func (r *AdminRepository) PendingCount(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pending_payments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("pending count: %w", err)
	}
	return count, nil
}

func (r *AdminRepository) SalesCountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM history_records WHERE created_at >= $1`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sales count: %w", err)
	}
	return count, nil
}

// StockByProduct returns the full unsold pools in FIFO order, for backups.
func (r *AdminRepository) StockByProduct(ctx context.Context) (map[string][]string, error) {
	const query = `SELECT product_id, code FROM stock_codes ORDER BY product_id, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stock by product: %w", err)
	}
	defer rows.Close()

	stock := make(map[string][]string)
	for rows.Next() {
		var productID, code string
		if err := rows.Scan(&productID, &code); err != nil {
			return nil, fmt.Errorf("scan stock code: %w", err)
		}
		stock[productID] = append(stock[productID], code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stock by product: %w", err)
	}
	return stock, nil
}

func (r *AdminRepository) Prices(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, price FROM products`)
	if err != nil {
		return nil, fmt.Errorf("prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]int64)
	for rows.Next() {
		var id string
		var price int64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prices: %w", err)
	}
	return prices, nil
}

func (r *AdminRepository) AllHistory(ctx context.Context) ([]domain.HistoryRecord, error) {
	const query = `
SELECT id, purchaser_id, product_id, code, price, status, created_at
FROM history_records
ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("all history: %w", err)
	}
	return scanHistoryRows(rows)
}

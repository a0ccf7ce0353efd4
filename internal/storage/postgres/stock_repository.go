package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loukys/codestore/internal/domain"
)

type StockRepository struct {
	pool *pgxpool.Pool
}

func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

func (r *StockRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	const query = `SELECT id, name, duration_days, price FROM products WHERE id = $1`

	var p domain.Product
	err := r.queryRow(ctx, query, productID).Scan(&p.ID, &p.Name, &p.DurationDays, &p.Price)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *StockRepository) ListProducts(ctx context.Context) ([]domain.ProductStock, error) {
	const query = `
SELECT p.id, p.name, p.duration_days, p.price, COUNT(s.id)
FROM products p
LEFT JOIN stock_codes s ON s.product_id = p.id
GROUP BY p.id, p.name, p.duration_days, p.price
ORDER BY p.duration_days`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductStock
	for rows.Next() {
		var ps domain.ProductStock
		if err := rows.Scan(&ps.ID, &ps.Name, &ps.DurationDays, &ps.Price, &ps.StockCount); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (r *StockRepository) AddCodes(ctx context.Context, productID string, codes []string) (int, error) {
	const stmt = `INSERT INTO stock_codes (product_id, code) VALUES ($1, $2)`

	added := 0
	for _, code := range codes {
		if _, err := r.exec(ctx, stmt, productID, code); err != nil {
			if isForeignKeyViolation(err) {
				return added, domain.ErrProductNotFound
			}
			return added, fmt.Errorf("add code: %w", err)
		}
		added++
	}
	return added, nil
}

func (r *StockRepository) UpdatePrice(ctx context.Context, productID string, price int64) error {
	const stmt = `UPDATE products SET price = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID, price)
	if err != nil {
		return fmt.Errorf("update price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *StockRepository) CountStock(ctx context.Context, productID string) (int, error) {
	const query = `SELECT COUNT(*) FROM stock_codes WHERE product_id = $1`

	var count int
	if err := r.queryRow(ctx, query, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count stock: %w", err)
	}
	return count, nil
}

func (r *StockRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *StockRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *StockRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

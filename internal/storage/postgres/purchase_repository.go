package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loukys/codestore/internal/domain"
)

type PurchaseRepository struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

func (r *PurchaseRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *PurchaseRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
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

func (r *PurchaseRepository) CountStock(ctx context.Context, productID string) (int, error) {
	const query = `SELECT COUNT(*) FROM stock_codes WHERE product_id = $1`

	var count int
	if err := r.queryRow(ctx, query, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count stock: %w", err)
	}
	return count, nil
}

// UpsertPendingPayment begins a purchase attempt. An existing entry for the
// purchaser is replaced (last write wins).
func (r *PurchaseRepository) UpsertPendingPayment(ctx context.Context, p domain.PendingPayment) error {
	const stmt = `
INSERT INTO pending_payments (purchaser_id, product_id, price, transaction_id, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (purchaser_id) DO UPDATE
SET product_id = EXCLUDED.product_id,
    price = EXCLUDED.price,
    transaction_id = EXCLUDED.transaction_id,
    status = EXCLUDED.status,
    created_at = EXCLUDED.created_at`

	_, err := r.exec(ctx, stmt, p.PurchaserID, p.ProductID, p.Price, p.TransactionID, p.Status, p.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("upsert pending payment: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) GetPendingPayment(ctx context.Context, purchaserID string) (*domain.PendingPayment, error) {
	const query = `
SELECT purchaser_id, product_id, price, transaction_id, status, created_at
FROM pending_payments
WHERE purchaser_id = $1`

	var p domain.PendingPayment
	err := r.queryRow(ctx, query, purchaserID).
		Scan(&p.PurchaserID, &p.ProductID, &p.Price, &p.TransactionID, &p.Status, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending payment: %w", err)
	}
	return &p, nil
}

func (r *PurchaseRepository) DeletePendingPayment(ctx context.Context, purchaserID string) error {
	const stmt = `DELETE FROM pending_payments WHERE purchaser_id = $1`

	if _, err := r.exec(ctx, stmt, purchaserID); err != nil {
		return fmt.Errorf("delete pending payment: %w", err)
	}
	return nil
}

// DeletePendingPaymentMatching removes the entry only when it still belongs to
// the given transaction. A false return means another fulfillment already
// claimed it (or the purchaser started a new purchase in the meantime).
func (r *PurchaseRepository) DeletePendingPaymentMatching(ctx context.Context, purchaserID, transactionID string) (bool, error) {
	const stmt = `DELETE FROM pending_payments WHERE purchaser_id = $1 AND transaction_id = $2`

	tag, err := r.exec(ctx, stmt, purchaserID, transactionID)
	if err != nil {
		return false, fmt.Errorf("delete pending payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// TakeOneCode pops the oldest unsold code for the product. SKIP LOCKED keeps
// concurrent fulfillments from ever returning the same row.
func (r *PurchaseRepository) TakeOneCode(ctx context.Context, productID string) (string, error) {
	const stmt = `
DELETE FROM stock_codes
WHERE id = (
	SELECT id FROM stock_codes
	WHERE product_id = $1
	ORDER BY id
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING code`

	var code string
	if err := r.queryRow(ctx, stmt, productID).Scan(&code); err != nil {
		if err == pgx.ErrNoRows {
			return "", domain.ErrOutOfStock
		}
		return "", fmt.Errorf("take code: %w", err)
	}
	return code, nil
}

func (r *PurchaseRepository) CreateHistoryRecord(ctx context.Context, rec domain.HistoryRecord) error {
	const stmt = `
INSERT INTO history_records (id, purchaser_id, product_id, code, price, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt, rec.ID, rec.PurchaserID, rec.ProductID, rec.Code, rec.Price, rec.Status, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create history record: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) CreateReconciliation(ctx context.Context, rec domain.Reconciliation) error {
	const stmt = `
INSERT INTO reconciliations (id, purchaser_id, product_id, transaction_id, price, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt, rec.ID, rec.PurchaserID, rec.ProductID, rec.TransactionID, rec.Price, rec.Reason, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create reconciliation: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *PurchaseRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

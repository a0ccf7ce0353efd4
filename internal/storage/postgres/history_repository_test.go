package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/loukys/codestore/internal/domain"
	"github.com/loukys/codestore/internal/testutil"
)

func TestHistoryRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewHistoryRepository(pool)
	purchases := NewPurchaseRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, ctx context.Context) {
		testutil.TruncateAll(t, ctx, pool)
		testutil.InsertProduct(t, ctx, pool, domain.Product{ID: "VIP7D", Name: "VIP 7 Hari", DurationDays: 7, Price: 20000})
		for i, rec := range []domain.HistoryRecord{
			{ID: "TX-1", PurchaserID: "user-1", Code: "a"},
			{ID: "TX-2", PurchaserID: "user-2", Code: "b"},
			{ID: "TX-3", PurchaserID: "user-1", Code: "c"},
		} {
			rec.ProductID = "VIP7D"
			rec.Price = 20000
			rec.Status = domain.HistoryStatusSuccess
			rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			if err := purchases.CreateHistoryRecord(ctx, rec); err != nil {
				t.Fatalf("seed history: %v", err)
			}
		}
	}

	t.Run("ListByPurchaser returns newest first", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		records, err := repo.ListByPurchaser(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].ID != "TX-3" || records[1].ID != "TX-1" {
			t.Fatalf("expected newest first, got %s then %s", records[0].ID, records[1].ID)
		}
	})

	t.Run("ListByPurchaser empty for unknown purchaser", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		records, err := repo.ListByPurchaser(ctx, "nobody")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 0 {
			t.Fatalf("expected no records, got %d", len(records))
		}
	})

	t.Run("ListRecent honours limit", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		records, err := repo.ListRecent(ctx, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].ID != "TX-3" || records[1].ID != "TX-2" {
			t.Fatalf("expected newest first, got %s then %s", records[0].ID, records[1].ID)
		}
	})
}

package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  order_id TEXT PRIMARY KEY,
  uid TEXT NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  delivery_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  points_earned INTEGER NOT NULL DEFAULT 0,
  placed_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	lineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  merge_key TEXT NOT NULL,
  product_id TEXT,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  delivery_cents INTEGER NOT NULL DEFAULT 0,
  qty INTEGER NOT NULL,
  option_label TEXT,
  thumb TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(lineItems).Error)
	return db
}

func orderFixture(uid, orderID string, totalCents int, placedAt time.Time) *models.Order {
	return &models.Order{
		OrderID:       orderID,
		UID:           uid,
		SubtotalCents: totalCents,
		TotalCents:    totalCents,
		PointsEarned:  totalCents * 6 / 100,
		PlacedAt:      placedAt,
		LineItems: []models.OrderLineItem{
			{
				MergeKey:       "mug-1::base::/a.png",
				Name:           "Mug",
				UnitPriceCents: totalCents,
				Qty:            1,
			},
		},
	}
}

func TestOrdersRepositorySaveAndList(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, orderFixture("hana", "SOUV-1-000001", 10000, base)))
	require.NoError(t, repo.Save(ctx, orderFixture("hana", "SOUV-2-000002", 20000, base.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, orderFixture("duri", "SOUV-3-000003", 5000, base)))

	orders, err := repo.ListByUID(ctx, "hana")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "SOUV-2-000002", orders[0].OrderID)
	assert.Equal(t, "SOUV-1-000001", orders[1].OrderID)
	require.Len(t, orders[0].LineItems, 1)
}

func TestOrdersRepositorySaveReplacesDuplicateOrderID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	placedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, orderFixture("hana", "SOUV-1-000001", 10000, placedAt)))

	replacement := orderFixture("hana", "SOUV-1-000001", 30000, placedAt)
	replacement.LineItems = append(replacement.LineItems, models.OrderLineItem{
		MergeKey:       "vase-2::base::/b.png",
		Name:           "Vase",
		UnitPriceCents: 20000,
		Qty:            1,
	})
	require.NoError(t, repo.Save(ctx, replacement))

	orders, err := repo.ListByUID(ctx, "hana")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 30000, orders[0].TotalCents)
	assert.Len(t, orders[0].LineItems, 2)
}

func TestOrdersRepositoryFindScopesToUser(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	placedAt := time.Now().UTC()
	require.NoError(t, repo.Save(ctx, orderFixture("hana", "SOUV-1-000001", 10000, placedAt)))

	found, err := repo.FindByID(ctx, "hana", "SOUV-1-000001")
	require.NoError(t, err)
	assert.Equal(t, "hana", found.UID)

	_, err = repo.FindByID(ctx, "duri", "SOUV-1-000001")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrdersRepositoryDeleteAllByUID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	placedAt := time.Now().UTC()
	require.NoError(t, repo.Save(ctx, orderFixture("hana", "SOUV-1-000001", 10000, placedAt)))
	require.NoError(t, repo.Save(ctx, orderFixture("duri", "SOUV-2-000002", 5000, placedAt)))

	require.NoError(t, repo.DeleteAllByUID(ctx, "hana"))

	orders, err := repo.ListByUID(ctx, "hana")
	require.NoError(t, err)
	assert.Empty(t, orders)

	var lineItems int64
	require.NoError(t, db.Model(&models.OrderLineItem{}).Count(&lineItems).Error)
	assert.Equal(t, int64(1), lineItems)

	others, err := repo.ListByUID(ctx, "duri")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

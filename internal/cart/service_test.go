package cart_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-canteen/internal/cart"
	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupService(t *testing.T) (*cart.Service, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Canteen)(nil),
		(*models.Item)(nil),
		(*models.Menu)(nil),
		(*models.MenuItem)(nil),
		(*models.Cart)(nil),
		(*models.CartItem)(nil),
	} {
		require.NoError(t, bunDB.ResetModel(ctx, model))
	}

	t.Cleanup(func() { _ = bunDB.Close() })
	return cart.NewService(&cart.DB{Bun: bunDB}, logger.NewLogger()), bunDB
}

// seedMenus writes two menus in one canteen, each with one item.
func seedMenus(t *testing.T, bunDB *bun.DB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	fixtures := []interface{}{
		&models.Canteen{ID: "c1", Code: "MAIN", Name: "Main Canteen", Active: true, CreatedAt: now},
		&models.Item{ID: "i1", CanteenID: "c1", Name: "Masala Dosa", Price: 50, Active: true, CreatedAt: now},
		&models.Item{ID: "i2", CanteenID: "c1", Name: "Veg Thali", Price: 80, Active: true, CreatedAt: now},
		&models.Menu{ID: "m1", CanteenID: "c1", MenuConfigurationID: "mc1", Name: "Lunch", MenuDate: now, Active: true, CreatedAt: now},
		&models.Menu{ID: "m2", CanteenID: "c1", MenuConfigurationID: "mc1", Name: "Dinner", MenuDate: now, Active: true, CreatedAt: now},
		&models.MenuItem{ID: "mi1", MenuID: "m1", ItemID: "i1", Price: 50, Available: true},
		&models.MenuItem{ID: "mi2", MenuID: "m2", ItemID: "i2", Price: 80, Available: true},
		&models.MenuItem{ID: "mi3", MenuID: "m1", ItemID: "i2", Price: 85, Available: false},
	}
	for _, f := range fixtures {
		_, err := bunDB.NewInsert().Model(f).Exec(ctx)
		require.NoError(t, err)
	}
}

func TestSetItemCreatesCartAndOverwritesQuantity(t *testing.T) {
	svc, bunDB := setupService(t)
	seedMenus(t, bunDB)
	ctx := context.Background()

	got, err := svc.SetItem(ctx, "u1", "mi1", 2)
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MenuID)
	assert.Equal(t, "c1", got.CanteenID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, 100.0, got.Total())

	// Quantity overwrites, it never adds.
	got, err = svc.SetItem(ctx, "u1", "mi1", 5)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 5, got.Items[0].Quantity)
}

func TestSetItemZeroQuantityRemovesLine(t *testing.T) {
	svc, bunDB := setupService(t)
	seedMenus(t, bunDB)
	ctx := context.Background()

	_, err := svc.SetItem(ctx, "u1", "mi1", 2)
	require.NoError(t, err)

	got, err := svc.SetItem(ctx, "u1", "mi1", 0)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestSetItemFromOtherMenuReplacesCart(t *testing.T) {
	svc, bunDB := setupService(t)
	seedMenus(t, bunDB)
	ctx := context.Background()

	_, err := svc.SetItem(ctx, "u1", "mi1", 2)
	require.NoError(t, err)

	got, err := svc.SetItem(ctx, "u1", "mi2", 1)
	require.NoError(t, err)
	assert.Equal(t, "m2", got.MenuID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "mi2", got.Items[0].MenuItemID)
}

func TestSetItemRejectsUnavailable(t *testing.T) {
	svc, bunDB := setupService(t)
	seedMenus(t, bunDB)
	ctx := context.Background()

	_, err := svc.SetItem(ctx, "u1", "mi3", 1)
	assert.ErrorIs(t, err, cart.ErrItemNotAvailable)

	_, err = svc.SetItem(ctx, "u1", "missing", 1)
	assert.ErrorIs(t, err, cart.ErrItemNotAvailable)
}

func TestGetAndClearCart(t *testing.T) {
	svc, bunDB := setupService(t)
	seedMenus(t, bunDB)
	ctx := context.Background()

	_, err := svc.GetCart(ctx, "u1")
	assert.ErrorIs(t, err, cart.ErrCartNotFound)

	_, err = svc.SetItem(ctx, "u1", "mi1", 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "u1"))
	_, err = svc.GetCart(ctx, "u1")
	assert.ErrorIs(t, err, cart.ErrCartNotFound)

	assert.ErrorIs(t, svc.ClearCart(ctx, "u1"), cart.ErrCartNotFound)
}

package catalog_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-canteen/internal/catalog"
	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupService(t *testing.T) *catalog.Service {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Canteen)(nil),
		(*models.MenuConfiguration)(nil),
		(*models.Item)(nil),
		(*models.Menu)(nil),
		(*models.MenuItem)(nil),
	} {
		require.NoError(t, bunDB.ResetModel(ctx, model))
	}

	t.Cleanup(func() { _ = bunDB.Close() })
	return catalog.NewService(&catalog.DB{Bun: bunDB}, logger.NewLogger())
}

func TestCreateCanteenRejectsDuplicateCode(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateCanteen(ctx, catalog.CreateCanteenRequest{Code: "MAIN", Name: "Main Canteen"})
	require.NoError(t, err)
	assert.True(t, created.Active)

	_, err = svc.CreateCanteen(ctx, catalog.CreateCanteenRequest{Code: "MAIN", Name: "Imposter"})
	assert.ErrorIs(t, err, catalog.ErrDuplicateCode)

	canteens, err := svc.ListCanteens(ctx)
	require.NoError(t, err)
	assert.Len(t, canteens, 1)
}

func TestGetCanteenNotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.GetCanteen(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMenuLifecycle(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	canteen, err := svc.CreateCanteen(ctx, catalog.CreateCanteenRequest{Code: "MAIN", Name: "Main Canteen"})
	require.NoError(t, err)

	cfg, err := svc.CreateMenuConfiguration(ctx, catalog.CreateMenuConfigRequest{
		CanteenID:        canteen.ID,
		Name:             "Lunch",
		DefaultStartTime: "12:00",
		DefaultEndTime:   "15:00",
	})
	require.NoError(t, err)

	item, err := svc.CreateItem(ctx, catalog.CreateItemRequest{
		CanteenID: canteen.ID,
		Name:      "Veg Thali",
		Price:     80,
	})
	require.NoError(t, err)

	day := time.Now().Add(24 * time.Hour).Format("2006-01-02")
	menu, err := svc.CreateMenu(ctx, catalog.CreateMenuRequest{
		CanteenID:           canteen.ID,
		MenuConfigurationID: cfg.ID,
		Name:                "Tomorrow's Lunch",
		MenuDate:            day,
	})
	require.NoError(t, err)

	// Menu price overrides the item's base price when given.
	menuItem, err := svc.AddMenuItem(ctx, catalog.AddMenuItemRequest{MenuID: menu.ID, ItemID: item.ID, Price: 75})
	require.NoError(t, err)
	assert.Equal(t, 75.0, menuItem.Price)

	loaded, err := svc.GetMenu(ctx, menu.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Configuration)
	assert.Equal(t, "15:00", loaded.Configuration.DefaultEndTime)
	require.Len(t, loaded.Items, 1)
	require.NotNil(t, loaded.Items[0].Item)
	assert.Equal(t, "Veg Thali", loaded.Items[0].Item.Name)

	parsedDay, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	menus, err := svc.ListMenus(ctx, canteen.ID, parsedDay)
	require.NoError(t, err)
	assert.Len(t, menus, 1)

	menus, err = svc.ListMenus(ctx, canteen.ID, parsedDay.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, menus)
}

func TestAddMenuItemDefaultsToBasePrice(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	canteen, err := svc.CreateCanteen(ctx, catalog.CreateCanteenRequest{Code: "MAIN", Name: "Main Canteen"})
	require.NoError(t, err)
	cfg, err := svc.CreateMenuConfiguration(ctx, catalog.CreateMenuConfigRequest{
		CanteenID: canteen.ID, Name: "Lunch", DefaultStartTime: "12:00", DefaultEndTime: "15:00",
	})
	require.NoError(t, err)
	item, err := svc.CreateItem(ctx, catalog.CreateItemRequest{CanteenID: canteen.ID, Name: "Chai", Price: 15})
	require.NoError(t, err)
	menu, err := svc.CreateMenu(ctx, catalog.CreateMenuRequest{
		CanteenID: canteen.ID, MenuConfigurationID: cfg.ID, Name: "Lunch", MenuDate: time.Now().Format("2006-01-02"),
	})
	require.NoError(t, err)

	menuItem, err := svc.AddMenuItem(ctx, catalog.AddMenuItemRequest{MenuID: menu.ID, ItemID: item.ID})
	require.NoError(t, err)
	assert.Equal(t, 15.0, menuItem.Price)

	_, err = svc.AddMenuItem(ctx, catalog.AddMenuItemRequest{MenuID: menu.ID, ItemID: "missing"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

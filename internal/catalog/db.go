package catalog

import (
	"context"
	"time"

	"ms-canteen/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- CANTEENS ----------------

func (d *DB) CreateCanteen(ctx context.Context, canteen *models.Canteen) error {
	_, err := d.Bun.NewInsert().Model(canteen).Exec(ctx)
	return err
}

func (d *DB) GetCanteenByID(ctx context.Context, id string) (*models.Canteen, error) {
	var canteen models.Canteen
	err := d.Bun.NewSelect().
		Model(&canteen).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &canteen, nil
}

func (d *DB) CanteenCodeExists(ctx context.Context, code string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Canteen)(nil)).
		Where("code = ?", code).
		Exists(ctx)
}

func (d *DB) ListActiveCanteens(ctx context.Context) ([]models.Canteen, error) {
	var canteens []models.Canteen
	err := d.Bun.NewSelect().
		Model(&canteens).
		Where("active = ?", true).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return canteens, nil
}

// ---------------- MENU CONFIGURATIONS ----------------

func (d *DB) CreateMenuConfiguration(ctx context.Context, cfg *models.MenuConfiguration) error {
	_, err := d.Bun.NewInsert().Model(cfg).Exec(ctx)
	return err
}

func (d *DB) ListMenuConfigurations(ctx context.Context, canteenID string) ([]models.MenuConfiguration, error) {
	var configs []models.MenuConfiguration
	err := d.Bun.NewSelect().
		Model(&configs).
		Where("canteen_id = ?", canteenID).
		Where("active = ?", true).
		Order("default_start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return configs, nil
}

// ---------------- MENUS ----------------

func (d *DB) CreateMenu(ctx context.Context, menu *models.Menu) error {
	_, err := d.Bun.NewInsert().Model(menu).Exec(ctx)
	return err
}

func (d *DB) GetMenuWithItems(ctx context.Context, id string) (*models.Menu, error) {
	var menu models.Menu
	err := d.Bun.NewSelect().
		Model(&menu).
		Relation("Configuration").
		Relation("Items").
		Relation("Items.Item").
		Where("menu.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (d *DB) ListMenusByCanteenAndDate(ctx context.Context, canteenID string, day time.Time) ([]models.Menu, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var menus []models.Menu
	err := d.Bun.NewSelect().
		Model(&menus).
		Relation("Configuration").
		Where("menu.canteen_id = ?", canteenID).
		Where("menu.active = ?", true).
		Where("menu.menu_date >= ? AND menu.menu_date < ?", start, end).
		Order("menu_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return menus, nil
}

// ---------------- MENU ITEMS ----------------

func (d *DB) AddMenuItem(ctx context.Context, item *models.MenuItem) error {
	_, err := d.Bun.NewInsert().Model(item).Exec(ctx)
	return err
}

func (d *DB) ListMenuItems(ctx context.Context, menuID string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := d.Bun.NewSelect().
		Model(&items).
		Relation("Item").
		Where("menu_item.menu_id = ?", menuID).
		Where("menu_item.available = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (d *DB) SetMenuItemAvailability(ctx context.Context, menuItemID string, available bool) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.MenuItem)(nil)).
		Set("available = ?", available).
		Where("id = ?", menuItemID).
		Exec(ctx)
	return err
}

// ---------------- ITEMS ----------------

func (d *DB) CreateItem(ctx context.Context, item *models.Item) error {
	_, err := d.Bun.NewInsert().Model(item).Exec(ctx)
	return err
}

func (d *DB) GetItemByID(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	err := d.Bun.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *DB) ListItemsByCanteen(ctx context.Context, canteenID string) ([]models.Item, error) {
	var items []models.Item
	err := d.Bun.NewSelect().
		Model(&items).
		Where("canteen_id = ?", canteenID).
		Where("active = ?", true).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

package cart

import (
	"context"

	"ms-canteen/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetCartByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := d.Bun.NewSelect().
		Model(&cart).
		Relation("Items").
		Where("cart.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (d *DB) CreateCart(ctx context.Context, cart *models.Cart) error {
	_, err := d.Bun.NewInsert().Model(cart).Exec(ctx)
	return err
}

func (d *DB) TouchCart(ctx context.Context, cart *models.Cart) error {
	_, err := d.Bun.NewUpdate().
		Model(cart).
		Column("updated_at").
		Where("id = ?", cart.ID).
		Exec(ctx)
	return err
}

func (d *DB) GetCartItem(ctx context.Context, cartID, menuItemID string) (*models.CartItem, error) {
	var item models.CartItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("cart_id = ?", cartID).
		Where("menu_item_id = ?", menuItemID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *DB) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	_, err := d.Bun.NewInsert().Model(item).Exec(ctx)
	return err
}

// SetCartItemQuantity overwrites the quantity; cart lines never
// accumulate across repeated adds.
func (d *DB) SetCartItemQuantity(ctx context.Context, itemID string, quantity int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.CartItem)(nil)).
		Set("quantity = ?", quantity).
		Where("id = ?", itemID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteCartItem(ctx context.Context, itemID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("id = ?", itemID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteCart(ctx context.Context, cartID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("cart_id = ?", cartID).
		Exec(ctx)
	if err != nil {
		return err
	}
	_, err = d.Bun.NewDelete().
		Model((*models.Cart)(nil)).
		Where("id = ?", cartID).
		Exec(ctx)
	return err
}

func (d *DB) GetMenuItem(ctx context.Context, menuItemID string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := d.Bun.NewSelect().
		Model(&item).
		Relation("Item").
		Where("menu_item.id = ?", menuItemID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *DB) GetMenu(ctx context.Context, menuID string) (*models.Menu, error) {
	var menu models.Menu
	err := d.Bun.NewSelect().
		Model(&menu).
		Where("id = ?", menuID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Cart struct {
	bun.BaseModel `bun:"table:carts"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id,notnull" json:"user_id"`
	CanteenID string    `bun:"canteen_id,notnull" json:"canteen_id"`
	MenuID    string    `bun:"menu_id,notnull" json:"menu_id"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`

	Items []*CartItem `bun:"rel:has-many,join:id=cart_id" json:"items,omitempty"`
}

// CartItem snapshots the item name and unit price at the moment it is
// added, so the cart total survives menu edits until checkout.
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items"`

	ID         string  `bun:"id,pk" json:"id"`
	CartID     string  `bun:"cart_id,notnull" json:"cart_id"`
	MenuItemID string  `bun:"menu_item_id,notnull" json:"menu_item_id"`
	ItemName   string  `bun:"item_name,notnull" json:"item_name"`
	UnitPrice  float64 `bun:"unit_price,notnull" json:"unit_price"`
	Quantity   int     `bun:"quantity,notnull" json:"quantity"`
}

func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

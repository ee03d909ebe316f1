package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Menu is one meal slot on one date for one canteen. Customers order
// against menus, never against raw items.
type Menu struct {
	bun.BaseModel `bun:"table:menus"`

	ID                  string    `bun:"id,pk" json:"id"`
	CanteenID           string    `bun:"canteen_id,notnull" json:"canteen_id"`
	MenuConfigurationID string    `bun:"menu_configuration_id,notnull" json:"menu_configuration_id"`
	Name                string    `bun:"name,notnull" json:"name"`
	MenuDate            time.Time `bun:"menu_date,notnull" json:"menu_date"`
	Active              bool      `bun:"active,notnull" json:"active"`
	CreatedAt           time.Time `bun:"created_at,notnull" json:"created_at"`

	Configuration *MenuConfiguration `bun:"rel:belongs-to,join:menu_configuration_id=id" json:"configuration,omitempty"`
	Items         []*MenuItem        `bun:"rel:has-many,join:id=menu_id" json:"items,omitempty"`
}

// MenuItem links an item onto a menu with the price it sells at that
// day. Price is captured here so later item edits do not rewrite
// history.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items"`

	ID        string  `bun:"id,pk" json:"id"`
	MenuID    string  `bun:"menu_id,notnull" json:"menu_id"`
	ItemID    string  `bun:"item_id,notnull" json:"item_id"`
	Price     float64 `bun:"price,notnull" json:"price"`
	Available bool    `bun:"available,notnull" json:"available"`

	Item *Item `bun:"rel:belongs-to,join:item_id=id" json:"item,omitempty"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Canteen struct {
	bun.BaseModel `bun:"table:canteens"`

	ID            string    `bun:"id,pk" json:"id"`
	Code          string    `bun:"code,unique,notnull" json:"code"`
	Name          string    `bun:"name,notnull" json:"name"`
	Address       string    `bun:"address" json:"address,omitempty"`
	ContactNumber string    `bun:"contact_number" json:"contact_number,omitempty"`
	Active        bool      `bun:"active,notnull" json:"active"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

// MenuConfiguration is a meal slot for a canteen (breakfast, lunch).
// DefaultEndTime doubles as the cancellation cutoff for orders placed
// against menus of this slot.
type MenuConfiguration struct {
	bun.BaseModel `bun:"table:menu_configurations"`

	ID               string    `bun:"id,pk" json:"id"`
	CanteenID        string    `bun:"canteen_id,notnull" json:"canteen_id"`
	Name             string    `bun:"name,notnull" json:"name"`
	DefaultStartTime string    `bun:"default_start_time,notnull" json:"default_start_time"`
	DefaultEndTime   string    `bun:"default_end_time,notnull" json:"default_end_time"`
	Active           bool      `bun:"active,notnull" json:"active"`
	CreatedAt        time.Time `bun:"created_at,notnull" json:"created_at"`
}

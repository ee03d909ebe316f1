package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Item struct {
	bun.BaseModel `bun:"table:items"`

	ID          string    `bun:"id,pk" json:"id"`
	CanteenID   string    `bun:"canteen_id,notnull" json:"canteen_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	Price       float64   `bun:"price,notnull" json:"price"`
	Category    string    `bun:"category" json:"category,omitempty"`
	Active      bool      `bun:"active,notnull" json:"active"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderInitiated OrderStatus = "initiated"
	OrderPlaced    OrderStatus = "placed"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

const (
	PlacedByPlatform = "platform"
	PlacedByWalkIn   = "walk_in"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID          string      `bun:"id,pk" json:"id"`
	OrderNo     string      `bun:"order_no,unique,notnull" json:"order_no"`
	UserID      string      `bun:"user_id,notnull" json:"user_id"`
	CanteenID   string      `bun:"canteen_id,notnull" json:"canteen_id"`
	MenuID      string      `bun:"menu_id,notnull" json:"menu_id"`
	OrderDate   time.Time   `bun:"order_date,notnull" json:"order_date"`
	Status      OrderStatus `bun:"status,notnull" json:"status"`
	TotalAmount float64     `bun:"total_amount,notnull" json:"total_amount"`
	QRCode      string      `bun:"qr_code,nullzero" json:"qr_code,omitempty"`
	PlacedBy    string      `bun:"placed_by,notnull" json:"placed_by"`
	CreatedAt   time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time   `bun:"updated_at,nullzero" json:"updated_at,omitempty"`

	Items    []*OrderItem `bun:"rel:has-many,join:id=order_id" json:"items,omitempty"`
	Payments []*Payment   `bun:"rel:has-many,join:id=order_id" json:"payments,omitempty"`
}

type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID         string  `bun:"id,pk" json:"id"`
	OrderID    string  `bun:"order_id,notnull" json:"order_id"`
	MenuItemID string  `bun:"menu_item_id,notnull" json:"menu_item_id"`
	ItemName   string  `bun:"item_name,notnull" json:"item_name"`
	UnitPrice  float64 `bun:"unit_price,notnull" json:"unit_price"`
	Quantity   int     `bun:"quantity,notnull" json:"quantity"`
	LineTotal  float64 `bun:"line_total,notnull" json:"line_total"`
}

type PlaceOrderRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	PaymentMode string `json:"payment_mode" validate:"required,oneof=online cash wallet"`
	Platform    string `json:"platform" validate:"omitempty,oneof=web mobile"`
}

type WalkInOrderLine struct {
	MenuItemID string `json:"menu_item_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

type WalkInOrderRequest struct {
	CanteenID string            `json:"canteen_id" validate:"required"`
	MenuID    string            `json:"menu_id" validate:"required"`
	Phone     string            `json:"phone" validate:"required"`
	Name      string            `json:"name"`
	Lines     []WalkInOrderLine `json:"lines" validate:"required,min=1,dive"`
}

type OrderStatusUpdateRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=completed"`
}

type OrderResponse struct {
	ID          string      `json:"id"`
	OrderNo     string      `json:"order_no"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	QRCode      string      `json:"qr_code,omitempty"`
	PaymentLink string      `json:"payment_link,omitempty"`
}

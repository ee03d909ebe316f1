package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusSuccess  PaymentStatus = "success"
	StatusFailed   PaymentStatus = "failed"
	StatusRefunded PaymentStatus = "refunded"
)

type PaymentMode string

const (
	ModeWallet PaymentMode = "wallet"
	ModeOnline PaymentMode = "online"
	ModeCash   PaymentMode = "cash"
	ModeUPI    PaymentMode = "upi"
)

// Payment is one settlement attempt against an order. An order can
// carry several rows: a wallet debit plus an online remainder, and a
// refund row after cancellation.
type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	ID            string        `bun:"id,pk" json:"id"`
	OrderID       string        `bun:"order_id,notnull" json:"order_id"`
	Amount        float64       `bun:"amount,notnull" json:"amount"`
	Mode          PaymentMode   `bun:"mode,notnull" json:"mode"`
	Status        PaymentStatus `bun:"status,notnull" json:"status"`
	TransactionID string        `bun:"transaction_id,nullzero" json:"transaction_id,omitempty"`
	PaymentLink   string        `bun:"payment_link,nullzero" json:"payment_link,omitempty"`
	GatewayLinkID string        `bun:"gateway_link_id,nullzero" json:"gateway_link_id,omitempty"`
	CreatedAt     time.Time     `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time     `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type PaymentCallback struct {
	OrderID       string `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
	TransactionID string `json:"transaction_id"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type WalletEntryType string

const (
	WalletCredit WalletEntryType = "credit"
	WalletDebit  WalletEntryType = "debit"
)

// WalletEntry is an append-only ledger row. Balance is always derived
// as credit sum minus debit sum, never stored.
type WalletEntry struct {
	bun.BaseModel `bun:"table:wallet_entries"`

	ID          string          `bun:"id,pk" json:"id"`
	UserID      string          `bun:"user_id,notnull" json:"user_id"`
	OrderID     string          `bun:"order_id,nullzero" json:"order_id,omitempty"`
	Amount      float64         `bun:"amount,notnull" json:"amount"`
	Type        WalletEntryType `bun:"type,notnull" json:"type"`
	Description string          `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `bun:"created_at,notnull" json:"created_at"`
}

type WalletTopUpRequest struct {
	UserID      string  `json:"user_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description"`
}

package order

import (
	"context"
	"fmt"
	"time"

	"ms-canteen/internal/models"

	"github.com/google/uuid"
)

type WalletSummary struct {
	Balance float64              `json:"balance"`
	Entries []models.WalletEntry `json:"entries"`
}

// TopUpWallet credits a user's ledger. Admin-only surface; the amount
// is validated at the handler.
func (s *OrderService) TopUpWallet(ctx context.Context, req models.WalletTopUpRequest) (*models.WalletEntry, error) {
	if _, err := s.DB.GetUserByID(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("user %s not found: %w", req.UserID, err)
	}

	description := req.Description
	if description == "" {
		description = "Wallet top-up"
	}
	entry := &models.WalletEntry{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Amount:      req.Amount,
		Type:        models.WalletCredit,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.DB.CreateWalletEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("wallet credit: %w", err)
	}
	s.Log.LogPayment("WALLET", req.UserID, fmt.Sprintf("credited %.2f", req.Amount))
	return entry, nil
}

func (s *OrderService) GetWalletSummary(ctx context.Context, userID string) (*WalletSummary, error) {
	balance, err := s.DB.WalletBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.DB.GetWalletEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &WalletSummary{Balance: balance, Entries: entries}, nil
}

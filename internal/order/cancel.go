package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ms-canteen/internal/models"
	"ms-canteen/internal/utils"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CancelOrder cancels a placed order inside its cancellation window and
// refunds every settled payment back to the user's wallet. The order
// ends up cancelled; the refund lives on the payment rows and in the
// wallet ledger.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPlaced {
		return nil, ErrOrderAlreadyFinal
	}

	cutoff, err := s.cancellationCutoff(ctx, order)
	if err != nil {
		return nil, err
	}
	if time.Now().After(cutoff) {
		return nil, ErrCancellationWindowClosed
	}

	refunded := false
	err = s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		payments, err := s.DB.GetPaymentsByOrderTx(ctx, tx, order.ID)
		if err != nil {
			return fmt.Errorf("load payments: %w", err)
		}

		now := time.Now()
		for _, p := range payments {
			if p.Status != models.StatusSuccess {
				continue
			}
			entry := &models.WalletEntry{
				ID:          uuid.NewString(),
				UserID:      order.UserID,
				OrderID:     order.ID,
				Amount:      p.Amount,
				Type:        models.WalletCredit,
				Description: fmt.Sprintf("Refund for order %s", order.OrderNo),
				CreatedAt:   now,
			}
			if err := s.DB.CreateWalletEntryTx(ctx, tx, entry); err != nil {
				return fmt.Errorf("refund credit: %w", err)
			}
			if err := s.DB.UpdatePaymentStatusTx(ctx, tx, p.ID, models.StatusRefunded, ""); err != nil {
				return fmt.Errorf("mark payment refunded: %w", err)
			}
			refunded = true
		}

		return s.DB.UpdateOrderStatusTx(ctx, tx, order.ID, models.OrderCancelled)
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderCancelled
	s.Log.LogOrder("CANCEL", order.OrderNo, fmt.Sprintf("order %s cancelled, refunded=%v", order.ID, refunded))

	if s.Kafka != nil {
		if err := s.Kafka.PublishOrderCancelled(*order); err != nil {
			s.Log.LogKafka("PUBLISH", "order cancelled", fmt.Sprintf("order %s: %v", order.OrderNo, err))
		}
	}
	return order, nil
}

// cancellationCutoff is the order's date combined with the meal slot's
// end time. After that moment the kitchen has committed and the order
// can no longer be cancelled.
func (s *OrderService) cancellationCutoff(ctx context.Context, order *models.Order) (time.Time, error) {
	menu, err := s.DB.GetMenuWithConfig(ctx, order.MenuID)
	if err != nil {
		return time.Time{}, fmt.Errorf("load menu for cancellation window: %w", err)
	}
	if menu.Configuration == nil {
		return utils.AtTimeOfDay(order.OrderDate, 23, 59), nil
	}
	hour, minute, err := parseClock(menu.Configuration.DefaultEndTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad end time %q: %w", menu.Configuration.DefaultEndTime, err)
	}
	return utils.AtTimeOfDay(order.OrderDate, hour, minute), nil
}

// parseClock parses "HH:MM" wall-clock strings.
func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("bad minute")
	}
	return hour, minute, nil
}

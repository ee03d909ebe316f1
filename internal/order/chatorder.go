package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-canteen/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ChatCartLine is one line of an ephemeral chat cart; the conversation
// snapshot already carries name and price, so checkout does not refetch
// them.
type ChatCartLine struct {
	MenuItemID string
	ItemName   string
	UnitPrice  float64
	Quantity   int
}

// PlaceChatOrder places an order straight from a confirmed chat cart.
// No persisted cart is involved; the full amount is collected through a
// UPI payment link, all writes happen in one transaction and side
// effects run after commit.
func (s *OrderService) PlaceChatOrder(ctx context.Context, phone, canteenID, menuID string, lines []ChatCartLine) (*models.OrderResponse, error) {
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	menu, err := s.DB.GetMenuWithConfig(ctx, menuID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	user, err := s.DB.GetUserByPhone(ctx, phone)
	newUser := false
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		user = &models.User{
			ID:        uuid.NewString(),
			Name:      "WhatsApp customer",
			Phone:     phone,
			Role:      models.RoleCustomer,
			Active:    true,
			CreatedAt: time.Now(),
		}
		newUser = true
	}

	var (
		order          *models.Order
		pendingPayment *models.Payment
	)

	err = s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if newUser {
			if err := s.DB.CreateUserTx(ctx, tx, user); err != nil {
				return fmt.Errorf("create chat user: %w", err)
			}
		}

		orderNo, err := s.generateUniqueOrderNo(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		var total float64
		for _, line := range lines {
			total += line.UnitPrice * float64(line.Quantity)
		}

		now := time.Now()
		order = &models.Order{
			ID:          uuid.NewString(),
			OrderNo:     orderNo,
			UserID:      user.ID,
			CanteenID:   canteenID,
			MenuID:      menuID,
			OrderDate:   menu.MenuDate,
			Status:      models.OrderInitiated,
			TotalAmount: total,
			PlacedBy:    models.PlacedByPlatform,
			CreatedAt:   now,
		}
		if s.QR != nil {
			order.QRCode = s.QR.OrderURL(order.ID)
		}
		if err := s.DB.CreateOrderTx(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := make([]*models.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, &models.OrderItem{
				ID:         uuid.NewString(),
				OrderID:    order.ID,
				MenuItemID: line.MenuItemID,
				ItemName:   line.ItemName,
				UnitPrice:  line.UnitPrice,
				Quantity:   line.Quantity,
				LineTotal:  line.UnitPrice * float64(line.Quantity),
			})
		}
		if err := s.DB.CreateOrderItemsTx(ctx, tx, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		// Chat checkouts always settle through a UPI payment link for
		// the full amount; the wallet is never involved.
		pendingPayment = &models.Payment{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			Amount:    total,
			Mode:      models.ModeUPI,
			Status:    models.StatusPending,
			CreatedAt: now,
		}
		if err := s.DB.CreatePaymentTx(ctx, tx, pendingPayment); err != nil {
			return fmt.Errorf("pending payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &models.OrderResponse{
		ID:          order.ID,
		OrderNo:     order.OrderNo,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		QRCode:      order.QRCode,
	}
	s.Log.LogOrder("CHAT_PLACE", order.OrderNo, fmt.Sprintf("chat order %s for %s, total %.2f", order.ID, phone, order.TotalAmount))

	if pendingPayment != nil && s.Gateway != nil {
		linkID, url, err := s.Gateway.CreatePaymentLink(ctx, order, pendingPayment, user)
		if err != nil {
			s.Log.LogPayment("LINK", order.OrderNo, fmt.Sprintf("payment link creation failed: %v", err))
		} else {
			if err := s.DB.UpdatePaymentLink(ctx, pendingPayment.ID, linkID, url); err != nil {
				s.Log.LogPayment("LINK", order.OrderNo, fmt.Sprintf("failed to store payment link: %v", err))
			}
			resp.PaymentLink = url
		}
	}

	s.finishPlacedOrder(ctx, user, order, resp)
	return resp, nil
}

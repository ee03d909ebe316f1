package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"
	"ms-canteen/internal/qr"
	"ms-canteen/internal/utils"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DBLayer interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error

	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByOrderNo(ctx context.Context, orderNo string) (*models.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetOrdersByCanteenAndDate(ctx context.Context, canteenID string, day time.Time) ([]models.Order, error)
	CreateOrderTx(ctx context.Context, idb bun.IDB, order *models.Order) error
	CreateOrderItemsTx(ctx context.Context, idb bun.IDB, items []*models.OrderItem) error
	OrderNoExistsTx(ctx context.Context, idb bun.IDB, orderNo string) (bool, error)
	UpdateOrderStatusTx(ctx context.Context, idb bun.IDB, orderID string, status models.OrderStatus) error
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	UpdateOrderQRCode(ctx context.Context, orderID, qrCode string) error

	CreatePaymentTx(ctx context.Context, idb bun.IDB, payment *models.Payment) error
	UpdatePaymentStatusTx(ctx context.Context, idb bun.IDB, paymentID string, status models.PaymentStatus, transactionID string) error
	UpdatePaymentLink(ctx context.Context, paymentID, linkID, url string) error
	GetPendingOnlinePayment(ctx context.Context, orderID string) (*models.Payment, error)
	GetPaymentsByOrderTx(ctx context.Context, idb bun.IDB, orderID string) ([]models.Payment, error)

	WalletBalanceTx(ctx context.Context, idb bun.IDB, userID string) (float64, error)
	WalletBalance(ctx context.Context, userID string) (float64, error)
	CreateWalletEntryTx(ctx context.Context, idb bun.IDB, entry *models.WalletEntry) error
	CreateWalletEntry(ctx context.Context, entry *models.WalletEntry) error
	GetWalletEntries(ctx context.Context, userID string) ([]models.WalletEntry, error)

	GetCartWithItemsTx(ctx context.Context, idb bun.IDB, userID string) (*models.Cart, error)
	ClearCartTx(ctx context.Context, idb bun.IDB, cartID string) error

	GetMenuWithConfig(ctx context.Context, menuID string) (*models.Menu, error)
	GetMenuItemsTx(ctx context.Context, idb bun.IDB, menuItemIDs []string) ([]models.MenuItem, error)

	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	CreateUserTx(ctx context.Context, idb bun.IDB, user *models.User) error
}

// PaymentGateway creates hosted payment links for the online remainder
// of an order. Called strictly after the order transaction commits.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, order *models.Order, payment *models.Payment, customer *models.User) (linkID, url string, err error)
}

// Messenger delivers order notifications, also strictly post-commit.
type Messenger interface {
	SendOrderConfirmation(ctx context.Context, customer *models.User, order *models.Order, qrPNG []byte) error
}

type KafkaPublisher interface {
	PublishOrderPlaced(order models.Order) error
	PublishOrderCancelled(order models.Order) error
}

type OrderService struct {
	DB        DBLayer
	Gateway   PaymentGateway
	Messenger Messenger
	Kafka     KafkaPublisher
	QR        *qr.Generator
	Log       *logger.Logger

	// SurchargePct is added on top of the cart total to cover gateway
	// fees. Zero leaves totals untouched.
	SurchargePct float64
}

func NewOrderService(db DBLayer, gateway PaymentGateway, messenger Messenger, kafka KafkaPublisher, qrGen *qr.Generator, log *logger.Logger) *OrderService {
	return &OrderService{DB: db, Gateway: gateway, Messenger: messenger, Kafka: kafka, QR: qrGen, Log: log}
}

// PlaceOrder turns the user's cart into a placed order. Every write
// happens in one transaction: order, order items, wallet debit, payment
// rows, cart clearing. Gateway calls, QR rendering, Kafka and WhatsApp
// all run after commit and never unwind the order.
func (s *OrderService) PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.OrderResponse, error) {
	user, err := s.DB.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("user %s not found: %w", req.UserID, err)
	}

	var (
		order          *models.Order
		pendingPayment *models.Payment
	)

	err = s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		cart, err := s.DB.GetCartWithItemsTx(ctx, tx, req.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCartNotFound
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		menu, err := s.DB.GetMenuWithConfig(ctx, cart.MenuID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMenuNotFound
			}
			return err
		}

		orderNo, err := s.generateUniqueOrderNo(ctx, tx, req.UserID)
		if err != nil {
			return err
		}

		total := cart.Total()
		if s.SurchargePct > 0 {
			total = math.Round(total*(1+s.SurchargePct/100)*100) / 100
		}

		// The wallet is only touched when the customer asked to pay
		// from it, and then it must cover the whole amount.
		var walletApplied float64
		if req.PaymentMode == "wallet" {
			balance, err := s.DB.WalletBalanceTx(ctx, tx, req.UserID)
			if err != nil {
				return fmt.Errorf("wallet balance: %w", err)
			}
			if balance <= 0 || balance < total {
				return ErrInsufficientBalance
			}
			walletApplied = total
		}

		// Wallet and cash settle inside the transaction, so those orders
		// are placed at once. A pending online payment keeps the order
		// initiated until the gateway callback settles it, except on
		// mobile where the app confirms payment in the foreground.
		status := models.OrderPlaced
		if req.PaymentMode == "online" && req.Platform != "mobile" {
			status = models.OrderInitiated
		}

		now := time.Now()
		order = &models.Order{
			ID:          uuid.NewString(),
			OrderNo:     orderNo,
			UserID:      req.UserID,
			CanteenID:   cart.CanteenID,
			MenuID:      cart.MenuID,
			OrderDate:   menu.MenuDate,
			Status:      status,
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

		items := make([]*models.OrderItem, 0, len(cart.Items))
		for _, ci := range cart.Items {
			items = append(items, &models.OrderItem{
				ID:         uuid.NewString(),
				OrderID:    order.ID,
				MenuItemID: ci.MenuItemID,
				ItemName:   ci.ItemName,
				UnitPrice:  ci.UnitPrice,
				Quantity:   ci.Quantity,
				LineTotal:  ci.UnitPrice * float64(ci.Quantity),
			})
		}
		if err := s.DB.CreateOrderItemsTx(ctx, tx, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		if walletApplied > 0 {
			entry := &models.WalletEntry{
				ID:          uuid.NewString(),
				UserID:      req.UserID,
				OrderID:     order.ID,
				Amount:      walletApplied,
				Type:        models.WalletDebit,
				Description: fmt.Sprintf("Payment for order %s", orderNo),
				CreatedAt:   now,
			}
			if err := s.DB.CreateWalletEntryTx(ctx, tx, entry); err != nil {
				return fmt.Errorf("wallet debit: %w", err)
			}
			walletPayment := &models.Payment{
				ID:            uuid.NewString(),
				OrderID:       order.ID,
				Amount:        walletApplied,
				Mode:          models.ModeWallet,
				Status:        models.StatusSuccess,
				TransactionID: entry.ID,
				CreatedAt:     now,
			}
			if err := s.DB.CreatePaymentTx(ctx, tx, walletPayment); err != nil {
				return fmt.Errorf("wallet payment: %w", err)
			}
		}

		remaining := total - walletApplied
		if remaining > 0 {
			payment := &models.Payment{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				Amount:    remaining,
				CreatedAt: now,
			}
			switch req.PaymentMode {
			case "cash":
				payment.Mode = models.ModeCash
				payment.Status = models.StatusSuccess
				payment.TransactionID = utils.GenerateTransactionID()
			default:
				payment.Mode = models.ModeOnline
				payment.Status = models.StatusPending
				pendingPayment = payment
			}
			if err := s.DB.CreatePaymentTx(ctx, tx, payment); err != nil {
				return fmt.Errorf("remainder payment: %w", err)
			}
		}

		if err := s.DB.ClearCartTx(ctx, tx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
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

	s.Log.LogOrder("PLACE", order.OrderNo, fmt.Sprintf("order %s placed for user %s, total %.2f", order.ID, order.UserID, order.TotalAmount))

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

// finishPlacedOrder runs the best-effort post-commit side effects
// shared by platform and walk-in placement.
func (s *OrderService) finishPlacedOrder(ctx context.Context, user *models.User, order *models.Order, resp *models.OrderResponse) {
	if s.Kafka != nil {
		if err := s.Kafka.PublishOrderPlaced(*order); err != nil {
			s.Log.LogKafka("PUBLISH", "order placed", fmt.Sprintf("order %s: %v", order.OrderNo, err))
		}
	}

	// Orders waiting on an online payment get their QR and confirmation
	// once the gateway callback settles them.
	if order.Status != models.OrderPlaced {
		return
	}

	if s.QR != nil {
		dataURL, err := s.QR.GenerateDataURL(order.ID)
		if err != nil {
			s.Log.LogOrder("QR", order.OrderNo, fmt.Sprintf("qr render failed: %v", err))
		} else {
			if err := s.DB.UpdateOrderQRCode(ctx, order.ID, dataURL); err != nil {
				s.Log.LogOrder("QR", order.OrderNo, fmt.Sprintf("qr store failed: %v", err))
			}
			resp.QRCode = dataURL
		}

		if s.Messenger != nil && user != nil {
			png, err := s.QR.GeneratePNG(order.ID)
			if err == nil {
				if err := s.Messenger.SendOrderConfirmation(ctx, user, order, png); err != nil {
					s.Log.LogChat(user.Phone, fmt.Sprintf("order confirmation send failed: %v", err))
				}
			}
		}
	}
}

// PlaceWalkInOrder records a counter sale: canteen staff key in the
// lines, payment is cash in hand, the customer may not exist yet.
func (s *OrderService) PlaceWalkInOrder(ctx context.Context, req models.WalkInOrderRequest) (*models.OrderResponse, error) {
	menu, err := s.DB.GetMenuWithConfig(ctx, req.MenuID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	user, err := s.DB.GetUserByPhone(ctx, req.Phone)
	newUser := false
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		name := req.Name
		if name == "" {
			name = "Walk-in customer"
		}
		user = &models.User{
			ID:        uuid.NewString(),
			Name:      name,
			Phone:     req.Phone,
			Role:      models.RoleCustomer,
			Active:    true,
			CreatedAt: time.Now(),
		}
		newUser = true
	}

	var order *models.Order
	err = s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if newUser {
			if err := s.DB.CreateUserTx(ctx, tx, user); err != nil {
				return fmt.Errorf("create walk-in user: %w", err)
			}
		}

		ids := make([]string, 0, len(req.Lines))
		for _, line := range req.Lines {
			ids = append(ids, line.MenuItemID)
		}
		menuItems, err := s.DB.GetMenuItemsTx(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("load menu items: %w", err)
		}
		byID := make(map[string]models.MenuItem, len(menuItems))
		for _, mi := range menuItems {
			byID[mi.ID] = mi
		}

		orderNo, err := s.generateUniqueOrderNo(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		order = &models.Order{
			ID:        uuid.NewString(),
			OrderNo:   orderNo,
			UserID:    user.ID,
			CanteenID: req.CanteenID,
			MenuID:    req.MenuID,
			OrderDate: menu.MenuDate,
			Status:    models.OrderPlaced,
			PlacedBy:  models.PlacedByWalkIn,
			CreatedAt: now,
		}

		var total float64
		items := make([]*models.OrderItem, 0, len(req.Lines))
		for _, line := range req.Lines {
			mi, ok := byID[line.MenuItemID]
			if !ok || !mi.Available {
				return fmt.Errorf("menu item %s is not available", line.MenuItemID)
			}
			name := ""
			if mi.Item != nil {
				name = mi.Item.Name
			}
			lineTotal := mi.Price * float64(line.Quantity)
			total += lineTotal
			items = append(items, &models.OrderItem{
				ID:         uuid.NewString(),
				OrderID:    order.ID,
				MenuItemID: mi.ID,
				ItemName:   name,
				UnitPrice:  mi.Price,
				Quantity:   line.Quantity,
				LineTotal:  lineTotal,
			})
		}
		order.TotalAmount = total
		if s.QR != nil {
			order.QRCode = s.QR.OrderURL(order.ID)
		}

		if err := s.DB.CreateOrderTx(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.DB.CreateOrderItemsTx(ctx, tx, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		payment := &models.Payment{
			ID:            uuid.NewString(),
			OrderID:       order.ID,
			Amount:        total,
			Mode:          models.ModeCash,
			Status:        models.StatusSuccess,
			TransactionID: utils.GenerateTransactionID(),
			CreatedAt:     now,
		}
		return s.DB.CreatePaymentTx(ctx, tx, payment)
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
	s.Log.LogOrder("WALK_IN", order.OrderNo, fmt.Sprintf("walk-in order %s, total %.2f", order.ID, order.TotalAmount))
	s.finishPlacedOrder(ctx, nil, order, resp)
	return resp, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetOrderByOrderNo(ctx context.Context, orderNo string) (*models.Order, error) {
	order, err := s.DB.GetOrderByOrderNo(ctx, orderNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.DB.GetOrdersByUser(ctx, userID)
}

func (s *OrderService) ListOrdersForCanteen(ctx context.Context, canteenID string, day time.Time) ([]models.Order, error) {
	return s.DB.GetOrdersByCanteenAndDate(ctx, canteenID, day)
}

// UpdateStatus marks a placed order completed once the customer has
// picked it up. Completed and cancelled orders are final.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	switch order.Status {
	case models.OrderCancelled, models.OrderCompleted:
		return ErrOrderAlreadyFinal
	}

	if status != models.OrderCompleted || order.Status != models.OrderPlaced {
		return ErrInvalidStatusChange
	}

	if err := s.DB.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return err
	}
	s.Log.LogOrder("STATUS", order.OrderNo, fmt.Sprintf("%s -> %s", order.Status, status))
	return nil
}

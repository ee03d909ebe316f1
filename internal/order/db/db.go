package db

import (
	"context"
	"database/sql"
	"time"

	"ms-canteen/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// RunInTx runs fn inside one database transaction. Order placement and
// cancellation do all their writes through this so a failing step rolls
// everything back.
func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// ---------------- ORDERS ----------------

func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Items").
		Relation("Payments").
		Where("\"order\".id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) GetOrderByOrderNo(ctx context.Context, orderNo string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Items").
		Relation("Payments").
		Where("\"order\".order_no = ?", orderNo).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) GetOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("Items").
		Relation("Payments").
		Where("\"order\".user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrdersByCanteenAndDate feeds the canteen dashboard: everything
// ordered for one canteen on one day.
func (d *DB) GetOrdersByCanteenAndDate(ctx context.Context, canteenID string, day time.Time) ([]models.Order, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("Items").
		Relation("Payments").
		Where("\"order\".canteen_id = ?", canteenID).
		Where("\"order\".order_date >= ? AND \"order\".order_date < ?", start, end).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *DB) CreateOrderTx(ctx context.Context, idb bun.IDB, order *models.Order) error {
	_, err := idb.NewInsert().Model(order).Exec(ctx)
	return err
}

func (d *DB) CreateOrderItemsTx(ctx context.Context, idb bun.IDB, items []*models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	_, err := idb.NewInsert().Model(&items).Exec(ctx)
	return err
}

func (d *DB) OrderNoExistsTx(ctx context.Context, idb bun.IDB, orderNo string) (bool, error) {
	return idb.NewSelect().
		Model((*models.Order)(nil)).
		Where("order_no = ?", orderNo).
		Exists(ctx)
}

func (d *DB) UpdateOrderStatusTx(ctx context.Context, idb bun.IDB, orderID string, status models.OrderStatus) error {
	_, err := idb.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", orderID).
		Exec(ctx)
	return err
}

func (d *DB) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	return d.UpdateOrderStatusTx(ctx, d.Bun, orderID, status)
}

// UpdateOrderQRCode stores the rendered QR after commit; a failure here
// never unwinds the order.
func (d *DB) UpdateOrderQRCode(ctx context.Context, orderID, qrCode string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("qr_code = ?", qrCode).
		Where("id = ?", orderID).
		Exec(ctx)
	return err
}

// ---------------- PAYMENTS ----------------

func (d *DB) CreatePaymentTx(ctx context.Context, idb bun.IDB, payment *models.Payment) error {
	_, err := idb.NewInsert().Model(payment).Exec(ctx)
	return err
}

func (d *DB) UpdatePaymentStatusTx(ctx context.Context, idb bun.IDB, paymentID string, status models.PaymentStatus, transactionID string) error {
	q := idb.NewUpdate().
		Model((*models.Payment)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", paymentID)
	if transactionID != "" {
		q = q.Set("transaction_id = ?", transactionID)
	}
	_, err := q.Exec(ctx)
	return err
}

// SettleGatewayPayment records the gateway's verdict on a pending
// payment. A successful payment also moves the waiting order from
// initiated to placed, in the same transaction.
func (d *DB) SettleGatewayPayment(ctx context.Context, paymentID, orderID string, status models.PaymentStatus, transactionID string) error {
	return d.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := d.UpdatePaymentStatusTx(ctx, tx, paymentID, status, transactionID); err != nil {
			return err
		}
		if status != models.StatusSuccess {
			return nil
		}
		_, err := tx.NewUpdate().
			Model((*models.Order)(nil)).
			Set("status = ?", models.OrderPlaced).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", orderID).
			Where("status = ?", models.OrderInitiated).
			Exec(ctx)
		return err
	})
}

// UpdatePaymentLink records the gateway link id and URL on the pending
// online payment once the gateway has answered.
func (d *DB) UpdatePaymentLink(ctx context.Context, paymentID, linkID, url string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Payment)(nil)).
		Set("gateway_link_id = ?", linkID).
		Set("payment_link = ?", url).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", paymentID).
		Exec(ctx)
	return err
}

// GetPendingOnlinePayment finds the payment a gateway callback can
// settle: web checkouts pay online, chat checkouts over a UPI link.
func (d *DB) GetPendingOnlinePayment(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := d.Bun.NewSelect().
		Model(&payment).
		Where("order_id = ?", orderID).
		Where("mode IN (?)", bun.In([]models.PaymentMode{models.ModeOnline, models.ModeUPI})).
		Where("status = ?", models.StatusPending).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (d *DB) GetPaymentsByOrderTx(ctx context.Context, idb bun.IDB, orderID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := idb.NewSelect().
		Model(&payments).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// ---------------- WALLET ----------------

// WalletBalanceTx derives the balance from the ledger: credits minus
// debits, never a stored column.
func (d *DB) WalletBalanceTx(ctx context.Context, idb bun.IDB, userID string) (float64, error) {
	var creditSum, debitSum sql.NullFloat64

	err := idb.NewSelect().
		Model((*models.WalletEntry)(nil)).
		ColumnExpr("SUM(amount)").
		Where("user_id = ?", userID).
		Where("type = ?", models.WalletCredit).
		Scan(ctx, &creditSum)
	if err != nil {
		return 0, err
	}

	err = idb.NewSelect().
		Model((*models.WalletEntry)(nil)).
		ColumnExpr("SUM(amount)").
		Where("user_id = ?", userID).
		Where("type = ?", models.WalletDebit).
		Scan(ctx, &debitSum)
	if err != nil {
		return 0, err
	}

	return creditSum.Float64 - debitSum.Float64, nil
}

func (d *DB) WalletBalance(ctx context.Context, userID string) (float64, error) {
	return d.WalletBalanceTx(ctx, d.Bun, userID)
}

func (d *DB) CreateWalletEntryTx(ctx context.Context, idb bun.IDB, entry *models.WalletEntry) error {
	_, err := idb.NewInsert().Model(entry).Exec(ctx)
	return err
}

func (d *DB) CreateWalletEntry(ctx context.Context, entry *models.WalletEntry) error {
	return d.CreateWalletEntryTx(ctx, d.Bun, entry)
}

func (d *DB) GetWalletEntries(ctx context.Context, userID string) ([]models.WalletEntry, error) {
	var entries []models.WalletEntry
	err := d.Bun.NewSelect().
		Model(&entries).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ---------------- CARTS ----------------

func (d *DB) GetCartWithItemsTx(ctx context.Context, idb bun.IDB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := idb.NewSelect().
		Model(&cart).
		Relation("Items").
		Where("cart.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ClearCartTx removes the cart and its items once the order they fed
// has been written.
func (d *DB) ClearCartTx(ctx context.Context, idb bun.IDB, cartID string) error {
	_, err := idb.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("cart_id = ?", cartID).
		Exec(ctx)
	if err != nil {
		return err
	}
	_, err = idb.NewDelete().
		Model((*models.Cart)(nil)).
		Where("id = ?", cartID).
		Exec(ctx)
	return err
}

// ---------------- MENUS ----------------

// GetMenuWithConfig loads a menu plus its meal-slot configuration,
// which carries the cancellation cutoff time.
func (d *DB) GetMenuWithConfig(ctx context.Context, menuID string) (*models.Menu, error) {
	var menu models.Menu
	err := d.Bun.NewSelect().
		Model(&menu).
		Relation("Configuration").
		Where("menu.id = ?", menuID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (d *DB) GetMenuItemsTx(ctx context.Context, idb bun.IDB, menuItemIDs []string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := idb.NewSelect().
		Model(&items).
		Relation("Item").
		Where("menu_item.id IN (?)", bun.In(menuItemIDs)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ---------------- USERS ----------------

func (d *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("phone = ?", phone).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) CreateUserTx(ctx context.Context, idb bun.IDB, user *models.User) error {
	_, err := idb.NewInsert().Model(user).Exec(ctx)
	return err
}

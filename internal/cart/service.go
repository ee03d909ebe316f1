package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound     = errors.New("no cart found for user")
	ErrItemNotAvailable = errors.New("menu item is not available")
)

type Service struct {
	DB  *DB
	Log *logger.Logger
}

func NewService(db *DB, log *logger.Logger) *Service {
	return &Service{DB: db, Log: log}
}

// SetItem puts a menu item in the user's cart with the given quantity.
// Quantity overwrites any existing line; zero removes it. Picking an
// item from a different menu replaces the whole cart, since an order
// is always against a single menu.
func (s *Service) SetItem(ctx context.Context, userID, menuItemID string, quantity int) (*models.Cart, error) {
	menuItem, err := s.DB.GetMenuItem(ctx, menuItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotAvailable
		}
		return nil, err
	}
	if !menuItem.Available {
		return nil, ErrItemNotAvailable
	}

	cart, err := s.DB.GetCartByUser(ctx, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		cart = nil
	case err != nil:
		return nil, err
	}

	if cart != nil && cart.MenuID != menuItem.MenuID {
		if err := s.DB.DeleteCart(ctx, cart.ID); err != nil {
			return nil, fmt.Errorf("replace cart: %w", err)
		}
		cart = nil
	}

	if cart == nil {
		menu, err := s.DB.GetMenu(ctx, menuItem.MenuID)
		if err != nil {
			return nil, fmt.Errorf("load menu: %w", err)
		}
		cart = &models.Cart{
			ID:        uuid.NewString(),
			UserID:    userID,
			CanteenID: menu.CanteenID,
			MenuID:    menu.ID,
			CreatedAt: time.Now(),
		}
		if err := s.DB.CreateCart(ctx, cart); err != nil {
			return nil, fmt.Errorf("create cart: %w", err)
		}
	}

	existing, err := s.DB.GetCartItem(ctx, cart.ID, menuItemID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		existing = nil
	case err != nil:
		return nil, err
	}

	switch {
	case quantity <= 0 && existing != nil:
		if err := s.DB.DeleteCartItem(ctx, existing.ID); err != nil {
			return nil, err
		}
	case quantity <= 0:
		// Removing a line that was never there is a no-op.
	case existing != nil:
		if err := s.DB.SetCartItemQuantity(ctx, existing.ID, quantity); err != nil {
			return nil, err
		}
	default:
		name := ""
		if menuItem.Item != nil {
			name = menuItem.Item.Name
		}
		line := &models.CartItem{
			ID:         uuid.NewString(),
			CartID:     cart.ID,
			MenuItemID: menuItemID,
			ItemName:   name,
			UnitPrice:  menuItem.Price,
			Quantity:   quantity,
		}
		if err := s.DB.CreateCartItem(ctx, line); err != nil {
			return nil, err
		}
	}

	cart.UpdatedAt = time.Now()
	if err := s.DB.TouchCart(ctx, cart); err != nil {
		s.Log.LogDatabase("UPDATE", "carts", fmt.Sprintf("failed to touch cart %s: %v", cart.ID, err))
	}

	return s.GetCart(ctx, userID)
}

func (s *Service) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.DB.GetCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	cart, err := s.DB.GetCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCartNotFound
		}
		return err
	}
	return s.DB.DeleteCart(ctx, cart.ID)
}

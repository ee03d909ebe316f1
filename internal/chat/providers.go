package chat

import (
	"context"
	"time"

	"ms-canteen/internal/catalog"
	"ms-canteen/internal/order"
)

// CatalogProvider adapts the catalog service to the conversation's
// option snapshots.
type CatalogProvider struct {
	Service *catalog.Service
}

func NewCatalogProvider(service *catalog.Service) *CatalogProvider {
	return &CatalogProvider{Service: service}
}

func (p *CatalogProvider) ListCanteens(ctx context.Context) ([]CanteenOption, error) {
	canteens, err := p.Service.ListCanteens(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]CanteenOption, 0, len(canteens))
	for _, c := range canteens {
		options = append(options, CanteenOption{ID: c.ID, Name: c.Name})
	}
	return options, nil
}

func (p *CatalogProvider) ListMenus(ctx context.Context, canteenID string, date time.Time) ([]MenuOption, error) {
	menus, err := p.Service.ListMenus(ctx, canteenID, date)
	if err != nil {
		return nil, err
	}
	options := make([]MenuOption, 0, len(menus))
	for _, m := range menus {
		options = append(options, MenuOption{ID: m.ID, Name: m.Name})
	}
	return options, nil
}

func (p *CatalogProvider) ListItems(ctx context.Context, menuID string) ([]ItemOption, error) {
	menuItems, err := p.Service.ListMenuItems(ctx, menuID)
	if err != nil {
		return nil, err
	}
	options := make([]ItemOption, 0, len(menuItems))
	for _, mi := range menuItems {
		name := ""
		if mi.Item != nil {
			name = mi.Item.Name
		}
		options = append(options, ItemOption{
			MenuItemID: mi.ID,
			Name:       name,
			Price:      mi.Price,
		})
	}
	return options, nil
}

// OrderProvider adapts the order service to the conversation's
// checkout step.
type OrderProvider struct {
	Service *order.OrderService
}

func NewOrderProvider(service *order.OrderService) *OrderProvider {
	return &OrderProvider{Service: service}
}

func (p *OrderProvider) PlaceOrder(ctx context.Context, phone, canteenID, menuID string, lines []CartLine) (*CheckoutResult, error) {
	chatLines := make([]order.ChatCartLine, 0, len(lines))
	for _, line := range lines {
		chatLines = append(chatLines, order.ChatCartLine{
			MenuItemID: line.MenuItemID,
			ItemName:   line.Name,
			UnitPrice:  line.Price,
			Quantity:   line.Quantity,
		})
	}

	resp, err := p.Service.PlaceChatOrder(ctx, phone, canteenID, menuID, chatLines)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{
		OrderNo:     resp.OrderNo,
		Total:       resp.TotalAmount,
		PaymentLink: resp.PaymentLink,
	}, nil
}

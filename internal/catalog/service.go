package catalog

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
	ErrNotFound      = errors.New("not found")
	ErrDuplicateCode = errors.New("canteen code already exists")
)

type Service struct {
	DB  *DB
	Log *logger.Logger
}

func NewService(db *DB, log *logger.Logger) *Service {
	return &Service{DB: db, Log: log}
}

// ---------------- CANTEENS ----------------

type CreateCanteenRequest struct {
	Code          string `json:"code" validate:"required,alphanum"`
	Name          string `json:"name" validate:"required"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
}

func (s *Service) CreateCanteen(ctx context.Context, req CreateCanteenRequest) (*models.Canteen, error) {
	exists, err := s.DB.CanteenCodeExists(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCode
	}

	canteen := &models.Canteen{
		ID:            uuid.NewString(),
		Code:          req.Code,
		Name:          req.Name,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Active:        true,
		CreatedAt:     time.Now(),
	}
	if err := s.DB.CreateCanteen(ctx, canteen); err != nil {
		return nil, fmt.Errorf("create canteen: %w", err)
	}
	s.Log.LogDatabase("INSERT", "canteens", fmt.Sprintf("canteen %s (%s) created", canteen.Name, canteen.Code))
	return canteen, nil
}

func (s *Service) GetCanteen(ctx context.Context, id string) (*models.Canteen, error) {
	canteen, err := s.DB.GetCanteenByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return canteen, nil
}

func (s *Service) ListCanteens(ctx context.Context) ([]models.Canteen, error) {
	return s.DB.ListActiveCanteens(ctx)
}

// ---------------- MENU CONFIGURATIONS ----------------

type CreateMenuConfigRequest struct {
	CanteenID        string `json:"canteen_id" validate:"required"`
	Name             string `json:"name" validate:"required"`
	DefaultStartTime string `json:"default_start_time" validate:"required"`
	DefaultEndTime   string `json:"default_end_time" validate:"required"`
}

func (s *Service) CreateMenuConfiguration(ctx context.Context, req CreateMenuConfigRequest) (*models.MenuConfiguration, error) {
	cfg := &models.MenuConfiguration{
		ID:               uuid.NewString(),
		CanteenID:        req.CanteenID,
		Name:             req.Name,
		DefaultStartTime: req.DefaultStartTime,
		DefaultEndTime:   req.DefaultEndTime,
		Active:           true,
		CreatedAt:        time.Now(),
	}
	if err := s.DB.CreateMenuConfiguration(ctx, cfg); err != nil {
		return nil, fmt.Errorf("create menu configuration: %w", err)
	}
	return cfg, nil
}

func (s *Service) ListMenuConfigurations(ctx context.Context, canteenID string) ([]models.MenuConfiguration, error) {
	return s.DB.ListMenuConfigurations(ctx, canteenID)
}

// ---------------- MENUS ----------------

type CreateMenuRequest struct {
	CanteenID           string `json:"canteen_id" validate:"required"`
	MenuConfigurationID string `json:"menu_configuration_id" validate:"required"`
	Name                string `json:"name" validate:"required"`
	MenuDate            string `json:"menu_date" validate:"required,datetime=2006-01-02"`
}

func (s *Service) CreateMenu(ctx context.Context, req CreateMenuRequest) (*models.Menu, error) {
	menuDate, err := time.Parse("2006-01-02", req.MenuDate)
	if err != nil {
		return nil, fmt.Errorf("parse menu date: %w", err)
	}

	menu := &models.Menu{
		ID:                  uuid.NewString(),
		CanteenID:           req.CanteenID,
		MenuConfigurationID: req.MenuConfigurationID,
		Name:                req.Name,
		MenuDate:            menuDate,
		Active:              true,
		CreatedAt:           time.Now(),
	}
	if err := s.DB.CreateMenu(ctx, menu); err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}
	return menu, nil
}

func (s *Service) GetMenu(ctx context.Context, id string) (*models.Menu, error) {
	menu, err := s.DB.GetMenuWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return menu, nil
}

func (s *Service) ListMenus(ctx context.Context, canteenID string, day time.Time) ([]models.Menu, error) {
	return s.DB.ListMenusByCanteenAndDate(ctx, canteenID, day)
}

// ---------------- ITEMS ----------------

type CreateItemRequest struct {
	CanteenID   string  `json:"canteen_id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    string  `json:"category"`
}

func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest) (*models.Item, error) {
	item := &models.Item{
		ID:          uuid.NewString(),
		CanteenID:   req.CanteenID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	if err := s.DB.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, canteenID string) ([]models.Item, error) {
	return s.DB.ListItemsByCanteen(ctx, canteenID)
}

type AddMenuItemRequest struct {
	MenuID string  `json:"menu_id" validate:"required"`
	ItemID string  `json:"item_id" validate:"required"`
	Price  float64 `json:"price" validate:"gte=0"`
}

// AddMenuItem puts an item on a menu. A zero price falls back to the
// item's base price.
func (s *Service) AddMenuItem(ctx context.Context, req AddMenuItemRequest) (*models.MenuItem, error) {
	price := req.Price
	if price == 0 {
		item, err := s.DB.GetItemByID(ctx, req.ItemID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		price = item.Price
	}

	menuItem := &models.MenuItem{
		ID:        uuid.NewString(),
		MenuID:    req.MenuID,
		ItemID:    req.ItemID,
		Price:     price,
		Available: true,
	}
	if err := s.DB.AddMenuItem(ctx, menuItem); err != nil {
		return nil, fmt.Errorf("add menu item: %w", err)
	}
	return menuItem, nil
}

func (s *Service) ListMenuItems(ctx context.Context, menuID string) ([]models.MenuItem, error) {
	return s.DB.ListMenuItems(ctx, menuID)
}

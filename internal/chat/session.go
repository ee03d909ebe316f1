package chat

import "time"

type Stage string

const (
	StageMenuSelection Stage = "menu_selection"
	StageDateSelection Stage = "date_selection"
	StageItemSelection Stage = "item_selection"
	StageCartSelection Stage = "cart_selection"
	StageCartReview    Stage = "cart_review"
)

type CanteenOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MenuOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemOption is one line of the item list shown to the user. Code is
// the 1-based number the user types in a cart spec like "2*3".
type ItemOption struct {
	Code       int     `json:"code"`
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
}

type CartLine struct {
	Code       int     `json:"code"`
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// Session is the per-phone conversation state. Every list the user has
// been shown is snapshotted here so numeric replies resolve against
// exactly what they saw, never against a fresher fetch.
type Session struct {
	Phone             string          `json:"phone"`
	Stage             Stage           `json:"stage"`
	CanteenOptions    []CanteenOption `json:"canteen_options,omitempty"`
	SelectedCanteenID string          `json:"selected_canteen_id,omitempty"`
	Date              string          `json:"date,omitempty"`
	MenuOptions       []MenuOption    `json:"menu_options,omitempty"`
	SelectedMenuID    string          `json:"selected_menu_id,omitempty"`
	Items             []ItemOption    `json:"items,omitempty"`
	Cart              []CartLine      `json:"cart,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func NewSession(phone string) *Session {
	return &Session{
		Phone:     phone,
		Stage:     StageMenuSelection,
		UpdatedAt: time.Now(),
	}
}

func (s *Session) CartTotal() float64 {
	var total float64
	for _, line := range s.Cart {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

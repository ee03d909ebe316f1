package chat

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Catalog supplies the lists shown during the conversation. Backed by
// the catalog service in production, by fixtures in tests.
type Catalog interface {
	ListCanteens(ctx context.Context) ([]CanteenOption, error)
	ListMenus(ctx context.Context, canteenID string, date time.Time) ([]MenuOption, error)
	ListItems(ctx context.Context, menuID string) ([]ItemOption, error)
}

type CheckoutResult struct {
	OrderNo     string
	Total       float64
	PaymentLink string
}

// Checkout finalizes a confirmed cart into a real order.
type Checkout interface {
	PlaceOrder(ctx context.Context, phone, canteenID, menuID string, lines []CartLine) (*CheckoutResult, error)
}

// Machine advances a session one inbound message at a time. All state
// lives on the session; the machine itself holds only collaborators,
// so transitions are deterministic given a session, an input, and the
// collaborator answers.
type Machine struct {
	Catalog  Catalog
	Checkout Checkout
	Now      func() time.Time
}

func NewMachine(catalog Catalog, checkout Checkout) *Machine {
	return &Machine{Catalog: catalog, Checkout: checkout, Now: time.Now}
}

var cartSpecPattern = regexp.MustCompile(`^\d+\*\d+(,\d+\*\d+)*$`)

const restartHint = "Sorry, I didn't understand that. Reply \"hi\" to start over."

// Advance applies one input to the session. done reports that the
// conversation finished (confirmed or cancelled) and the session should
// be dropped. err carries infrastructure failures for the caller to
// log; reply is always safe to send and the session is never left in a
// corrupted stage.
func (m *Machine) Advance(ctx context.Context, session *Session, input string) (reply string, done bool, err error) {
	input = strings.TrimSpace(input)
	defer func() { session.UpdatedAt = m.Now() }()

	// A greeting restarts the conversation from any stage.
	if strings.EqualFold(input, "hi") || strings.EqualFold(input, "hello") {
		reply, err := m.restart(ctx, session)
		return reply, false, err
	}

	switch session.Stage {
	case StageMenuSelection:
		return m.menuSelection(ctx, session, input)
	case StageDateSelection:
		return m.dateSelection(ctx, session, input)
	case StageItemSelection:
		return m.itemSelection(ctx, session, input)
	case StageCartSelection:
		return m.cartSelection(session, input)
	case StageCartReview:
		return m.cartReview(ctx, session, input)
	default:
		session.Stage = StageMenuSelection
		return restartHint, false, nil
	}
}

// restart wipes the session back to canteen selection. The session is
// only reset after the canteen list actually loads, so a transient
// catalog failure leaves the conversation where it was.
func (m *Machine) restart(ctx context.Context, session *Session) (string, error) {
	canteens, err := m.Catalog.ListCanteens(ctx)
	if err != nil {
		return "We're having trouble fetching canteens right now. Please try again in a moment.", err
	}
	if len(canteens) == 0 {
		return "No canteens are available right now. Please try again later.", nil
	}

	session.Stage = StageMenuSelection
	session.SelectedCanteenID = ""
	session.SelectedMenuID = ""
	session.Date = ""
	session.CanteenOptions = canteens
	session.MenuOptions = nil
	session.Items = nil
	session.Cart = nil

	var b strings.Builder
	b.WriteString("Welcome to the canteen! Pick a canteen by number:\n")
	for i, c := range canteens {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
	}
	return b.String(), nil
}

func (m *Machine) menuSelection(ctx context.Context, session *Session, input string) (string, bool, error) {
	if idx, ok := parseIndex(input, len(session.CanteenOptions)); ok {
		session.SelectedCanteenID = session.CanteenOptions[idx].ID
		session.Stage = StageDateSelection
		return "Which day would you like to order for?\n1. Today\n2. Tomorrow", false, nil
	}

	if _, err := strconv.Atoi(input); err == nil && len(session.CanteenOptions) > 0 {
		return fmt.Sprintf("Invalid option. Please reply with a number between 1 and %d.", len(session.CanteenOptions)), false, nil
	}
	return restartHint, false, nil
}

func (m *Machine) dateSelection(ctx context.Context, session *Session, input string) (string, bool, error) {
	var date time.Time
	switch input {
	case "1":
		date = m.Now()
	case "2":
		date = m.Now().Add(24 * time.Hour)
	default:
		return "Invalid option. Reply 1 for today or 2 for tomorrow.", false, nil
	}

	menus, err := m.Catalog.ListMenus(ctx, session.SelectedCanteenID, date)
	if err != nil {
		return "We're having trouble fetching menus right now. Please try again in a moment.", false, err
	}
	if len(menus) == 0 {
		return "No menus are available for that day. Reply 1 for today or 2 for tomorrow.", false, nil
	}

	session.Date = date.Format("2006-01-02")
	session.MenuOptions = menus
	session.Stage = StageItemSelection

	var b strings.Builder
	fmt.Fprintf(&b, "Menus for %s. Pick one by number:\n", date.Format("Monday, 02 Jan"))
	for i, menu := range menus {
		fmt.Fprintf(&b, "%d. %s\n", i+1, menu.Name)
	}
	return b.String(), false, nil
}

func (m *Machine) itemSelection(ctx context.Context, session *Session, input string) (string, bool, error) {
	idx, ok := parseIndex(input, len(session.MenuOptions))
	if !ok {
		return fmt.Sprintf("Invalid option. Please reply with a number between 1 and %d.", len(session.MenuOptions)), false, nil
	}

	menuID := session.MenuOptions[idx].ID
	items, err := m.Catalog.ListItems(ctx, menuID)
	if err != nil {
		return "We're having trouble fetching items right now. Please try again in a moment.", false, err
	}
	if len(items) == 0 {
		return "That menu has no items yet. Please pick a different menu.", false, nil
	}

	for i := range items {
		items[i].Code = i + 1
	}
	session.SelectedMenuID = menuID
	session.Items = items
	session.Stage = StageCartSelection

	return itemListReply(session.Items), false, nil
}

func (m *Machine) cartSelection(session *Session, input string) (string, bool, error) {
	spec := strings.ReplaceAll(input, " ", "")
	if !cartSpecPattern.MatchString(spec) {
		return "Please reply in the format item*quantity, e.g. 1*2,3*1.", false, nil
	}

	itemsByCode := make(map[int]ItemOption, len(session.Items))
	for _, item := range session.Items {
		itemsByCode[item.Code] = item
	}

	// Quantities merge into whatever is already in the cart. The last
	// quantity per item wins; zero removes the line; untouched lines
	// survive an edit.
	quantities := make(map[int]int, len(session.Cart))
	for _, line := range session.Cart {
		quantities[line.Code] = line.Quantity
	}
	var invalid []string
	for _, pair := range strings.Split(spec, ",") {
		parts := strings.SplitN(pair, "*", 2)
		code, _ := strconv.Atoi(parts[0])
		qty, _ := strconv.Atoi(parts[1])
		if _, ok := itemsByCode[code]; !ok {
			invalid = append(invalid, parts[0])
			continue
		}
		if qty <= 0 {
			delete(quantities, code)
			continue
		}
		quantities[code] = qty
	}
	if len(invalid) > 0 {
		return fmt.Sprintf("These item numbers are not on the menu: %s. Please try again.", strings.Join(invalid, ", ")), false, nil
	}
	if len(quantities) == 0 {
		return "Your cart would be empty. Please add at least one item with quantity 1 or more.", false, nil
	}

	codes := make([]int, 0, len(quantities))
	for code := range quantities {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	cart := make([]CartLine, 0, len(codes))
	for _, code := range codes {
		item := itemsByCode[code]
		cart = append(cart, CartLine{
			Code:       item.Code,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   quantities[code],
		})
	}

	session.Cart = cart
	session.Stage = StageCartReview
	return cartReviewReply(session), false, nil
}

func (m *Machine) cartReview(ctx context.Context, session *Session, input string) (string, bool, error) {
	switch strings.ToLower(input) {
	case "confirm", "1", "✅":
		result, err := m.Checkout.PlaceOrder(ctx, session.Phone, session.SelectedCanteenID, session.SelectedMenuID, session.Cart)
		if err != nil {
			return "We couldn't place your order just now. Reply confirm to try again or cancel to stop.", false, err
		}
		reply := fmt.Sprintf("Order %s confirmed! Total: ₹%.2f.", result.OrderNo, result.Total)
		if result.PaymentLink != "" {
			reply += fmt.Sprintf(" Pay the balance here: %s", result.PaymentLink)
		}
		reply += " Thank you!"
		return reply, true, nil
	case "edit", "2", "✏️":
		// The cart is kept; the next reply adjusts it line by line.
		session.Stage = StageCartSelection
		return itemListReply(session.Items), false, nil
	case "cancel", "3", "❌":
		return "Your order has been cancelled. Reply \"hi\" anytime to start again.", true, nil
	default:
		return "Reply confirm (1) to place the order, edit (2) to change items, or cancel (3) to stop.", false, nil
	}
}

// parseIndex converts a 1-based numeric reply into a slice index,
// rejecting anything out of bounds of the list the user actually saw.
func parseIndex(input string, length int) (int, bool) {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > length {
		return 0, false
	}
	return n - 1, true
}

func itemListReply(items []ItemOption) string {
	var b strings.Builder
	b.WriteString("Here's the menu. Reply with item*quantity pairs, e.g. 1*2,3*1:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%d. %s - ₹%.2f\n", item.Code, item.Name, item.Price)
	}
	return b.String()
}

func cartReviewReply(session *Session) string {
	var b strings.Builder
	b.WriteString("Your cart:\n")
	for _, line := range session.Cart {
		fmt.Fprintf(&b, "%s x%d - ₹%.2f\n", line.Name, line.Quantity, line.Price*float64(line.Quantity))
	}
	fmt.Fprintf(&b, "Total: ₹%.2f\n", session.CartTotal())
	b.WriteString("Reply confirm (1) to place the order, edit (2) to change items, or cancel (3) to stop.")
	return b.String()
}

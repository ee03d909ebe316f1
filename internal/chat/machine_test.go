package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ms-canteen/internal/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	canteens    []chat.CanteenOption
	canteensErr error
	menus       []chat.MenuOption
	menusErr    error
	items       []chat.ItemOption
	itemsErr    error

	lastMenuDate time.Time
}

func (f *fakeCatalog) ListCanteens(ctx context.Context) ([]chat.CanteenOption, error) {
	return f.canteens, f.canteensErr
}

func (f *fakeCatalog) ListMenus(ctx context.Context, canteenID string, date time.Time) ([]chat.MenuOption, error) {
	f.lastMenuDate = date
	return f.menus, f.menusErr
}

func (f *fakeCatalog) ListItems(ctx context.Context, menuID string) ([]chat.ItemOption, error) {
	return f.items, f.itemsErr
}

type fakeCheckout struct {
	err    error
	result *chat.CheckoutResult

	calls     int
	phone     string
	canteenID string
	menuID    string
	lines     []chat.CartLine
}

func (f *fakeCheckout) PlaceOrder(ctx context.Context, phone, canteenID, menuID string, lines []chat.CartLine) (*chat.CheckoutResult, error) {
	f.calls++
	f.phone = phone
	f.canteenID = canteenID
	f.menuID = menuID
	f.lines = lines
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestMachine() (*chat.Machine, *fakeCatalog, *fakeCheckout) {
	catalog := &fakeCatalog{
		canteens: []chat.CanteenOption{
			{ID: "canteen-1", Name: "Main Canteen"},
			{ID: "canteen-2", Name: "North Block"},
		},
		menus: []chat.MenuOption{
			{ID: "menu-1", Name: "Lunch"},
		},
		items: []chat.ItemOption{
			{MenuItemID: "mi-1", Name: "Masala Dosa", Price: 50},
			{MenuItemID: "mi-2", Name: "Chai", Price: 30},
		},
	}
	checkout := &fakeCheckout{
		result: &chat.CheckoutResult{OrderNo: "NV1234250101120000", Total: 130, PaymentLink: "https://pay.example/link"},
	}
	machine := chat.NewMachine(catalog, checkout)
	return machine, catalog, checkout
}

func TestConversationHappyPath(t *testing.T) {
	machine, _, checkout := newTestMachine()
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	reply, done, err := machine.Advance(ctx, session, "hi")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "1. Main Canteen")
	assert.Contains(t, reply, "2. North Block")
	assert.Equal(t, chat.StageMenuSelection, session.Stage)

	reply, done, err = machine.Advance(ctx, session, "1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "Today")
	assert.Equal(t, chat.StageDateSelection, session.Stage)
	assert.Equal(t, "canteen-1", session.SelectedCanteenID)

	reply, done, err = machine.Advance(ctx, session, "1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "1. Lunch")
	assert.Equal(t, chat.StageItemSelection, session.Stage)

	reply, done, err = machine.Advance(ctx, session, "1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "1. Masala Dosa - ₹50.00")
	assert.Contains(t, reply, "2. Chai - ₹30.00")
	assert.Equal(t, chat.StageCartSelection, session.Stage)
	assert.Equal(t, "menu-1", session.SelectedMenuID)

	reply, done, err = machine.Advance(ctx, session, "1*2,2*1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "Masala Dosa x2")
	assert.Contains(t, reply, "Total: ₹130.00")
	assert.Equal(t, chat.StageCartReview, session.Stage)

	reply, done, err = machine.Advance(ctx, session, "confirm")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, reply, "NV1234250101120000")
	assert.Contains(t, reply, "₹130.00")
	assert.Contains(t, reply, "https://pay.example/link")

	assert.Equal(t, 1, checkout.calls)
	assert.Equal(t, "919876543210", checkout.phone)
	assert.Equal(t, "canteen-1", checkout.canteenID)
	assert.Equal(t, "menu-1", checkout.menuID)
	require.Len(t, checkout.lines, 2)
	assert.Equal(t, "mi-1", checkout.lines[0].MenuItemID)
	assert.Equal(t, 2, checkout.lines[0].Quantity)
	assert.Equal(t, "mi-2", checkout.lines[1].MenuItemID)
	assert.Equal(t, 1, checkout.lines[1].Quantity)
}

func TestCanteenSelectionOutOfRange(t *testing.T) {
	machine, _, _ := newTestMachine()
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, err := machine.Advance(ctx, session, "hi")
	require.NoError(t, err)

	reply, done, err := machine.Advance(ctx, session, "5")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "between 1 and 2")
	assert.Equal(t, chat.StageMenuSelection, session.Stage)
	assert.Empty(t, session.SelectedCanteenID)
}

func TestUnknownGreetingGetsRestartHint(t *testing.T) {
	machine, _, _ := newTestMachine()
	session := chat.NewSession("919876543210")

	reply, done, err := machine.Advance(context.Background(), session, "what's for lunch?")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "hi")
	assert.Equal(t, chat.StageMenuSelection, session.Stage)
}

func TestDateSelectionInvalidInputKeepsStage(t *testing.T) {
	machine, _, _ := newTestMachine()
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, _ = machine.Advance(ctx, session, "hi")
	_, _, _ = machine.Advance(ctx, session, "2")

	reply, done, err := machine.Advance(ctx, session, "3")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "Reply 1 for today or 2 for tomorrow")
	assert.Equal(t, chat.StageDateSelection, session.Stage)
}

func TestDateSelectionNoMenusStays(t *testing.T) {
	machine, catalog, _ := newTestMachine()
	catalog.menus = nil
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, _ = machine.Advance(ctx, session, "hi")
	_, _, _ = machine.Advance(ctx, session, "1")

	reply, done, err := machine.Advance(ctx, session, "2")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "No menus are available")
	assert.Equal(t, chat.StageDateSelection, session.Stage)
	assert.Empty(t, session.MenuOptions)
}

func TestCartSpecValidation(t *testing.T) {
	machine, _, _ := newTestMachine()
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, _ = machine.Advance(ctx, session, "hi")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	require.Equal(t, chat.StageCartSelection, session.Stage)

	reply, _, err := machine.Advance(ctx, session, "two dosas please")
	require.NoError(t, err)
	assert.Contains(t, reply, "item*quantity")
	assert.Equal(t, chat.StageCartSelection, session.Stage)

	reply, _, err = machine.Advance(ctx, session, "1*2,9*1")
	require.NoError(t, err)
	assert.Contains(t, reply, "not on the menu: 9")
	assert.Equal(t, chat.StageCartSelection, session.Stage)
	assert.Empty(t, session.Cart)

	// All-zero quantities never make a cart.
	reply, _, err = machine.Advance(ctx, session, "1*0")
	require.NoError(t, err)
	assert.Contains(t, reply, "empty")
	assert.Equal(t, chat.StageCartSelection, session.Stage)
}

func TestCartSpecDuplicateCodeOverwrites(t *testing.T) {
	machine, _, _ := newTestMachine()
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, _ = machine.Advance(ctx, session, "hi")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")

	_, _, err := machine.Advance(ctx, session, "1*2, 1*3")
	require.NoError(t, err)
	require.Len(t, session.Cart, 1)
	assert.Equal(t, 3, session.Cart[0].Quantity)
}

func TestCartReviewEditKeepsExistingLines(t *testing.T) {
	machine, _, _ := newTestMachine()
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, _ = machine.Advance(ctx, session, "hi")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1*2,2*1")
	require.Equal(t, chat.StageCartReview, session.Stage)

	reply, done, err := machine.Advance(ctx, session, "edit")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "Masala Dosa")
	assert.Equal(t, chat.StageCartSelection, session.Stage)
	assert.Len(t, session.Cart, 2, "editing keeps the cart for adjustment")

	// Changing one line leaves the other untouched.
	reply, _, err = machine.Advance(ctx, session, "2*3")
	require.NoError(t, err)
	require.Len(t, session.Cart, 2)
	assert.Equal(t, 2, session.Cart[0].Quantity)
	assert.Equal(t, "Masala Dosa", session.Cart[0].Name)
	assert.Equal(t, 3, session.Cart[1].Quantity)
	assert.Equal(t, "Chai", session.Cart[1].Name)
	assert.Contains(t, reply, "Total: ₹190.00")
}

func TestCartEditRemovesLineWithZero(t *testing.T) {
	machine, _, _ := newTestMachine()
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, _ = machine.Advance(ctx, session, "hi")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1*2,2*1")
	_, _, _ = machine.Advance(ctx, session, "edit")

	_, _, err := machine.Advance(ctx, session, "2*0")
	require.NoError(t, err)
	require.Len(t, session.Cart, 1)
	assert.Equal(t, "Masala Dosa", session.Cart[0].Name)

	// Zeroing the last line would leave nothing, so it is refused.
	reply, _, err := machine.Advance(ctx, session, "1*0")
	require.NoError(t, err)
	assert.Contains(t, reply, "empty")
	require.Len(t, session.Cart, 1)
}

func TestGreetingRestartsMidConversation(t *testing.T) {
	machine, catalog, _ := newTestMachine()
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, _ = machine.Advance(ctx, session, "hi")
	_, _, _ = machine.Advance(ctx, session, "1")
	require.Equal(t, chat.StageDateSelection, session.Stage)

	reply, done, err := machine.Advance(ctx, session, "hi")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "1. Main Canteen")
	assert.Equal(t, chat.StageMenuSelection, session.Stage)
	assert.Empty(t, session.SelectedCanteenID)
	assert.Empty(t, session.Cart)

	// A catalog outage during the restart leaves the session alone.
	_, _, _ = machine.Advance(ctx, session, "1")
	require.Equal(t, chat.StageDateSelection, session.Stage)
	catalog.canteensErr = errors.New("connection refused")
	reply, done, err = machine.Advance(ctx, session, "hello")
	assert.Error(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "try again")
	assert.Equal(t, chat.StageDateSelection, session.Stage)
	assert.Equal(t, "canteen-1", session.SelectedCanteenID)
}

func TestCartReviewCancelEndsConversation(t *testing.T) {
	machine, _, checkout := newTestMachine()
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, _ = machine.Advance(ctx, session, "hi")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1*1")

	reply, done, err := machine.Advance(ctx, session, "cancel")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, reply, "cancelled")
	assert.Equal(t, 0, checkout.calls)
}

func TestCartReviewCheckoutFailureKeepsSession(t *testing.T) {
	machine, _, checkout := newTestMachine()
	checkout.err = errors.New("database down")
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, _ = machine.Advance(ctx, session, "hi")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1*1")

	reply, done, err := machine.Advance(ctx, session, "confirm")
	assert.Error(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "couldn't place your order")
	assert.Equal(t, chat.StageCartReview, session.Stage)

	// A retry after the outage succeeds with the same cart.
	checkout.err = nil
	reply, done, err = machine.Advance(ctx, session, "confirm")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, reply, "confirmed")
	assert.Equal(t, 2, checkout.calls)
}

func TestCatalogOutageLeavesStageUntouched(t *testing.T) {
	machine, catalog, _ := newTestMachine()
	catalog.canteensErr = errors.New("connection refused")
	session := chat.NewSession("919876543210")

	reply, done, err := machine.Advance(context.Background(), session, "hi")
	assert.Error(t, err)
	assert.False(t, done)
	assert.Contains(t, reply, "try again")
	assert.Equal(t, chat.StageMenuSelection, session.Stage)
}

func TestNumericReplyResolvesAgainstSnapshot(t *testing.T) {
	machine, catalog, checkout := newTestMachine()
	ctx := context.Background()
	session := chat.NewSession("919876543210")

	_, _, _ = machine.Advance(ctx, session, "hi")
	_, _, _ = machine.Advance(ctx, session, "2")

	// The catalog changes between messages; the session's snapshot is
	// what the user's numbers mean.
	catalog.canteens = []chat.CanteenOption{{ID: "canteen-9", Name: "New Canteen"}}
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1")
	_, _, _ = machine.Advance(ctx, session, "1*1")
	_, _, _ = machine.Advance(ctx, session, "confirm")

	assert.Equal(t, "canteen-2", checkout.canteenID)
}

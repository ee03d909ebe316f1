package order

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const (
	orderNoPrefix      = "NV"
	orderNoMaxAttempts = 5
	orderNoRetryDelay  = 10 * time.Millisecond
)

// newOrderNo builds an order number: prefix, digits drawn from the
// user's id, then the timestamp down to the second.
func newOrderNo(userID string, now time.Time) string {
	return orderNoPrefix + userDigits(userID) + now.Format("060102150405")
}

// userDigits keeps the first four digit characters of the id, padded
// with zeros for ids that carry fewer.
func userDigits(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	for b.Len() < 4 {
		b.WriteByte('0')
	}
	return b.String()
}

// generateUniqueOrderNo retries a few times against the current table
// contents. The unique index on orders.order_no is the real guarantee;
// a concurrent duplicate fails the insert and rolls the transaction
// back instead of silently colliding.
func (s *OrderService) generateUniqueOrderNo(ctx context.Context, idb bun.IDB, userID string) (string, error) {
	for attempt := 0; attempt < orderNoMaxAttempts; attempt++ {
		orderNo := newOrderNo(userID, time.Now())
		exists, err := s.DB.OrderNoExistsTx(ctx, idb, orderNo)
		if err != nil {
			return "", err
		}
		if !exists {
			return orderNo, nil
		}
		time.Sleep(orderNoRetryDelay)
	}
	return "", ErrOrderNumberExhausted
}

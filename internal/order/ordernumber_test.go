package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestNewOrderNoFormat(t *testing.T) {
	now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	orderNo := newOrderNo("4a9f12b8-77", now)

	require.Len(t, orderNo, 18)
	assert.Equal(t, "NV", orderNo[:2])
	assert.Equal(t, "4912", orderNo[2:6], "middle digits come from the user id")
	assert.Equal(t, "250102150405", orderNo[6:])
}

func TestUserDigits(t *testing.T) {
	assert.Equal(t, "1234", userDigits("user-1234-5678"))
	assert.Equal(t, "7000", userDigits("a7b"))
	assert.Equal(t, "0000", userDigits("no-digits-here"))
	assert.Equal(t, "0000", userDigits(""))
}

func TestNewOrderNoVariesAcrossUsers(t *testing.T) {
	now := time.Now()
	a := newOrderNo("1111-aaaa", now)
	b := newOrderNo("2222-bbbb", now)
	assert.NotEqual(t, a, b)
}

func TestParseClock(t *testing.T) {
	hour, minute, err := parseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8, hour)
	assert.Equal(t, 30, minute)

	hour, minute, err = parseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23, hour)
	assert.Equal(t, 59, minute)

	for _, bad := range []string{"8", "24:00", "12:60", "ab:cd", ""} {
		_, _, err := parseClock(bad)
		assert.Error(t, err, "expected %q to fail", bad)
	}
}

// alwaysTakenDB reports every candidate order number as taken.
type alwaysTakenDB struct {
	DBLayer
}

func (alwaysTakenDB) OrderNoExistsTx(ctx context.Context, idb bun.IDB, orderNo string) (bool, error) {
	return true, nil
}

func TestGenerateUniqueOrderNoExhausted(t *testing.T) {
	s := &OrderService{DB: alwaysTakenDB{}}
	_, err := s.generateUniqueOrderNo(context.Background(), nil, "u1")
	assert.ErrorIs(t, err, ErrOrderNumberExhausted)
}

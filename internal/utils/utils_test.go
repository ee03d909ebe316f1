package utils_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ms-canteen/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTransactionID(t *testing.T) {
	id := utils.GenerateTransactionID()
	assert.True(t, strings.HasPrefix(id, "txn_"))
	assert.NotEqual(t, id, utils.GenerateTransactionID())
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2025, 3, 14, 18, 45, 12, 999, loc)

	got := utils.StartOfDay(in)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, loc), got)
}

func TestAtTimeOfDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	day := time.Date(2025, 3, 14, 9, 12, 0, 0, loc)

	got := utils.AtTimeOfDay(day, 15, 30)
	assert.Equal(t, time.Date(2025, 3, 14, 15, 30, 0, 0, loc), got)
}

func TestUnixTimeToTime(t *testing.T) {
	got := utils.UnixTimeToTime(0)
	assert.Equal(t, int64(0), got.Unix())
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	utils.WriteError(rec, http.StatusInternalServerError, "failed to load payment", errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failed to load payment", resp.Message)
	assert.Empty(t, resp.Error, "internal detail must not reach the client")
}

func TestWriteErrorKeepsClientDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	utils.WriteError(rec, http.StatusBadRequest, "invalid order payload", errors.New("payment_mode must be one of online cash wallet"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "payment_mode must be one of online cash wallet", resp.Error)
}

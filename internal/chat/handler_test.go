package chat_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ms-canteen/internal/chat"
	"ms-canteen/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	to    []string
	texts []string
}

func (f *fakeSender) SendText(ctx context.Context, to, text string) error {
	f.to = append(f.to, to)
	f.texts = append(f.texts, text)
	return nil
}

func webhookBody(t *testing.T, msgStatus, recipient, source, text string) *bytes.Reader {
	t.Helper()
	payload := map[string]interface{}{
		"msgStatus":        msgStatus,
		"recipientAddress": recipient,
		"sourceAddress":    source,
		"messageParameters": map[string]interface{}{
			"text": map[string]string{"body": text},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func newWebhookHandler() (*chat.Handler, *chat.MemoryStore, *fakeSender, *fakeCheckout) {
	machine, _, checkout := newTestMachine()
	store := chat.NewMemoryStore()
	sender := &fakeSender{}
	handler := chat.NewHandler(store, machine, sender, "918800000000", logger.NewLogger())
	return handler, store, sender, checkout
}

func TestWebhookIgnoresDeliveryReceipts(t *testing.T) {
	handler, store, sender, _ := newWebhookHandler()

	req := httptest.NewRequest(http.MethodPost, "/webhook", webhookBody(t, "SENT", "918800000000", "919876543210", "hi"))
	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sender.texts)

	session, err := store.Get(context.Background(), "919876543210")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestWebhookRejectsMissingTextOrSource(t *testing.T) {
	handler, _, _, _ := newWebhookHandler()

	req := httptest.NewRequest(http.MethodPost, "/webhook", webhookBody(t, "RECEIVED", "918800000000", "", "hi"))
	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/webhook", webhookBody(t, "RECEIVED", "918800000000", "919876543210", ""))
	rec = httptest.NewRecorder()
	handler.Webhook(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookAcksOtherRecipients(t *testing.T) {
	handler, store, sender, _ := newWebhookHandler()

	req := httptest.NewRequest(http.MethodPost, "/webhook", webhookBody(t, "RECEIVED", "917700000000", "919876543210", "hi"))
	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sender.texts)

	session, err := store.Get(context.Background(), "919876543210")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestWebhookAdvancesAndSavesSession(t *testing.T) {
	handler, store, sender, _ := newWebhookHandler()

	req := httptest.NewRequest(http.MethodPost, "/webhook", webhookBody(t, "RECEIVED", "918800000000", "919876543210", "hi"))
	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.texts, 1)
	assert.Equal(t, "919876543210", sender.to[0])
	assert.Contains(t, sender.texts[0], "Main Canteen")

	session, err := store.Get(context.Background(), "919876543210")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Len(t, session.CanteenOptions, 2)
}

func TestWebhookDeletesSessionWhenDone(t *testing.T) {
	handler, store, sender, checkout := newWebhookHandler()
	ctx := context.Background()

	send := func(text string) {
		req := httptest.NewRequest(http.MethodPost, "/webhook", webhookBody(t, "RECEIVED", "918800000000", "919876543210", text))
		rec := httptest.NewRecorder()
		handler.Webhook(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	for _, text := range []string{"hi", "1", "1", "1", "1*2,2*1", "confirm"} {
		send(text)
	}

	assert.Equal(t, 1, checkout.calls)
	assert.Contains(t, sender.texts[len(sender.texts)-1], "confirmed")

	session, err := store.Get(ctx, "919876543210")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	handler, _, _, _ := newWebhookHandler()

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.Webhook(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ms-canteen/internal/logger"
	"ms-canteen/internal/utils"
)

// TextSender delivers the machine's replies; implemented by the
// WhatsApp client.
type TextSender interface {
	SendText(ctx context.Context, to, text string) error
}

type InboundMessage struct {
	MsgStatus         string `json:"msgStatus"`
	RecipientAddress  string `json:"recipientAddress"`
	SourceAddress     string `json:"sourceAddress"`
	MessageParameters struct {
		Text struct {
			Body string `json:"body"`
		} `json:"text"`
	} `json:"messageParameters"`
}

// Handler is the webhook endpoint for inbound provider messages. It
// filters delivery receipts, routes ordering-number traffic into the
// conversation machine, and acks everything else.
type Handler struct {
	Store          Store
	Machine        *Machine
	Sender         TextSender
	OrderingNumber string
	Log            *logger.Logger
}

func NewHandler(store Store, machine *Machine, sender TextSender, orderingNumber string, log *logger.Logger) *Handler {
	return &Handler{
		Store:          store,
		Machine:        machine,
		Sender:         sender,
		OrderingNumber: orderingNumber,
		Log:            log,
	}
}

func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var msg InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid webhook payload", err)
		return
	}

	// Delivery receipts and status updates share this endpoint; only
	// real inbound messages advance a conversation.
	if msg.MsgStatus != "RECEIVED" {
		utils.WriteJSON(w, http.StatusOK, "ignored", nil)
		return
	}

	if msg.SourceAddress == "" || msg.MessageParameters.Text.Body == "" {
		utils.WriteError(w, http.StatusBadRequest, "message text and source are required", nil)
		return
	}

	if h.OrderingNumber != "" && msg.RecipientAddress != h.OrderingNumber {
		// Traffic for other numbers on the same webhook is acked and
		// dropped.
		utils.WriteJSON(w, http.StatusOK, "recipient not handled", nil)
		return
	}

	ctx := r.Context()
	phone := msg.SourceAddress
	h.Log.LogChat(phone, fmt.Sprintf("inbound: %q", msg.MessageParameters.Text.Body))

	session, err := h.Store.Get(ctx, phone)
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to load session: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to load session", err)
		return
	}
	if session == nil {
		session = NewSession(phone)
	}

	reply, done, err := h.Machine.Advance(ctx, session, msg.MessageParameters.Text.Body)
	if err != nil {
		h.Log.LogChat(phone, fmt.Sprintf("transition error at %s: %v", session.Stage, err))
	}

	if done {
		if err := h.Store.Delete(ctx, phone); err != nil {
			h.Log.LogChat(phone, fmt.Sprintf("failed to delete session: %v", err))
		}
	} else {
		if err := h.Store.Save(ctx, session); err != nil {
			h.Log.LogChat(phone, fmt.Sprintf("failed to save session: %v", err))
		}
	}

	if err := h.Sender.SendText(ctx, phone, reply); err != nil {
		h.Log.LogChat(phone, fmt.Sprintf("reply send failed: %v", err))
	}

	utils.WriteJSON(w, http.StatusOK, "processed", nil)
}

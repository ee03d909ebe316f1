package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"
	"ms-canteen/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Store interface {
	GetPendingOnlinePayment(ctx context.Context, orderID string) (*models.Payment, error)
	SettleGatewayPayment(ctx context.Context, paymentID, orderID string, status models.PaymentStatus, transactionID string) error
}

// StatusChecker reconciles a payment against the gateway when the
// callback never arrived. Only the Cashfree client implements it.
type StatusChecker interface {
	LinkStatus(ctx context.Context, linkID string) (string, error)
}

type Handler struct {
	Store   Store
	Checker StatusChecker
	Log     *logger.Logger
}

func NewHandler(store Store, checker StatusChecker, log *logger.Logger) *Handler {
	return &Handler{Store: store, Checker: checker, Log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/callback", h.Callback)
	r.Post("/callback", h.Callback)
	r.Get("/reconcile/{orderID}", h.Reconcile)
}

// Callback handles the gateway redirect after the customer pays. Both
// GET and POST arrive here; parameters ride the query string or form.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid callback payload", err)
		return
	}

	orderID := r.FormValue("order_id")
	status := strings.ToUpper(r.FormValue("payment_status"))
	transactionID := r.FormValue("transaction_id")

	if orderID == "" {
		utils.WriteError(w, http.StatusBadRequest, "order_id is required", nil)
		return
	}

	pending, err := h.Store.GetPendingOnlinePayment(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Duplicate callback or already reconciled. Ack so the
			// gateway stops retrying.
			utils.WriteJSON(w, http.StatusOK, "no pending payment for order", nil)
			return
		}
		h.Log.Error("API", fmt.Sprintf("failed to load payment: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to load payment", err)
		return
	}

	newStatus := models.StatusFailed
	if status == "SUCCESS" {
		newStatus = models.StatusSuccess
	}
	if err := h.Store.SettleGatewayPayment(r.Context(), pending.ID, orderID, newStatus, transactionID); err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to update payment: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to update payment", err)
		return
	}

	h.Log.LogPayment("CALLBACK", orderID, fmt.Sprintf("payment %s -> %s", pending.ID, newStatus))
	utils.WriteJSON(w, http.StatusOK, "payment status recorded", map[string]string{
		"order_id": orderID,
		"status":   string(newStatus),
	})
}

// Reconcile asks the gateway for the link state directly, for payments
// stuck pending after a missed callback.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	pending, err := h.Store.GetPendingOnlinePayment(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.WriteError(w, http.StatusNotFound, "no pending payment for order", nil)
			return
		}
		h.Log.Error("API", fmt.Sprintf("failed to load payment: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to load payment", err)
		return
	}

	if h.Checker == nil || pending.GatewayLinkID == "" {
		utils.WriteError(w, http.StatusBadRequest, "payment has no gateway link to reconcile", nil)
		return
	}

	linkStatus, err := h.Checker.LinkStatus(r.Context(), pending.GatewayLinkID)
	if err != nil {
		utils.WriteError(w, http.StatusBadGateway, "gateway status check failed", err)
		return
	}

	newStatus := pending.Status
	switch linkStatus {
	case "PAID":
		newStatus = models.StatusSuccess
	case "EXPIRED", "CANCELLED":
		newStatus = models.StatusFailed
	}
	if newStatus != pending.Status {
		if err := h.Store.SettleGatewayPayment(r.Context(), pending.ID, orderID, newStatus, ""); err != nil {
			h.Log.Error("API", fmt.Sprintf("failed to update payment: %v", err))
			utils.WriteError(w, http.StatusInternalServerError, "failed to update payment", err)
			return
		}
		h.Log.LogPayment("RECONCILE", orderID, fmt.Sprintf("payment %s -> %s", pending.ID, newStatus))
	}

	utils.WriteJSON(w, http.StatusOK, "payment reconciled", map[string]string{
		"order_id":    orderID,
		"link_status": linkStatus,
		"status":      string(newStatus),
	})
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ms-canteen/internal/auth"
	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"
	"ms-canteen/internal/order"
	"ms-canteen/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	OrderService *order.OrderService
	Validate     *validator.Validate
	Log          *logger.Logger
}

func NewHandler(orderService *order.OrderService, log *logger.Logger) *Handler {
	return &Handler{
		OrderService: orderService,
		Validate:     validator.New(),
		Log:          log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.PlaceOrder)
	r.Get("/my", h.MyOrders)
	r.Get("/{orderID}", h.GetOrder)
	r.Get("/no/{orderNo}", h.GetOrderByNo)
	r.Post("/{orderID}/cancel", h.CancelOrder)
}

// AdminRoutes carries the canteen-side surfaces: walk-in entry, status
// updates and the daily dashboard.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/walkin", h.WalkInOrder)
	r.Patch("/{orderID}/status", h.UpdateStatus)
	r.Get("/dashboard/{canteenID}", h.Dashboard)
}

func (h *Handler) WalletRoutes(r chi.Router) {
	r.Get("/", h.GetWallet)
}

func (h *Handler) WalletAdminRoutes(r chi.Router) {
	r.Post("/topup", h.TopUpWallet)
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid order payload", err)
		return
	}
	// The caller orders for themselves; the body's user id is only
	// honoured for admin tooling.
	if uid := auth.UserID(r.Context()); uid != "" && auth.Role(r.Context()) == string(models.RoleCustomer) {
		req.UserID = uid
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid order payload", err)
		return
	}

	h.Log.LogAPI("POST", "/api/order", "placing", req.UserID)
	resp, err := h.OrderService.PlaceOrder(r.Context(), req)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, "order placed", resp)
}

func (h *Handler) WalkInOrder(w http.ResponseWriter, r *http.Request) {
	var req models.WalkInOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid walk-in payload", err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid walk-in payload", err)
		return
	}

	resp, err := h.OrderService.PlaceWalkInOrder(r.Context(), req)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, "walk-in order placed", resp)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderData, err := h.OrderService.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "order fetched", orderData)
}

func (h *Handler) GetOrderByNo(w http.ResponseWriter, r *http.Request) {
	orderData, err := h.OrderService.GetOrderByOrderNo(r.Context(), chi.URLParam(r, "orderNo"))
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "order fetched", orderData)
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderService.ListOrdersByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to list orders: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list orders", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "orders fetched", orders)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	h.Log.LogAPI("POST", fmt.Sprintf("/api/order/%s/cancel", orderID), "cancelling", "")

	cancelled, err := h.OrderService.CancelOrder(r.Context(), orderID)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "order cancelled", cancelled)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.OrderStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid status payload", err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid status payload", err)
		return
	}

	orderID := chi.URLParam(r, "orderID")
	if err := h.OrderService.UpdateStatus(r.Context(), orderID, req.Status); err != nil {
		h.writeOrderError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "order status updated", map[string]string{
		"order_id": orderID,
		"status":   string(req.Status),
	})
}

// Dashboard serves /dashboard/{canteenID}?date=YYYY-MM-DD, defaulting
// to today.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
			return
		}
		day = parsed
	}

	orders, err := h.OrderService.ListOrdersForCanteen(r.Context(), chi.URLParam(r, "canteenID"), day)
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to load dashboard: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to load dashboard", err)
		return
	}

	var revenue float64
	for _, o := range orders {
		if o.Status != models.OrderCancelled {
			revenue += o.TotalAmount
		}
	}
	utils.WriteJSON(w, http.StatusOK, "dashboard fetched", map[string]interface{}{
		"date":    day.Format("2006-01-02"),
		"count":   len(orders),
		"revenue": revenue,
		"orders":  orders,
	})
}

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	summary, err := h.OrderService.GetWalletSummary(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to fetch wallet: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch wallet", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "wallet fetched", summary)
}

func (h *Handler) TopUpWallet(w http.ResponseWriter, r *http.Request) {
	var req models.WalletTopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid top-up payload", err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid top-up payload", err)
		return
	}

	entry, err := h.OrderService.TopUpWallet(r.Context(), req)
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to top up wallet: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to top up wallet", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, "wallet credited", entry)
}

// writeOrderError maps domain errors onto conventional status codes.
func (h *Handler) writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrCartNotFound),
		errors.Is(err, order.ErrMenuNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, order.ErrCartEmpty),
		errors.Is(err, order.ErrInsufficientBalance),
		errors.Is(err, order.ErrInvalidStatusChange):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, order.ErrOrderAlreadyFinal),
		errors.Is(err, order.ErrCancellationWindowClosed),
		errors.Is(err, order.ErrOrderNumberExhausted):
		utils.WriteError(w, http.StatusConflict, err.Error(), nil)
	default:
		h.Log.Error("API", fmt.Sprintf("internal error: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "internal error", err)
	}
}

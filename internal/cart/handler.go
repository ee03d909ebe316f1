package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-canteen/internal/auth"
	"ms-canteen/internal/logger"
	"ms-canteen/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	Service  *Service
	Validate *validator.Validate
	Log      *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Validate: validator.New(), Log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/item", h.SetItem)
	r.Get("/", h.GetCart)
	r.Delete("/", h.ClearCart)
}

type SetItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gte=0"`
}

func (h *Handler) SetItem(w http.ResponseWriter, r *http.Request) {
	var req SetItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid cart payload", err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid cart payload", err)
		return
	}

	cart, err := h.Service.SetItem(r.Context(), auth.UserID(r.Context()), req.MenuItemID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, ErrItemNotAvailable):
			utils.WriteError(w, http.StatusBadRequest, "menu item is not available", nil)
		case errors.Is(err, ErrCartNotFound):
			utils.WriteJSON(w, http.StatusOK, "cart is empty", nil)
		default:
			h.Log.Error("API", fmt.Sprintf("failed to update cart: %v", err))
			utils.WriteError(w, http.StatusInternalServerError, "failed to update cart", err)
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, "cart updated", cart)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Service.GetCart(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			utils.WriteError(w, http.StatusNotFound, "no cart found", nil)
			return
		}
		h.Log.Error("API", fmt.Sprintf("failed to fetch cart: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch cart", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "cart fetched", cart)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ClearCart(r.Context(), auth.UserID(r.Context())); err != nil {
		if errors.Is(err, ErrCartNotFound) {
			utils.WriteError(w, http.StatusNotFound, "no cart found", nil)
			return
		}
		h.Log.Error("API", fmt.Sprintf("failed to clear cart: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to clear cart", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "cart cleared", nil)
}

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

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
	r.Route("/canteen", func(r chi.Router) {
		r.Post("/", h.CreateCanteen)
		r.Get("/", h.ListCanteens)
		r.Get("/{id}", h.GetCanteen)
		r.Get("/{id}/menuconfigs", h.ListMenuConfigurations)
		r.Get("/{id}/menus", h.ListMenus)
		r.Get("/{id}/items", h.ListItems)
	})
	r.Route("/menuconfig", func(r chi.Router) {
		r.Post("/", h.CreateMenuConfiguration)
	})
	r.Route("/menu", func(r chi.Router) {
		r.Post("/", h.CreateMenu)
		r.Get("/{id}", h.GetMenu)
		r.Post("/item", h.AddMenuItem)
	})
	r.Route("/item", func(r chi.Router) {
		r.Post("/", h.CreateItem)
	})
}

func (h *Handler) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return h.Validate.Struct(dst)
}

func (h *Handler) CreateCanteen(w http.ResponseWriter, r *http.Request) {
	var req CreateCanteenRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid canteen payload", err)
		return
	}

	canteen, err := h.Service.CreateCanteen(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			utils.WriteError(w, http.StatusConflict, "canteen code already exists", err)
			return
		}
		h.Log.Error("API", fmt.Sprintf("failed to create canteen: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to create canteen", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, "canteen created", canteen)
}

func (h *Handler) ListCanteens(w http.ResponseWriter, r *http.Request) {
	canteens, err := h.Service.ListCanteens(r.Context())
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to list canteens: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list canteens", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "canteens fetched", canteens)
}

func (h *Handler) GetCanteen(w http.ResponseWriter, r *http.Request) {
	canteen, err := h.Service.GetCanteen(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "canteen not found", nil)
			return
		}
		h.Log.Error("API", fmt.Sprintf("failed to fetch canteen: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch canteen", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "canteen fetched", canteen)
}

func (h *Handler) CreateMenuConfiguration(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuConfigRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid menu configuration payload", err)
		return
	}

	cfg, err := h.Service.CreateMenuConfiguration(r.Context(), req)
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to create menu configuration: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to create menu configuration", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, "menu configuration created", cfg)
}

func (h *Handler) ListMenuConfigurations(w http.ResponseWriter, r *http.Request) {
	configs, err := h.Service.ListMenuConfigurations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to list menu configurations: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list menu configurations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "menu configurations fetched", configs)
}

func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid menu payload", err)
		return
	}

	menu, err := h.Service.CreateMenu(r.Context(), req)
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to create menu: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to create menu", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, "menu created", menu)
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Service.GetMenu(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "menu not found", nil)
			return
		}
		h.Log.Error("API", fmt.Sprintf("failed to fetch menu: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch menu", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "menu fetched", menu)
}

// ListMenus serves /canteen/{id}/menus?date=YYYY-MM-DD, defaulting to
// today.
func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
			return
		}
		day = parsed
	}

	menus, err := h.Service.ListMenus(r.Context(), chi.URLParam(r, "id"), day)
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to list menus: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list menus", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "menus fetched", menus)
}

func (h *Handler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	var req AddMenuItemRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid menu item payload", err)
		return
	}

	menuItem, err := h.Service.AddMenuItem(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "item not found", nil)
			return
		}
		h.Log.Error("API", fmt.Sprintf("failed to add menu item: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to add menu item", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, "menu item added", menuItem)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid item payload", err)
		return
	}

	item, err := h.Service.CreateItem(r.Context(), req)
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to create item: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to create item", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, "item created", item)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Log.Error("API", fmt.Sprintf("failed to list items: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list items", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, "items fetched", items)
}

package http

import (
	"net/http"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RestaurantHandler struct {
	service interfaces.CatalogService
	logger  logger.Logger
}

func NewRestaurantHandler(service interfaces.CatalogService, logger logger.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		service: service,
		logger:  logger,
	}
}

type CreateRestaurantRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description *string  `json:"description"`
	Address     string   `json:"address" validate:"required,min=5,max=500"`
	PhoneNumber *string  `json:"phone_number" validate:"omitempty,max=50"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

type CreateMenuItemRequest struct {
	RestaurantID uuid.UUID       `json:"restaurant_id" validate:"required"`
	Name         string          `json:"name" validate:"required,max=255"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     *string         `json:"category" validate:"omitempty,max=100"`
	IsAvailable  *bool           `json:"is_available"`
}

type UpdateMenuItemRequest struct {
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
}

func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r, 100)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	restaurants, err := h.service.ListRestaurants(r.Context(), page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, restaurants)
}

func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	restaurant, err := h.service.GetRestaurant(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, restaurant)
}

func (h *RestaurantHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	items, err := h.service.GetMenu(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *RestaurantHandler) AdminListRestaurants(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r, 100)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	restaurants, err := h.service.AdminListRestaurants(r.Context(), page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, restaurants)
}

func (h *RestaurantHandler) AdminGetMenu(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	items, err := h.service.AdminGetMenu(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *RestaurantHandler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req CreateRestaurantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	restaurant, err := h.service.CreateRestaurant(r.Context(), interfaces.CreateRestaurantCommand{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, restaurant)
}

// DeleteRestaurant also deletes every order placed against the restaurant.
func (h *RestaurantHandler) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteRestaurant(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RestaurantHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	item, err := h.service.CreateMenuItem(r.Context(), interfaces.CreateMenuItemCommand{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		IsAvailable:  req.IsAvailable,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *RestaurantHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req UpdateMenuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	item, err := h.service.UpdateMenuItem(r.Context(), interfaces.UpdateMenuItemCommand{
		ItemID:      id,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *RestaurantHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteMenuItem(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

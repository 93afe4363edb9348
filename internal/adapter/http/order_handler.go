package http

import (
	"net/http"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/domain"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	"github.com/google/uuid"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

type CreateOrderRequest struct {
	RestaurantID    uuid.UUID          `json:"restaurant_id" validate:"required"`
	DeliveryAddress string             `json:"delivery_address" validate:"min=5,max=500"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"gt=0"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	lines := make([]domain.OrderLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = domain.OrderLine{ItemID: item.ItemID, Quantity: item.Quantity}
	}

	order, err := h.service.CreateOrder(r.Context(), interfaces.CreateOrderCommand{
		UserID:          CurrentUser(r.Context()).ID,
		RestaurantID:    req.RestaurantID,
		DeliveryAddress: req.DeliveryAddress,
		Items:           lines,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r, 10)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), CurrentUser(r.Context()).ID, page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GetOrder answers 404 for orders of other users as well.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	order, err := h.service.GetOrder(r.Context(), id, CurrentUser(r.Context()).ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r, 100)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	orders, err := h.service.AdminListOrders(r.Context(), page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	order, err := h.service.AdminGetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req UpdateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	order, err := h.service.AdminSetStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) AdminCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	order, err := h.service.AdminCancelOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.AllStatuses)
}

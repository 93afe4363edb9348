package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
)

var ErrMalformedEvent = errors.New("malformed order event")

// OrderEventHandler is the downstream subscriber for order.created. It only
// records each event it receives.
type OrderEventHandler struct {
	logger logger.Logger
}

func NewOrderEventHandler(logger logger.Logger) *OrderEventHandler {
	return &OrderEventHandler{
		logger: logger,
	}
}

func (h *OrderEventHandler) HandleOrderEvent(ctx context.Context, body []byte) error {
	var event interfaces.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse order event", "", nil, err)
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if event.Order == nil {
		h.logger.Error("message_parse_failed", "Order event has no order", "",
			map[string]interface{}{"event_type": event.EventType}, ErrMalformedEvent)
		return ErrMalformedEvent
	}

	order := event.Order
	h.logger.Info("order_event_received", fmt.Sprintf("Received %s for order %s", event.EventType, order.ID),
		order.ID.String(), map[string]interface{}{
			"event_type":    event.EventType,
			"occurred_at":   event.OccurredAt,
			"order_id":      order.ID.String(),
			"restaurant_id": order.RestaurantID.String(),
			"user_id":       order.UserID.String(),
			"status":        order.Status,
			"total_amount":  order.TotalAmount.StringFixed(2),
			"items":         len(order.Items),
		})

	return nil
}

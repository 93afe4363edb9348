package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/fooddelivery/internal/domain"
)

const EventOrderCreated = "order.created"

// Сообщения RabbitMQ
type OrderEvent struct {
	EventType  string        `json:"event_type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Order      *domain.Order `json:"order"`
}

// Интерфейсы Messaging (Adapter/RabbitMQ)
type EventPublisher interface {
	// Publish routes payload under eventType. A publisher that could not
	// connect at startup logs and returns nil.
	Publish(ctx context.Context, eventType string, payload any) error
}

type EventConsumer interface {
	ConsumeOrderEvents(ctx context.Context, handler OrderEventHandler) error
}

type OrderEventHandler func(ctx context.Context, body []byte) error

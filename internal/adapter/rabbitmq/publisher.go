package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/config"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

var errNacked = errors.New("broker rejected the message")

type publisher struct {
	conn Connection
	cfg  config.RabbitMQConfig
	log  logger.Logger

	mu sync.Mutex
	ch Channel
}

// NewPublisher opens a confirm-mode channel and declares the exchange and
// the durable queue bound to cfg.RoutingKey. A nil conn yields a disabled
// publisher that logs and drops every event.
func NewPublisher(conn Connection, cfg config.RabbitMQConfig, log logger.Logger) (interfaces.EventPublisher, error) {
	p := &publisher{conn: conn, cfg: cfg, log: log}
	if conn == nil {
		return p, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.openChannel(); err != nil {
		return nil, err
	}
	return p, nil
}

// openChannel must be called with p.mu held.
func (p *publisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}

	if err := setupTopology(ch, p.cfg); err != nil {
		ch.Close()
		return err
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	p.ch = ch
	return nil
}

func setupTopology(ch Channel, cfg config.RabbitMQConfig) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if cfg.Queue == "" {
		return nil
	}

	args := amqp.Table{}
	if cfg.QueueTTL > 0 {
		args["x-message-ttl"] = int32(cfg.QueueTTL / time.Millisecond)
	}
	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

func (p *publisher) Publish(ctx context.Context, eventType string, payload any) error {
	requestID := logger.RequestID(ctx)

	if p.conn == nil {
		p.log.Error("event_publish_skipped", "Publisher is disabled, event dropped", requestID,
			map[string]interface{}{"event_type": eventType}, nil)
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if err := p.openChannel(); err != nil {
			return fmt.Errorf("failed to reopen channel: %w", err)
		}
	}

	if p.cfg.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.PublishTimeout)
		defer cancel()
	}

	// the queue is bound to cfg.RoutingKey; eventType travels in the message type
	acked, err := p.ch.PublishConfirmed(ctx, p.cfg.Exchange, p.cfg.RoutingKey, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Type:         eventType,
		Body:         body,
	})
	if err != nil {
		// the channel state is unknown after a failed publish
		p.ch.Close()
		p.ch = nil
		return fmt.Errorf("failed to publish message: %w", err)
	}
	if !acked {
		return fmt.Errorf("failed to publish %s: %w", eventType, errNacked)
	}

	p.log.Debug("event_published", "Event published", requestID, map[string]interface{}{
		"exchange":    p.cfg.Exchange,
		"routing_key": p.cfg.RoutingKey,
		"event_type":  eventType,
	})
	return nil
}

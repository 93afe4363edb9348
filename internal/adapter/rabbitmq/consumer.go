package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/config"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
)

type consumer struct {
	conn Connection
	cfg  config.RabbitMQConfig
	log  logger.Logger
	dial DialFunc
}

func NewConsumer(conn Connection, cfg config.RabbitMQConfig, log logger.Logger) interfaces.EventConsumer {
	return &consumer{conn: conn, cfg: cfg, log: log, dial: dialAMQP}
}

// ConsumeOrderEvents blocks until ctx is cancelled, reconnecting whenever
// the channel or connection drops.
func (c *consumer) ConsumeOrderEvents(ctx context.Context, handler interfaces.OrderEventHandler) error {
	for {
		err := c.consume(ctx, handler)

		// Если контекст отменен или соединение закрыто намеренно - выходим
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err == nil {
			return nil
		}

		c.log.Warn("consumer_disconnected", "Order events consumer disconnected, reconnecting", "",
			map[string]interface{}{"retry_in": c.cfg.RetryDelay.String()}, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.RetryDelay):
		}

		if c.conn.IsClosed() {
			conn, err := connectWith(ctx, c.cfg, c.log, c.dial)
			if err != nil {
				c.log.Error("consumer_reconnect_failed", "Failed to reconnect to RabbitMQ", "", nil, err)
				continue
			}
			c.conn = conn
		}
	}
}

func (c *consumer) consume(ctx context.Context, handler interfaces.OrderEventHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	// Отслеживаем закрытие канала
	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := setupTopology(ch, c.cfg); err != nil {
		return err
	}

	msgs, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.log.Info("consumer_started", "Consuming order events", "", map[string]interface{}{
		"queue":       c.cfg.Queue,
		"routing_key": c.cfg.RoutingKey,
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			if err := handler(ctx, msg.Body); err != nil {
				// malformed events would fail forever, drop them
				msg.Nack(false, false)
			} else {
				msg.Ack(false)
			}
		}
	}
}

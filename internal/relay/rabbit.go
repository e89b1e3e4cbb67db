package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/config"
)

// rabbitClient implements Client over a topic exchange; the relay topic is
// the routing key, so one exchange fans out every record kind.
type rabbitClient struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	cfg    config.Relay
	logger *zap.Logger

	// Publishes share one channel and are serialized.
	mu sync.Mutex
}

func newRabbitClient(lc fx.Lifecycle, cfg config.Relay, logger *zap.Logger) (Client, error) {
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Rabbit.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	client := &rabbitClient{conn: conn, ch: ch, cfg: cfg, logger: logger}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if conn.IsClosed() {
				return errors.New("rabbitmq connection is closed")
			}
			logger.Info("rabbitmq relay connected", zap.String("exchange", cfg.Rabbit.Exchange))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("closing rabbitmq relay")
			if err := ch.Close(); err != nil {
				return err
			}
			return conn.Close()
		},
	})

	return client, nil
}

func (r *rabbitClient) Publish(ctx context.Context, topic string, key, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ch.PublishWithContext(ctx,
		r.cfg.Rabbit.Exchange,
		topic,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    string(key),
			Timestamp:    time.Now(),
			Body:         value,
		},
	)
}

func (r *rabbitClient) Consume(ctx context.Context, topics []string, handler Handler) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consume channel: %w", err)
	}
	defer ch.Close()

	queueName := fmt.Sprintf("%s.%s", r.cfg.Rabbit.Queue, r.cfg.ConsumerGroup)
	queue, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	for _, topic := range topics {
		if err := ch.QueueBind(queue.Name, topic, r.cfg.Rabbit.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", topic, err)
		}
	}

	deliveries, err := ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}

			wrapped := Message{
				Topic: d.RoutingKey,
				Key:   []byte(d.MessageId),
				Value: append([]byte(nil), d.Body...),
				Time:  d.Timestamp,
			}

			if err := handler(ctx, wrapped); err != nil {
				r.logger.Error("relay handler failed", zap.Error(err), zap.String("topic", d.RoutingKey))
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

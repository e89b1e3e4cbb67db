package relay

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/config"
)

// kafkaClient implements Client via kafka-go. One shared writer serves every
// topic; each Consume call gets its own group reader over the requested
// topics.
type kafkaClient struct {
	writer *kafka.Writer
	cfg    config.Relay
	logger *zap.Logger
}

func newKafkaClient(lc fx.Lifecycle, cfg config.Relay, logger *zap.Logger) (Client, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		Logger:       kafkaLogger{logger: logger},
		ErrorLogger:  kafkaLogger{logger: logger},
	}

	client := &kafkaClient{writer: writer, cfg: cfg, logger: logger}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("closing kafka relay")
			return writer.Close()
		},
	})

	return client, nil
}

func (k *kafkaClient) Publish(ctx context.Context, topic string, key, value []byte) error {
	return k.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: key, Value: value})
}

func (k *kafkaClient) Consume(ctx context.Context, topics []string, handler Handler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        k.cfg.Kafka.Brokers,
		GroupID:        k.cfg.ConsumerGroup,
		GroupTopics:    topics,
		MinBytes:       k.cfg.Kafka.MinBytes,
		MaxBytes:       k.cfg.Kafka.MaxBytes,
		CommitInterval: k.cfg.Kafka.CommitInterval,
		Dialer: &kafka.Dialer{
			Timeout:  k.cfg.Kafka.ConnectTimeout,
			ClientID: k.cfg.Kafka.ClientID,
		},
	})
	defer reader.Close()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			k.logger.Error("kafka fetch failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		wrapped := Message{
			Topic: msg.Topic,
			Key:   append([]byte(nil), msg.Key...),
			Value: append([]byte(nil), msg.Value...),
			Time:  msg.Time,
		}
		if len(msg.Headers) > 0 {
			wrapped.Headers = make(map[string]string, len(msg.Headers))
			for _, h := range msg.Headers {
				wrapped.Headers[h.Key] = string(h.Value)
			}
		}

		if err := handler(ctx, wrapped); err != nil {
			k.logger.Error("relay handler failed", zap.Error(err), zap.String("topic", msg.Topic))
			// Skip commit so the group redelivers.
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			k.logger.Warn("kafka commit failed", zap.Error(err))
		}
	}
}

type kafkaLogger struct {
	logger *zap.Logger
}

func (k kafkaLogger) Printf(msg string, args ...interface{}) {
	k.logger.Sugar().Debugf(msg, args...)
}

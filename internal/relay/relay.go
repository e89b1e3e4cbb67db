package relay

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/config"
)

// Op tags the storage operation that produced a change event.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ChangeEvent announces that a row of some record kind changed. It is a hint,
// not a patch: consumers must re-derive the whole kind from storage, because
// the relay guarantees nothing about payload completeness or ordering.
type ChangeEvent struct {
	Kind string `json:"kind"`
	Op   Op     `json:"op"`
	ID   int64  `json:"id,omitempty"`
}

// Encode marshals the event for publishing.
func (e ChangeEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeChangeEvent parses an event payload. A payload that fails to parse is
// still a valid "something changed" signal; callers decide how strict to be.
func DecodeChangeEvent(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	err := json.Unmarshal(data, &ev)
	return ev, err
}

// Message represents a message consumed from the relay.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
	Time    time.Time
}

// Handler processes an inbound message.
type Handler func(context.Context, Message) error

// Client is the pluggable notification-relay abstraction. Publish targets one
// topic per record kind; Consume delivers from every subscribed topic until
// the context ends.
type Client interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
	Consume(ctx context.Context, topics []string, handler Handler) error
}

// Module wires the relay client.
var Module = fx.Provide(NewClient)

// NewClient builds a relay client based on configuration.
func NewClient(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Client, error) {
	switch cfg.Relay.Driver {
	case "noop":
		logger.Info("relay disabled; using noop client")
		return noopClient{}, nil
	case "kafka":
		return newKafkaClient(lc, cfg.Relay, logger)
	case "rabbitmq":
		return newRabbitClient(lc, cfg.Relay, logger)
	default:
		// config.New rejects unknown drivers already
		logger.Warn("unknown relay driver; using noop client", zap.String("driver", cfg.Relay.Driver))
		return noopClient{}, nil
	}
}

// noopClient swallows publishes and blocks consumers; single-process setups
// still converge because every local mutation re-syncs immediately.
type noopClient struct{}

func (noopClient) Publish(context.Context, string, []byte, []byte) error { return nil }

func (noopClient) Consume(ctx context.Context, _ []string, _ Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

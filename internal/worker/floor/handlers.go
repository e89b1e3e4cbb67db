package floor

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/config"
	"github.com/restoapp/pos/internal/relay"
	floorsvc "github.com/restoapp/pos/internal/service/floor"
	"github.com/restoapp/pos/internal/worker"
)

var workerTracer = otel.Tracer("github.com/restoapp/pos/worker/floor")

// Module registers the re-sync handlers for every watched record kind.
var Module = fx.Module("worker_floor",
	fx.Provide(
		fx.Annotate(
			NewTablesHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
		fx.Annotate(
			NewOrdersHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
		fx.Annotate(
			NewSalesHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewTablesHandler re-syncs the floor whenever a peer changes a table.
func NewTablesHandler(coord *floorsvc.Coordinator, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	return worker.HandlerRegistration{
		Topic:   cfg.Relay.Topics.Tables,
		Handler: resyncHandler(coord, logger),
	}
}

// NewOrdersHandler re-syncs the floor whenever a peer changes an order.
func NewOrdersHandler(coord *floorsvc.Coordinator, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	return worker.HandlerRegistration{
		Topic:   cfg.Relay.Topics.Orders,
		Handler: resyncHandler(coord, logger),
	}
}

// NewSalesHandler re-syncs the floor whenever a peer records a sale.
func NewSalesHandler(coord *floorsvc.Coordinator, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	return worker.HandlerRegistration{
		Topic:   cfg.Relay.Topics.Sales,
		Handler: resyncHandler(coord, logger),
	}
}

// resyncHandler treats any event on the topic as a hint that storage changed
// and rebuilds the whole projection. The payload is decoded only for logging;
// even an undecodable event still triggers the re-sync, because the hint is
// the delivery itself, not the payload.
func resyncHandler(coord *floorsvc.Coordinator, logger *zap.Logger) relay.Handler {
	return func(ctx context.Context, msg relay.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.floor.resync", trace.WithAttributes(
			attribute.String("relay.topic", msg.Topic),
		))
		defer span.End()

		if event, err := relay.DecodeChangeEvent(msg.Value); err == nil {
			logger.Debug("change event received",
				zap.String("topic", msg.Topic),
				zap.String("kind", event.Kind),
				zap.String("op", string(event.Op)),
				zap.Int64("id", event.ID),
			)
		} else {
			logger.Warn("undecodable change event; re-syncing anyway", zap.String("topic", msg.Topic), zap.Error(err))
		}

		if _, err := coord.Resync(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "resync failed")
			return err
		}

		return nil
	}
}

package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/restoapp/pos/internal/database"
	"github.com/restoapp/pos/internal/entity"
)

var repoTracer = otel.Tracer("github.com/restoapp/pos/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// ErrMalformed is returned when a fetched row fails boundary validation.
var ErrMalformed = errors.New("malformed order row")

// Repository encapsulates read/write access for orders and their items.
// Orders are always loaded together with their items in one logical read.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// ActiveByTable returns the single non-finalized order for a table, or
// ErrNotFound. The coordinator relies on this check before creating a new
// order, since storage does not enforce the one-active-order invariant.
// Oldest first, so a breached invariant resolves to the same order the
// floor projection displays.
func (r *Repository) ActiveByTable(ctx context.Context, tableID int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ActiveByTable", trace.WithAttributes(attribute.Int64("table.id", tableID)))
	defer span.End()

	ord := new(entity.Order)
	err := r.reader.NewSelect().Model(ord).
		Relation("Items").
		Where("o.table_id = ?", tableID).
		Where("o.status != ?", entity.OrderFinalized).
		Order("o.created_at ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	if err := validate(ord); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}
	return ord, nil
}

// ListActive returns every non-finalized order with items, oldest first, the
// way the kitchen queue wants them.
func (r *Repository) ListActive(ctx context.Context) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListActive")
	defer span.End()

	var orders []entity.Order
	err := r.reader.NewSelect().Model(&orders).
		Relation("Items").
		Where("o.status != ?", entity.OrderFinalized).
		Order("o.created_at ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	for i := range orders {
		if err := validate(&orders[i]); err != nil {
			span.SetStatus(codes.Error, "validation failed")
			return nil, err
		}
	}
	return orders, nil
}

// GetByID fetches one order with its items.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	ord := new(entity.Order)
	err := r.reader.NewSelect().Model(ord).
		Relation("Items").
		Where("o.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	if err := validate(ord); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}
	return ord, nil
}

// Create persists a new order row.
func (r *Repository) Create(ctx context.Context, ord *entity.Order) error {
	if ord == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.Int64("table.id", ord.TableID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(ord).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// AddItem appends one line to an order. Sends are additive: existing rows are
// never replaced, so two concurrent sends both land.
func (r *Repository) AddItem(ctx context.Context, item *entity.OrderItem) error {
	if item == nil {
		return errors.New("nil order item")
	}
	if !item.Valid() {
		return ErrMalformed
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.AddItem", trace.WithAttributes(
		attribute.Int64("order.id", item.OrderID),
		attribute.String("item.name", item.Name),
	))
	defer span.End()

	_, err := r.writer.NewInsert().Model(item).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// SetTotal refreshes the stored convenience total. Projections never trust
// it; they recompute from item subtotals.
func (r *Repository) SetTotal(ctx context.Context, id int64, total float64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.SetTotal", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	_, err := r.writer.NewUpdate().
		Model((*entity.Order)(nil)).
		Set("total = ?", total).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// AdvanceStatus performs the optimistic kitchen transition: the row only
// moves when it is still in the expected source state. A false return means
// somebody else advanced (or finalized) the order first.
func (r *Repository) AdvanceStatus(ctx context.Context, id int64, from, to entity.OrderStatus) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.AdvanceStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.from", string(from)),
		attribute.String("order.to", string(to)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.Order)(nil)).
		Set("status = ?", to).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Finalize marks an order settled, but only if nobody settled it first. This
// turns the double-settlement race into a detected conflict.
func (r *Repository) Finalize(ctx context.Context, id int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Finalize", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.Order)(nil)).
		Set("status = ?", entity.OrderFinalized).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Where("status != ?", entity.OrderFinalized).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func validate(ord *entity.Order) error {
	if ord.Status.Rank() < 0 {
		return ErrMalformed
	}
	for i := range ord.Items {
		if !ord.Items[i].Valid() {
			return ErrMalformed
		}
	}
	return nil
}

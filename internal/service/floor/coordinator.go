package floor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/config"
	"github.com/restoapp/pos/internal/dto"
	"github.com/restoapp/pos/internal/entity"
	"github.com/restoapp/pos/internal/relay"
	menurepo "github.com/restoapp/pos/internal/repository/menu"
	orderrepo "github.com/restoapp/pos/internal/repository/order"
	tablerepo "github.com/restoapp/pos/internal/repository/table"
	"github.com/restoapp/pos/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/restoapp/pos/service/floor")

// Coordinator owns all table and order mutations. Handlers and workers never
// touch the gateways directly; routing every mutation through one injected
// component is what keeps the single-writer discipline testable.
//
// Staged pads and the floor snapshot are process-local; storage rows are the
// only shared state. After any mutation, local or remote, the projection is
// rebuilt wholesale from storage rather than patched incrementally.
type Coordinator struct {
	tables TableGateway
	orders OrderGateway
	menu   MenuGateway
	sales  SaleGateway

	relay   relay.Client
	topics  config.Topics
	relayOn bool
	logger  *zap.Logger

	mu      sync.Mutex
	pads    map[int]*pad
	current dto.FloorSnapshot
	subs    map[int64]chan dto.FloorSnapshot
	roles   map[int64]entity.Role
	nextSub int64
}

// NewCoordinator wires a coordinator over its storage gateways and the
// change-notification relay.
func NewCoordinator(tables TableGateway, orders OrderGateway, menu MenuGateway, sales SaleGateway, rel relay.Client, cfg config.Config, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		tables:  tables,
		orders:  orders,
		menu:    menu,
		sales:   sales,
		relay:   rel,
		topics:  cfg.Relay.Topics,
		relayOn: cfg.Relay.Enabled,
		logger:  logger,
		pads:    make(map[int]*pad),
		subs:    make(map[int64]chan dto.FloorSnapshot),
		roles:   make(map[int64]entity.Role),
	}
}

// StageItem adds a menu item to a table's pad. The name and unit price are
// captured here, so a later menu edit never changes what was staged.
func (c *Coordinator) StageItem(ctx context.Context, req dto.StageItemRequest) (dto.StagingResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "Coordinator.StageItem", trace.WithAttributes(
		attribute.Int("table.number", req.TableNumber),
		attribute.Int64("menu_item.id", req.MenuItemID),
	))
	defer span.End()

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return dto.StagingResponse{}, errorbank.BadRequest("quantity must be positive")
	}

	if _, err := c.tables.GetByNumber(ctx, req.TableNumber); err != nil {
		if errors.Is(err, tablerepo.ErrNotFound) {
			return dto.StagingResponse{}, errorbank.NotFound("table not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "table lookup failed")
		return dto.StagingResponse{}, errorbank.Internal("failed to load table", errorbank.WithCause(err))
	}

	item, err := c.menu.GetByID(ctx, req.MenuItemID)
	if err != nil {
		if errors.Is(err, menurepo.ErrNotFound) {
			return dto.StagingResponse{}, errorbank.NotFound("menu item not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "menu lookup failed")
		return dto.StagingResponse{}, errorbank.Internal("failed to load menu item", errorbank.WithCause(err))
	}
	if !item.Available {
		return dto.StagingResponse{}, errorbank.Unprocessable("menu item is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pads[req.TableNumber]
	if p == nil {
		p = &pad{}
		c.pads[req.TableNumber] = p
	}
	p.add(item.ID, item.Name, item.Price, qty)
	return p.snapshot(req.TableNumber), nil
}

// AdjustStagedQuantity applies a signed delta to a staged line; reaching zero
// removes the line. Lines already sent to the kitchen are out of reach.
func (c *Coordinator) AdjustStagedQuantity(ctx context.Context, req dto.AdjustStagedRequest) (dto.StagingResponse, error) {
	_, span := serviceTracer.Start(ctx, "Coordinator.AdjustStagedQuantity", trace.WithAttributes(
		attribute.Int("table.number", req.TableNumber),
		attribute.Int64("menu_item.id", req.MenuItemID),
		attribute.Int("delta", req.Delta),
	))
	defer span.End()

	if req.Delta == 0 {
		return dto.StagingResponse{}, errorbank.BadRequest("delta must be non-zero")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pads[req.TableNumber]
	if p == nil || !p.adjust(req.MenuItemID, req.Delta) {
		return dto.StagingResponse{}, errorbank.NotFound("no staged line for that item")
	}
	return p.snapshot(req.TableNumber), nil
}

// Staged returns a table's current pad.
func (c *Coordinator) Staged(tableNumber int) dto.StagingResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pads[tableNumber]
	if p == nil {
		return dto.StagingResponse{TableNumber: tableNumber, Lines: []dto.StagedLine{}}
	}
	return p.snapshot(tableNumber)
}

// SendToKitchen commits a table's pad to storage. Sends are additive: when the
// table already has an active order the lines are appended to it, otherwise a
// fresh pending order is created and the table marked occupied. The pad is
// cleared only after every line has landed.
func (c *Coordinator) SendToKitchen(ctx context.Context, req dto.SendToKitchenRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "Coordinator.SendToKitchen", trace.WithAttributes(attribute.Int("table.number", req.TableNumber)))
	defer span.End()

	c.mu.Lock()
	p := c.pads[req.TableNumber]
	var lines []dto.StagedLine
	if p != nil {
		lines = append(lines, p.lines...)
	}
	c.mu.Unlock()

	if len(lines) == 0 {
		return nil, errorbank.BadRequest("nothing staged for this table")
	}

	tbl, err := c.tables.GetByNumber(ctx, req.TableNumber)
	if err != nil {
		if errors.Is(err, tablerepo.ErrNotFound) {
			return nil, errorbank.NotFound("table not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "table lookup failed")
		return nil, errorbank.Internal("failed to load table", errorbank.WithCause(err))
	}

	ord, err := c.orders.ActiveByTable(ctx, tbl.ID)
	created := false
	switch {
	case err == nil:
		// Existing active order: append, whatever its kitchen state.
	case errors.Is(err, orderrepo.ErrNotFound):
		ord = &entity.Order{
			TableID:   tbl.ID,
			WaiterID:  req.WaiterID,
			Status:    entity.OrderPending,
			CreatedAt: time.Now().UTC(),
		}
		if err := c.orders.Create(ctx, ord); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "order create failed")
			return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
		}
		created = true
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "order lookup failed")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	for i := range lines {
		item := &entity.OrderItem{
			OrderID:    ord.ID,
			MenuItemID: lines[i].MenuItemID,
			Name:       lines[i].Name,
			UnitPrice:  lines[i].UnitPrice,
			Quantity:   lines[i].Quantity,
		}
		if err := c.orders.AddItem(ctx, item); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "add item failed")
			return nil, errorbank.Internal("failed to add order item", errorbank.WithCause(err))
		}
	}

	if created {
		if err := c.tables.SetStatus(ctx, tbl.ID, entity.TableOccupied); err != nil {
			c.logger.Warn("mark table occupied failed; projection will re-derive", zap.Int("table", tbl.Number), zap.Error(err))
		}
		c.notify(ctx, c.topics.Tables, "tables", relay.OpUpdate, tbl.ID)
	}

	ord, err = c.orders.GetByID(ctx, ord.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order reload failed")
		return nil, errorbank.Internal("failed to reload order", errorbank.WithCause(err))
	}
	if err := c.orders.SetTotal(ctx, ord.ID, ord.ItemsTotal()); err != nil {
		c.logger.Warn("refresh order total failed", zap.Int64("order", ord.ID), zap.Error(err))
	}
	ord.Total = ord.ItemsTotal()

	c.mu.Lock()
	delete(c.pads, req.TableNumber)
	c.mu.Unlock()

	op := relay.OpUpdate
	if created {
		op = relay.OpInsert
	}
	c.notify(ctx, c.topics.Orders, "orders", op, ord.ID)

	if _, err := c.Resync(ctx); err != nil {
		c.logger.Warn("post-send resync failed", zap.Error(err))
	}
	return ord, nil
}

// AdvanceKitchenState moves an order one workflow step forward. The target
// state is derived from the current one, never supplied by the caller. A
// duplicate advance on a ready order is a tolerated no-op; losing the
// conditional write to a concurrent actor is a conflict.
func (c *Coordinator) AdvanceKitchenState(ctx context.Context, orderID int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "Coordinator.AdvanceKitchenState", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	ord, err := c.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "order lookup failed")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	next, ok := ord.Status.Next()
	if !ok {
		if ord.Status == entity.OrderReady {
			c.logger.Warn("advance on ready order ignored", zap.Int64("order", ord.ID))
			return ord, nil
		}
		return nil, errorbank.Conflict("order is already finalized")
	}

	updated, err := c.orders.AdvanceStatus(ctx, ord.ID, ord.Status, next)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "advance failed")
		return nil, errorbank.Internal("failed to advance order", errorbank.WithCause(err))
	}
	if !updated {
		return nil, errorbank.Conflict("order state changed concurrently")
	}
	ord.Status = next

	c.notify(ctx, c.topics.Orders, "orders", relay.OpUpdate, ord.ID)
	if _, err := c.Resync(ctx); err != nil {
		c.logger.Warn("post-advance resync failed", zap.Error(err))
	}
	return ord, nil
}

// SettleBill finalizes a table's active order and records the sale. The
// finalize is a conditional write, so two cashiers settling the same bill
// produce one sale and one rejected conflict, never two sales. The sale
// snapshot freezes the settled lines; later mutations cannot reach it.
func (c *Coordinator) SettleBill(ctx context.Context, req dto.SettleBillRequest) (*entity.Sale, error) {
	ctx, span := serviceTracer.Start(ctx, "Coordinator.SettleBill", trace.WithAttributes(attribute.Int("table.number", req.TableNumber)))
	defer span.End()

	tbl, err := c.tables.GetByNumber(ctx, req.TableNumber)
	if err != nil {
		if errors.Is(err, tablerepo.ErrNotFound) {
			return nil, errorbank.NotFound("table not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "table lookup failed")
		return nil, errorbank.Internal("failed to load table", errorbank.WithCause(err))
	}

	ord, err := c.orders.ActiveByTable(ctx, tbl.ID)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("no active order for this table")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "order lookup failed")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	// An order with no lines has nothing to bill. Refuse before the
	// finalize write so the order stays open for a later send.
	if len(ord.Items) == 0 {
		return nil, errorbank.BadRequest("order has no items to settle")
	}

	finalized, err := c.orders.Finalize(ctx, ord.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "finalize failed")
		return nil, errorbank.Internal("failed to finalize order", errorbank.WithCause(err))
	}
	if !finalized {
		return nil, errorbank.Conflict("bill already settled")
	}

	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to snapshot order items", errorbank.WithCause(err))
	}
	sale := &entity.Sale{
		Receipt:     uuid.NewString(),
		OrderID:     ord.ID,
		TableNumber: tbl.Number,
		Total:       ord.ItemsTotal(),
		ItemCount:   ord.ItemCount(),
		ItemsJSON:   itemsJSON,
		CashierID:   req.CashierID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := c.sales.Create(ctx, sale); err != nil {
		// The order is finalized already; surface the failure rather
		// than trying to roll it back with another racy write.
		span.RecordError(err)
		span.SetStatus(codes.Error, "sale create failed")
		return nil, errorbank.Internal("order finalized but sale not recorded", errorbank.WithCause(err))
	}

	if err := c.tables.SetStatus(ctx, tbl.ID, entity.TableFree); err != nil {
		c.logger.Warn("free table failed; projection will re-derive", zap.Int("table", tbl.Number), zap.Error(err))
	}

	c.mu.Lock()
	delete(c.pads, req.TableNumber)
	c.mu.Unlock()

	c.notify(ctx, c.topics.Sales, "sales", relay.OpInsert, sale.ID)
	c.notify(ctx, c.topics.Orders, "orders", relay.OpUpdate, ord.ID)
	c.notify(ctx, c.topics.Tables, "tables", relay.OpUpdate, tbl.ID)

	if _, err := c.Resync(ctx); err != nil {
		c.logger.Warn("post-settle resync failed", zap.Error(err))
	}
	return sale, nil
}

// Resync rebuilds the floor projection from storage and fans the fresh
// snapshot out to every subscriber. It is the only way the projection ever
// changes; there is no incremental patching path to drift through.
func (c *Coordinator) Resync(ctx context.Context) (dto.FloorSnapshot, error) {
	ctx, span := serviceTracer.Start(ctx, "Coordinator.Resync")
	defer span.End()

	tables, err := c.tables.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list tables failed")
		return dto.FloorSnapshot{}, errorbank.Internal("failed to load tables", errorbank.WithCause(err))
	}
	active, err := c.orders.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list orders failed")
		return dto.FloorSnapshot{}, errorbank.Internal("failed to load orders", errorbank.WithCause(err))
	}

	snap := buildSnapshot(tables, active, time.Now().UTC())

	c.mu.Lock()
	c.current = snap
	for id, ch := range c.subs {
		view := viewFor(c.roles[id], snap)
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- view:
		default:
		}
	}
	c.mu.Unlock()

	return snap, nil
}

// Snapshot returns the last published projection without touching storage.
func (c *Coordinator) Snapshot() dto.FloorSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe registers a role-shaped view over projection refreshes. The
// channel holds only the latest snapshot; a slow consumer sees fewer, newer
// states instead of a backlog of stale ones. The cancel func must be called
// when the consumer goes away.
func (c *Coordinator) Subscribe(role entity.Role) (<-chan dto.FloorSnapshot, func(), error) {
	if !role.Known() {
		return nil, nil, errorbank.BadRequest("unknown role")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	id := c.nextSub
	ch := make(chan dto.FloorSnapshot, 1)
	c.subs[id] = ch
	c.roles[id] = role
	if !c.current.GeneratedAt.IsZero() {
		ch <- viewFor(role, c.current)
	}

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
		delete(c.roles, id)
	}
	return ch, cancel, nil
}

// notify publishes a change hint. Delivery is best effort; consumers that
// miss it converge on their next full re-sync, so a publish failure is
// logged and never fails the mutation that triggered it.
func (c *Coordinator) notify(ctx context.Context, topic, kind string, op relay.Op, id int64) {
	if !c.relayOn || c.relay == nil {
		return
	}
	payload, err := relay.ChangeEvent{Kind: kind, Op: op, ID: id}.Encode()
	if err != nil {
		c.logger.Error("encode change event", zap.Error(err))
		return
	}
	if err := c.relay.Publish(ctx, topic, []byte(uuid.NewString()), payload); err != nil {
		c.logger.Error("publish change event", zap.String("topic", topic), zap.Error(err))
	}
}

package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderStatus is the kitchen workflow state of an order. The progression is
// strictly forward: pending -> preparing -> ready -> finalized. Finalized is
// absorbing; no transition ever lowers the rank.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderFinalized OrderStatus = "finalized"
)

// Rank maps a status onto its position in the workflow. Unknown statuses rank
// below pending so malformed rows are caught at the gateway boundary.
func (s OrderStatus) Rank() int {
	switch s {
	case OrderPending:
		return 0
	case OrderPreparing:
		return 1
	case OrderReady:
		return 2
	case OrderFinalized:
		return 3
	default:
		return -1
	}
}

// Next returns the kitchen transition target derived from the current state.
// The caller never chooses the target, which prevents out-of-order jumps.
// ok is false when the order is ready (duplicate click, tolerated as a no-op)
// or finalized.
func (s OrderStatus) Next() (next OrderStatus, ok bool) {
	switch s {
	case OrderPending:
		return OrderPreparing, true
	case OrderPreparing:
		return OrderReady, true
	default:
		return s, false
	}
}

// Order is the active tab for one table visit. At most one non-finalized order
// may exist per table at any time; the coordinator enforces that by checking
// before creating, since storage only guarantees per-row atomicity.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID        int64       `bun:",pk,autoincrement" json:"id"`
	TableID   int64       `bun:"table_id,notnull" json:"table_id"`
	WaiterID  int64       `bun:"waiter_id,nullzero" json:"waiter_id,omitempty"`
	Status    OrderStatus `bun:"status,notnull,default:'pending'" json:"status"`
	Total     float64     `bun:"total,notnull,default:0" json:"total"`
	Items     []OrderItem `bun:"rel:has-many,join:id=order_id" json:"items"`
	CreatedAt time.Time   `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time   `bun:"updated_at,nullzero" json:"updated_at"`
}

// ItemsTotal recomputes the order total from its item subtotals. The stored
// Total column is only a convenience copy; every projection uses this.
func (o *Order) ItemsTotal() float64 {
	var sum float64
	for i := range o.Items {
		sum += o.Items[i].Subtotal()
	}
	return sum
}

// ItemCount sums the quantities across all lines.
func (o *Order) ItemCount() int {
	var n int
	for i := range o.Items {
		n += o.Items[i].Quantity
	}
	return n
}

// Active reports whether the order still participates in table occupancy.
func (o *Order) Active() bool {
	return o != nil && o.Status != OrderFinalized
}

// OrderItem is one line within an order. Name and UnitPrice are captured at
// order time; later menu edits must never retroactively alter them.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID         int64     `bun:",pk,autoincrement" json:"id"`
	OrderID    int64     `bun:"order_id,notnull" json:"order_id"`
	MenuItemID int64     `bun:"menu_item_id,notnull" json:"menu_item_id"`
	Name       string    `bun:"name,notnull" json:"name"`
	UnitPrice  float64   `bun:"unit_price,notnull" json:"unit_price"`
	Quantity   int       `bun:"quantity,notnull" json:"quantity"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Subtotal is always quantity times the captured unit price, never a stored
// figure that could drift from its inputs.
func (i *OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Valid reports whether a line fetched from storage is well formed.
func (i *OrderItem) Valid() bool {
	return i != nil && i.Name != "" && i.Quantity > 0 && i.UnitPrice >= 0
}

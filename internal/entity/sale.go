package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Sale is the immutable settlement record created exactly once when an order
// is finalized. ItemsJSON carries the full snapshot of the settled lines so
// the record survives later order or menu mutations untouched.
type Sale struct {
	bun.BaseModel `bun:"table:sales"`

	ID          int64     `bun:",pk,autoincrement" json:"id"`
	Receipt     string    `bun:"receipt,notnull,unique" json:"receipt"`
	OrderID     int64     `bun:"order_id,notnull" json:"order_id"`
	TableNumber int       `bun:"table_number,notnull" json:"table_number"`
	Total       float64   `bun:"total,notnull" json:"total"`
	ItemCount   int       `bun:"item_count,notnull" json:"item_count"`
	ItemsJSON   []byte    `bun:"items_json,type:jsonb" json:"items_json"`
	CashierID   int64     `bun:"cashier_id,nullzero" json:"cashier_id,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
}

// DailyStats is the aggregate view of the current business day, computed by
// the database so a process that missed notifications still closes against
// ground truth.
type DailyStats struct {
	SaleCount     int     `json:"sale_count"`
	Total         float64 `json:"total"`
	ItemCount     int     `json:"item_count"`
	AverageTicket float64 `json:"average_ticket"`
}

// RegisterClosure archives one business day of sales. BusinessDate is unique,
// which turns a second close of the same day into a rejected conflict rather
// than a silent duplicate.
type RegisterClosure struct {
	bun.BaseModel `bun:"table:register_closures"`

	ID            int64     `bun:",pk,autoincrement" json:"id"`
	BusinessDate  string    `bun:"business_date,notnull,unique" json:"business_date"`
	SaleCount     int       `bun:"sale_count,notnull" json:"sale_count"`
	Total         float64   `bun:"total,notnull" json:"total"`
	ItemCount     int       `bun:"item_count,notnull" json:"item_count"`
	AverageTicket float64   `bun:"average_ticket,notnull" json:"average_ticket"`
	SalesJSON     []byte    `bun:"sales_json,type:jsonb" json:"sales_json"`
	CashierID     int64     `bun:"cashier_id,nullzero" json:"cashier_id,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
}

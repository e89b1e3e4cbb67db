package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// TableStatus is the occupancy state of a dining table.
type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableOccupied TableStatus = "occupied"
)

// Table represents a physical seating unit. The externally visible identity is
// Number; ID is only the storage key. A table is occupied exactly while it has
// a non-finalized order, and that fact is always re-derived from the orders
// table, never assumed from a cached copy.
type Table struct {
	bun.BaseModel `bun:"table:tables"`

	ID        int64       `bun:",pk,autoincrement" json:"id"`
	Number    int         `bun:"number,notnull,unique" json:"number"`
	Status    TableStatus `bun:"status,notnull,default:'free'" json:"status"`
	CreatedAt time.Time   `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time   `bun:"updated_at,nullzero" json:"updated_at"`
}

// Valid reports whether a row fetched from storage is well formed.
func (t *Table) Valid() bool {
	if t == nil || t.Number <= 0 {
		return false
	}
	return t.Status == TableFree || t.Status == TableOccupied
}

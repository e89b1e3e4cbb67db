package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// MenuItem is reference data: one sellable product. Ordering captures a
// snapshot of Name and Price into the order line, so edits here never touch
// historical orders.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items"`

	ID        int64     `bun:",pk,autoincrement" json:"id"`
	Category  string    `bun:"category,notnull" json:"category"`
	Name      string    `bun:"name,notnull" json:"name"`
	Price     float64   `bun:"price,notnull" json:"price"`
	Available bool      `bun:"available,notnull,default:true" json:"available"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

// Valid reports whether a row fetched from storage is well formed.
func (m *MenuItem) Valid() bool {
	return m != nil && m.Name != "" && m.Category != "" && m.Price > 0
}

// MenuCategory groups available items for display, in the shape role views
// consume.
type MenuCategory struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

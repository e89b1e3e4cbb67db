package dto

import "time"

// StageItemRequest asks the coordinator to stage one menu item for a table.
type StageItemRequest struct {
	TableNumber int   `json:"table_number"`
	MenuItemID  int64 `json:"menu_item_id"`
	Quantity    int   `json:"quantity"`
}

// AdjustStagedRequest changes the staged quantity of a line by a signed delta.
type AdjustStagedRequest struct {
	TableNumber int   `json:"table_number"`
	MenuItemID  int64 `json:"menu_item_id"`
	Delta       int   `json:"delta"`
}

// SendToKitchenRequest commits a table's staged lines to its order.
type SendToKitchenRequest struct {
	TableNumber int   `json:"table_number"`
	WaiterID    int64 `json:"waiter_id"`
}

// AdvanceOrderRequest moves an order one step along the kitchen workflow. The
// target state is derived server-side from the current one.
type AdvanceOrderRequest struct {
	OrderID int64 `json:"order_id"`
}

// SettleBillRequest settles a table's active order.
type SettleBillRequest struct {
	TableNumber int   `json:"table_number"`
	CashierID   int64 `json:"cashier_id"`
}

// StagedLine is one not-yet-sent line on a table's pad.
type StagedLine struct {
	MenuItemID int64   `json:"menu_item_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
	Subtotal   float64 `json:"subtotal"`
}

// StagingResponse echoes a table's staged pad after a mutation.
type StagingResponse struct {
	TableNumber int          `json:"table_number"`
	Lines       []StagedLine `json:"lines"`
	Total       float64      `json:"total"`
}

// TicketLine is one order line as the kitchen display shows it.
type TicketLine struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// KitchenTicket is one active order in the kitchen queue, oldest first.
type KitchenTicket struct {
	OrderID     int64        `json:"order_id"`
	TableNumber int          `json:"table_number"`
	Status      string       `json:"status"`
	Lines       []TicketLine `json:"lines"`
	Total       float64      `json:"total"`
	CreatedAt   time.Time    `json:"created_at"`
}

// TableView is one table as the floor plan shows it. OrderID and totals are
// zero while the table is free.
type TableView struct {
	Number    int     `json:"number"`
	Status    string  `json:"status"`
	OrderID   int64   `json:"order_id,omitempty"`
	Total     float64 `json:"total,omitempty"`
	ItemCount int     `json:"item_count,omitempty"`
}

// FloorSnapshot is the complete rebuilt projection of tables and active
// orders. Every refresh replaces the previous snapshot wholesale.
type FloorSnapshot struct {
	Tables      []TableView     `json:"tables"`
	Kitchen     []KitchenTicket `json:"kitchen"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// SaleResponse is one settlement record as exposed over transport.
type SaleResponse struct {
	ID          int64     `json:"id"`
	Receipt     string    `json:"receipt"`
	OrderID     int64     `json:"order_id"`
	TableNumber int       `json:"table_number"`
	Total       float64   `json:"total"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyStatsResponse summarizes the current business day.
type DailyStatsResponse struct {
	SaleCount     int     `json:"sale_count"`
	Total         float64 `json:"total"`
	ItemCount     int     `json:"item_count"`
	AverageTicket float64 `json:"average_ticket"`
}

// CloseRegisterRequest archives the business day.
type CloseRegisterRequest struct {
	CashierID int64 `json:"cashier_id"`
}

// ClosureResponse is one archived business day.
type ClosureResponse struct {
	ID            int64     `json:"id"`
	BusinessDate  string    `json:"business_date"`
	SaleCount     int       `json:"sale_count"`
	Total         float64   `json:"total"`
	ItemCount     int       `json:"item_count"`
	AverageTicket float64   `json:"average_ticket"`
	CreatedAt     time.Time `json:"created_at"`
}

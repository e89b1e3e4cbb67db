package floor

import (
	"time"

	"github.com/restoapp/pos/internal/dto"
	"github.com/restoapp/pos/internal/entity"
)

// buildSnapshot rebuilds the floor projection from freshly loaded rows.
// Occupancy is re-derived here: a table shows occupied exactly when it has a
// non-finalized order, whatever its stored status column says.
func buildSnapshot(tables []entity.Table, active []entity.Order, now time.Time) dto.FloorSnapshot {
	byTable := make(map[int64]*entity.Order, len(active))
	for i := range active {
		ord := &active[i]
		// Keep the oldest active order if a duplicate slipped in; the
		// others surface through the kitchen queue until settled.
		if _, ok := byTable[ord.TableID]; !ok {
			byTable[ord.TableID] = ord
		}
	}

	numberByID := make(map[int64]int, len(tables))
	views := make([]dto.TableView, 0, len(tables))
	for i := range tables {
		tbl := &tables[i]
		numberByID[tbl.ID] = tbl.Number
		view := dto.TableView{
			Number: tbl.Number,
			Status: string(entity.TableFree),
		}
		if ord, ok := byTable[tbl.ID]; ok {
			view.Status = string(entity.TableOccupied)
			view.OrderID = ord.ID
			view.Total = ord.ItemsTotal()
			view.ItemCount = ord.ItemCount()
		}
		views = append(views, view)
	}

	tickets := make([]dto.KitchenTicket, 0, len(active))
	for i := range active {
		ord := &active[i]
		ticket := dto.KitchenTicket{
			OrderID:     ord.ID,
			TableNumber: numberByID[ord.TableID],
			Status:      string(ord.Status),
			Total:       ord.ItemsTotal(),
			CreatedAt:   ord.CreatedAt,
		}
		for j := range ord.Items {
			item := &ord.Items[j]
			ticket.Lines = append(ticket.Lines, dto.TicketLine{
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  item.Subtotal(),
			})
		}
		tickets = append(tickets, ticket)
	}

	return dto.FloorSnapshot{
		Tables:      views,
		Kitchen:     tickets,
		GeneratedAt: now,
	}
}

// viewFor trims a snapshot to what one role consumes. The role set is closed;
// adding a role means extending this switch, not sprinkling string checks.
func viewFor(role entity.Role, snap dto.FloorSnapshot) dto.FloorSnapshot {
	switch role {
	case entity.RoleWaiter:
		return dto.FloorSnapshot{Tables: snap.Tables, GeneratedAt: snap.GeneratedAt}
	case entity.RoleKitchen:
		return dto.FloorSnapshot{Kitchen: snap.Kitchen, GeneratedAt: snap.GeneratedAt}
	default:
		// Cashiers see the whole floor.
		return snap
	}
}

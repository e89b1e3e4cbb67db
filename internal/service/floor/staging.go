package floor

import "github.com/restoapp/pos/internal/dto"

// pad is the in-memory staging area of one table: lines picked by the waiter
// that have not been sent to the kitchen yet. Pads live only in this process
// and are lost on restart, which is acceptable because nothing downstream
// depends on them until a send commits them to storage.
type pad struct {
	lines []dto.StagedLine
}

func (p *pad) add(menuItemID int64, name string, unitPrice float64, qty int) {
	for i := range p.lines {
		if p.lines[i].MenuItemID == menuItemID {
			p.lines[i].Quantity += qty
			p.lines[i].Subtotal = float64(p.lines[i].Quantity) * p.lines[i].UnitPrice
			return
		}
	}
	p.lines = append(p.lines, dto.StagedLine{
		MenuItemID: menuItemID,
		Name:       name,
		UnitPrice:  unitPrice,
		Quantity:   qty,
		Subtotal:   float64(qty) * unitPrice,
	})
}

// adjust applies a signed delta to a line. Dropping to zero or below removes
// the line. It reports whether the line existed.
func (p *pad) adjust(menuItemID int64, delta int) bool {
	for i := range p.lines {
		if p.lines[i].MenuItemID != menuItemID {
			continue
		}
		p.lines[i].Quantity += delta
		if p.lines[i].Quantity <= 0 {
			p.lines = append(p.lines[:i], p.lines[i+1:]...)
		} else {
			p.lines[i].Subtotal = float64(p.lines[i].Quantity) * p.lines[i].UnitPrice
		}
		return true
	}
	return false
}

func (p *pad) total() float64 {
	var sum float64
	for i := range p.lines {
		sum += p.lines[i].Subtotal
	}
	return sum
}

func (p *pad) snapshot(tableNumber int) dto.StagingResponse {
	lines := make([]dto.StagedLine, len(p.lines))
	copy(lines, p.lines)
	return dto.StagingResponse{
		TableNumber: tableNumber,
		Lines:       lines,
		Total:       p.total(),
	}
}

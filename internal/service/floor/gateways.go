package floor

import (
	"context"

	"github.com/restoapp/pos/internal/entity"
)

// TableGateway is the slice of table persistence the coordinator consumes.
type TableGateway interface {
	List(ctx context.Context) ([]entity.Table, error)
	GetByNumber(ctx context.Context, number int) (*entity.Table, error)
	SetStatus(ctx context.Context, id int64, status entity.TableStatus) error
}

// OrderGateway is the slice of order persistence the coordinator consumes.
// AdvanceStatus and Finalize are conditional writes; a false return means the
// row was no longer in the expected state and the caller lost the race.
type OrderGateway interface {
	ActiveByTable(ctx context.Context, tableID int64) (*entity.Order, error)
	ListActive(ctx context.Context) ([]entity.Order, error)
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	Create(ctx context.Context, ord *entity.Order) error
	AddItem(ctx context.Context, item *entity.OrderItem) error
	SetTotal(ctx context.Context, id int64, total float64) error
	AdvanceStatus(ctx context.Context, id int64, from, to entity.OrderStatus) (bool, error)
	Finalize(ctx context.Context, id int64) (bool, error)
}

// MenuGateway resolves the price snapshot at staging time.
type MenuGateway interface {
	GetByID(ctx context.Context, id int64) (*entity.MenuItem, error)
}

// SaleGateway records settlements.
type SaleGateway interface {
	Create(ctx context.Context, s *entity.Sale) error
}

package floor

import (
	"context"
	"sort"
	"sync"
	"testing"

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

type fakeTables struct {
	mu     sync.Mutex
	byID   map[int64]*entity.Table
	nextID int64
}

func newFakeTables(numbers ...int) *fakeTables {
	f := &fakeTables{byID: map[int64]*entity.Table{}}
	for _, n := range numbers {
		f.nextID++
		f.byID[f.nextID] = &entity.Table{ID: f.nextID, Number: n, Status: entity.TableFree}
	}
	return f
}

func (f *fakeTables) List(context.Context) ([]entity.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Table, 0, len(f.byID))
	for _, t := range f.byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeTables) GetByNumber(_ context.Context, number int) (*entity.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byID {
		if t.Number == number {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tablerepo.ErrNotFound
}

func (f *fakeTables) SetStatus(_ context.Context, id int64, status entity.TableStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return tablerepo.ErrNotFound
	}
	t.Status = status
	return nil
}

type fakeOrders struct {
	mu     sync.Mutex
	byID   map[int64]*entity.Order
	nextID int64

	// When set, conditional writes report a lost race without mutating.
	forceAdvanceLost  bool
	forceFinalizeLost bool
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byID: map[int64]*entity.Order{}}
}

// ActiveByTable returns the oldest non-finalized order, matching the
// repository's ordering.
func (f *fakeOrders) ActiveByTable(_ context.Context, tableID int64) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest *entity.Order
	for _, o := range f.byID {
		if o.TableID != tableID || o.Status == entity.OrderFinalized {
			continue
		}
		if oldest == nil || o.ID < oldest.ID {
			oldest = o
		}
	}
	if oldest == nil {
		return nil, orderrepo.ErrNotFound
	}
	cp := *oldest
	cp.Items = append([]entity.OrderItem(nil), oldest.Items...)
	return &cp, nil
}

func (f *fakeOrders) ListActive(context.Context) ([]entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Order
	for _, o := range f.byID {
		if o.Status == entity.OrderFinalized {
			continue
		}
		cp := *o
		cp.Items = append([]entity.OrderItem(nil), o.Items...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOrders) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok {
		return nil, orderrepo.ErrNotFound
	}
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (f *fakeOrders) Create(_ context.Context, ord *entity.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ord.ID = f.nextID
	cp := *ord
	f.byID[ord.ID] = &cp
	return nil
}

func (f *fakeOrders) AddItem(_ context.Context, item *entity.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[item.OrderID]
	if !ok {
		return orderrepo.ErrNotFound
	}
	o.Items = append(o.Items, *item)
	return nil
}

func (f *fakeOrders) SetTotal(_ context.Context, id int64, total float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.byID[id]; ok {
		o.Total = total
	}
	return nil
}

func (f *fakeOrders) AdvanceStatus(_ context.Context, id int64, from, to entity.OrderStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forceAdvanceLost {
		return false, nil
	}
	o, ok := f.byID[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (f *fakeOrders) Finalize(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forceFinalizeLost {
		return false, nil
	}
	o, ok := f.byID[id]
	if !ok || o.Status == entity.OrderFinalized {
		return false, nil
	}
	o.Status = entity.OrderFinalized
	return true, nil
}

type fakeMenu struct {
	mu   sync.Mutex
	byID map[int64]*entity.MenuItem
}

func newFakeMenu(items ...entity.MenuItem) *fakeMenu {
	f := &fakeMenu{byID: map[int64]*entity.MenuItem{}}
	for i := range items {
		cp := items[i]
		f.byID[cp.ID] = &cp
	}
	return f
}

func (f *fakeMenu) GetByID(_ context.Context, id int64) (*entity.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.byID[id]
	if !ok {
		return nil, menurepo.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (f *fakeMenu) setPrice(id int64, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].Price = price
}

type fakeSales struct {
	mu      sync.Mutex
	created []entity.Sale
	fail    error
}

func (f *fakeSales) Create(_ context.Context, s *entity.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	s.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *s)
	return nil
}

type fakeRelay struct {
	mu        sync.Mutex
	published map[string]int
}

func (f *fakeRelay) Publish(_ context.Context, topic string, _, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.published == nil {
		f.published = map[string]int{}
	}
	f.published[topic]++
	return nil
}

func (f *fakeRelay) Consume(ctx context.Context, _ []string, _ relay.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeRelay) count(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.published[topic]
}

type testEnv struct {
	coord  *Coordinator
	tables *fakeTables
	orders *fakeOrders
	menu   *fakeMenu
	sales  *fakeSales
	relay  *fakeRelay
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		tables: newFakeTables(1, 2, 3),
		orders: newFakeOrders(),
		menu: newFakeMenu(
			entity.MenuItem{ID: 10, Category: "Mains", Name: "Tacos", Price: 11.50, Available: true},
			entity.MenuItem{ID: 11, Category: "Drinks", Name: "Horchata", Price: 3.50, Available: true},
			entity.MenuItem{ID: 12, Category: "Mains", Name: "Off Menu", Price: 9.00, Available: false},
		),
		sales: &fakeSales{},
		relay: &fakeRelay{},
	}
	cfg := config.Config{}
	cfg.Relay.Enabled = true
	cfg.Relay.Topics = config.Topics{Tables: "pos.tables", Orders: "pos.orders", Sales: "pos.sales"}
	env.coord = NewCoordinator(env.tables, env.orders, env.menu, env.sales, env.relay, cfg, zap.NewNop())
	return env
}

func stageAndSend(t *testing.T, env *testEnv, table int) *entity.Order {
	t.Helper()
	ctx := context.Background()
	if _, err := env.coord.StageItem(ctx, dto.StageItemRequest{TableNumber: table, MenuItemID: 10, Quantity: 2}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	ord, err := env.coord.SendToKitchen(ctx, dto.SendToKitchenRequest{TableNumber: table, WaiterID: 1})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	return ord
}

func TestStageItemCapturesPriceSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pad, err := env.coord.StageItem(ctx, dto.StageItemRequest{TableNumber: 1, MenuItemID: 10, Quantity: 2})
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if len(pad.Lines) != 1 || pad.Lines[0].UnitPrice != 11.50 || pad.Total != 23.00 {
		t.Fatalf("unexpected pad: %+v", pad)
	}

	// A price change after staging must not alter what was staged or sent.
	env.menu.setPrice(10, 99.00)

	ord, err := env.coord.SendToKitchen(ctx, dto.SendToKitchenRequest{TableNumber: 1})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if ord.Items[0].UnitPrice != 11.50 {
		t.Fatalf("price snapshot broken: got %v", ord.Items[0].UnitPrice)
	}
	if ord.ItemsTotal() != 23.00 {
		t.Fatalf("total = %v, want 23.00", ord.ItemsTotal())
	}
}

func TestStageItemRejectsUnavailableAndUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.coord.StageItem(ctx, dto.StageItemRequest{TableNumber: 1, MenuItemID: 12}); !errorbank.IsKind(err, errorbank.KindUnprocessableEntity) {
		t.Fatalf("unavailable item: got %v", err)
	}
	if _, err := env.coord.StageItem(ctx, dto.StageItemRequest{TableNumber: 1, MenuItemID: 999}); !errorbank.IsKind(err, errorbank.KindNotFound) {
		t.Fatalf("unknown item: got %v", err)
	}
	if _, err := env.coord.StageItem(ctx, dto.StageItemRequest{TableNumber: 99, MenuItemID: 10}); !errorbank.IsKind(err, errorbank.KindNotFound) {
		t.Fatalf("unknown table: got %v", err)
	}
	if _, err := env.coord.StageItem(ctx, dto.StageItemRequest{TableNumber: 1, MenuItemID: 10, Quantity: -1}); !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("negative quantity: got %v", err)
	}
}

func TestAdjustStagedQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.coord.StageItem(ctx, dto.StageItemRequest{TableNumber: 1, MenuItemID: 10, Quantity: 3}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	pad, err := env.coord.AdjustStagedQuantity(ctx, dto.AdjustStagedRequest{TableNumber: 1, MenuItemID: 10, Delta: -1})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if pad.Lines[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", pad.Lines[0].Quantity)
	}

	// Dropping to zero removes the line entirely.
	pad, err = env.coord.AdjustStagedQuantity(ctx, dto.AdjustStagedRequest{TableNumber: 1, MenuItemID: 10, Delta: -2})
	if err != nil {
		t.Fatalf("adjust to zero: %v", err)
	}
	if len(pad.Lines) != 0 {
		t.Fatalf("line not removed: %+v", pad.Lines)
	}

	if _, err := env.coord.AdjustStagedQuantity(ctx, dto.AdjustStagedRequest{TableNumber: 1, MenuItemID: 10, Delta: 1}); !errorbank.IsKind(err, errorbank.KindNotFound) {
		t.Fatalf("missing line: got %v", err)
	}
	if _, err := env.coord.AdjustStagedQuantity(ctx, dto.AdjustStagedRequest{TableNumber: 1, MenuItemID: 10, Delta: 0}); !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("zero delta: got %v", err)
	}
}

func TestSendToKitchenCreatesOrderAndOccupiesTable(t *testing.T) {
	env := newTestEnv(t)
	ord := stageAndSend(t, env, 1)

	if ord.Status != entity.OrderPending {
		t.Fatalf("status = %s, want pending", ord.Status)
	}
	if len(ord.Items) != 1 || ord.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", ord.Items)
	}

	tbl, _ := env.tables.GetByNumber(context.Background(), 1)
	if tbl.Status != entity.TableOccupied {
		t.Fatalf("table status = %s, want occupied", tbl.Status)
	}

	// The pad is cleared once the send lands.
	if pad := env.coord.Staged(1); len(pad.Lines) != 0 {
		t.Fatalf("pad not cleared: %+v", pad.Lines)
	}

	if env.relay.count("pos.orders") == 0 || env.relay.count("pos.tables") == 0 {
		t.Fatalf("expected change events on orders and tables topics")
	}
}

func TestSendToKitchenWithEmptyPad(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.coord.SendToKitchen(context.Background(), dto.SendToKitchenRequest{TableNumber: 1})
	if !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("got %v, want bad_request", err)
	}
}

func TestSecondSendAppendsToActiveOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := stageAndSend(t, env, 1)

	// The kitchen starts cooking between the two sends.
	if _, err := env.coord.AdvanceKitchenState(ctx, first.ID); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if _, err := env.coord.StageItem(ctx, dto.StageItemRequest{TableNumber: 1, MenuItemID: 11, Quantity: 1}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	second, err := env.coord.SendToKitchen(ctx, dto.SendToKitchenRequest{TableNumber: 1})
	if err != nil {
		t.Fatalf("second send: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("second send created order %d, want append to %d", second.ID, first.ID)
	}
	if len(second.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(second.Items))
	}
	if second.Status != entity.OrderPreparing {
		t.Fatalf("append must not reset status: got %s", second.Status)
	}
	if second.ItemsTotal() != 23.00+3.50 {
		t.Fatalf("total = %v, want 26.50", second.ItemsTotal())
	}
}

func TestAdvanceKitchenStateWalksForward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ord := stageAndSend(t, env, 1)

	ord, err := env.coord.AdvanceKitchenState(ctx, ord.ID)
	if err != nil || ord.Status != entity.OrderPreparing {
		t.Fatalf("first advance: %v, status %s", err, ord.Status)
	}
	ord, err = env.coord.AdvanceKitchenState(ctx, ord.ID)
	if err != nil || ord.Status != entity.OrderReady {
		t.Fatalf("second advance: %v, status %s", err, ord.Status)
	}

	// A duplicate click on a ready order is tolerated as a no-op.
	ord, err = env.coord.AdvanceKitchenState(ctx, ord.ID)
	if err != nil || ord.Status != entity.OrderReady {
		t.Fatalf("duplicate advance: %v, status %s", err, ord.Status)
	}
}

func TestAdvanceConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ord := stageAndSend(t, env, 1)

	env.orders.forceAdvanceLost = true
	if _, err := env.coord.AdvanceKitchenState(ctx, ord.ID); !errorbank.IsKind(err, errorbank.KindConflict) {
		t.Fatalf("lost race: got %v, want conflict", err)
	}
	env.orders.forceAdvanceLost = false

	if _, err := env.coord.SettleBill(ctx, dto.SettleBillRequest{TableNumber: 1}); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if _, err := env.coord.AdvanceKitchenState(ctx, ord.ID); !errorbank.IsKind(err, errorbank.KindConflict) {
		t.Fatalf("advance finalized: got %v, want conflict", err)
	}

	if _, err := env.coord.AdvanceKitchenState(ctx, 999); !errorbank.IsKind(err, errorbank.KindNotFound) {
		t.Fatalf("unknown order: got %v", err)
	}
}

func TestSettleBillCreatesSaleAndFreesTable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ord := stageAndSend(t, env, 1)

	sale, err := env.coord.SettleBill(ctx, dto.SettleBillRequest{TableNumber: 1, CashierID: 7})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if sale.Receipt == "" {
		t.Fatal("sale has no receipt")
	}
	if sale.OrderID != ord.ID || sale.TableNumber != 1 {
		t.Fatalf("unexpected sale: %+v", sale)
	}
	if sale.Total != 23.00 || sale.ItemCount != 2 {
		t.Fatalf("sale totals: %+v", sale)
	}
	if len(sale.ItemsJSON) == 0 {
		t.Fatal("sale is missing the item snapshot")
	}

	tbl, _ := env.tables.GetByNumber(ctx, 1)
	if tbl.Status != entity.TableFree {
		t.Fatalf("table status = %s, want free", tbl.Status)
	}

	got, _ := env.orders.GetByID(ctx, ord.ID)
	if got.Status != entity.OrderFinalized {
		t.Fatalf("order status = %s, want finalized", got.Status)
	}
	if env.relay.count("pos.sales") == 0 {
		t.Fatal("expected a change event on the sales topic")
	}

	// The table has no active order anymore; a second settle finds nothing.
	if _, err := env.coord.SettleBill(ctx, dto.SettleBillRequest{TableNumber: 1}); !errorbank.IsKind(err, errorbank.KindNotFound) {
		t.Fatalf("second settle: got %v, want not_found", err)
	}
}

func TestSettleBillRejectsEmptyOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A send that creates the order but fails to attach items leaves an
	// empty persisted order behind. Settling it must change nothing.
	tbl, _ := env.tables.GetByNumber(ctx, 1)
	empty := &entity.Order{TableID: tbl.ID, Status: entity.OrderPending}
	if err := env.orders.Create(ctx, empty); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.coord.SettleBill(ctx, dto.SettleBillRequest{TableNumber: 1}); !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("got %v, want bad_request", err)
	}
	if len(env.sales.created) != 0 {
		t.Fatalf("empty order produced a sale: %+v", env.sales.created)
	}
	got, _ := env.orders.GetByID(ctx, empty.ID)
	if got.Status != entity.OrderPending {
		t.Fatalf("order status = %s, want pending untouched", got.Status)
	}

	// Once a line lands, the same table settles normally.
	if _, err := env.coord.StageItem(ctx, dto.StageItemRequest{TableNumber: 1, MenuItemID: 10, Quantity: 1}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := env.coord.SendToKitchen(ctx, dto.SendToKitchenRequest{TableNumber: 1}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := env.coord.SettleBill(ctx, dto.SettleBillRequest{TableNumber: 1}); err != nil {
		t.Fatalf("settle after send: %v", err)
	}
}

func TestSettleBillConflictOnLostRace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stageAndSend(t, env, 1)

	env.orders.forceFinalizeLost = true
	if _, err := env.coord.SettleBill(ctx, dto.SettleBillRequest{TableNumber: 1}); !errorbank.IsKind(err, errorbank.KindConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
	if len(env.sales.created) != 0 {
		t.Fatalf("lost race must not record a sale: %+v", env.sales.created)
	}
}

func TestResyncDerivesOccupancy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stageAndSend(t, env, 2)

	// Corrupt the stored statuses; the projection must re-derive from orders.
	for _, tbl := range env.tables.byID {
		if tbl.Number == 2 {
			tbl.Status = entity.TableFree
		} else {
			tbl.Status = entity.TableOccupied
		}
	}

	snap, err := env.coord.Resync(ctx)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	for _, view := range snap.Tables {
		want := string(entity.TableFree)
		if view.Number == 2 {
			want = string(entity.TableOccupied)
		}
		if view.Status != want {
			t.Fatalf("table %d status = %s, want %s", view.Number, view.Status, want)
		}
	}
	if len(snap.Kitchen) != 1 || snap.Kitchen[0].TableNumber != 2 {
		t.Fatalf("unexpected kitchen queue: %+v", snap.Kitchen)
	}
}

func TestDuplicateActiveOrdersResolveToOldest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Two active orders for one table should never exist, but when they do
	// the floor view and the send path must agree on which one is current.
	tbl, _ := env.tables.GetByNumber(ctx, 1)
	first := &entity.Order{TableID: tbl.ID, Status: entity.OrderPending,
		Items: []entity.OrderItem{{Name: "Tacos", UnitPrice: 11.50, Quantity: 1}}}
	if err := env.orders.Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second := &entity.Order{TableID: tbl.ID, Status: entity.OrderPending,
		Items: []entity.OrderItem{{Name: "Horchata", UnitPrice: 3.50, Quantity: 1}}}
	if err := env.orders.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	snap, err := env.coord.Resync(ctx)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	var shown int64
	for _, view := range snap.Tables {
		if view.Number == 1 {
			shown = view.OrderID
		}
	}
	if shown != first.ID {
		t.Fatalf("projection shows order %d, want oldest %d", shown, first.ID)
	}

	if _, err := env.coord.StageItem(ctx, dto.StageItemRequest{TableNumber: 1, MenuItemID: 11, Quantity: 1}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	sent, err := env.coord.SendToKitchen(ctx, dto.SendToKitchenRequest{TableNumber: 1})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.ID != shown {
		t.Fatalf("send landed on order %d, projection shows %d", sent.ID, shown)
	}
}

func TestSubscribeRoleViews(t *testing.T) {
	env := newTestEnv(t)

	waiterCh, cancelWaiter, err := env.coord.Subscribe(entity.RoleWaiter)
	if err != nil {
		t.Fatalf("subscribe waiter: %v", err)
	}
	defer cancelWaiter()
	kitchenCh, cancelKitchen, err := env.coord.Subscribe(entity.RoleKitchen)
	if err != nil {
		t.Fatalf("subscribe kitchen: %v", err)
	}
	defer cancelKitchen()

	stageAndSend(t, env, 1)

	waiterView := <-waiterCh
	if len(waiterView.Tables) == 0 || waiterView.Kitchen != nil {
		t.Fatalf("waiter view should carry tables only: %+v", waiterView)
	}
	kitchenView := <-kitchenCh
	if len(kitchenView.Kitchen) != 1 || kitchenView.Tables != nil {
		t.Fatalf("kitchen view should carry the queue only: %+v", kitchenView)
	}

	if _, _, err := env.coord.Subscribe(entity.Role("manager")); !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("unknown role: got %v", err)
	}
}

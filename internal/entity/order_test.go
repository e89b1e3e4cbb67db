package entity

import "testing"

func TestOrderStatusNext(t *testing.T) {
	cases := []struct {
		from OrderStatus
		want OrderStatus
		ok   bool
	}{
		{OrderPending, OrderPreparing, true},
		{OrderPreparing, OrderReady, true},
		{OrderReady, OrderReady, false},
		{OrderFinalized, OrderFinalized, false},
		{OrderStatus("bogus"), OrderStatus("bogus"), false},
	}
	for _, tc := range cases {
		next, ok := tc.from.Next()
		if next != tc.want || ok != tc.ok {
			t.Errorf("Next(%s) = %s,%v; want %s,%v", tc.from, next, ok, tc.want, tc.ok)
		}
	}
}

func TestOrderStatusRankIsStrictlyForward(t *testing.T) {
	order := []OrderStatus{OrderPending, OrderPreparing, OrderReady, OrderFinalized}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Fatalf("rank of %s not above %s", order[i], order[i-1])
		}
	}
	if OrderStatus("bogus").Rank() != -1 {
		t.Fatal("unknown status must rank below pending")
	}
}

func TestOrderTotalsDeriveFromItems(t *testing.T) {
	ord := Order{
		Total: 999, // stored figure is never trusted
		Items: []OrderItem{
			{Name: "Tacos", UnitPrice: 11.50, Quantity: 2},
			{Name: "Horchata", UnitPrice: 3.50, Quantity: 1},
		},
	}
	if got := ord.ItemsTotal(); got != 26.50 {
		t.Fatalf("ItemsTotal = %v, want 26.50", got)
	}
	if got := ord.ItemCount(); got != 3 {
		t.Fatalf("ItemCount = %d, want 3", got)
	}
}

func TestOrderActive(t *testing.T) {
	if (&Order{Status: OrderFinalized}).Active() {
		t.Fatal("finalized order reported active")
	}
	if !(&Order{Status: OrderReady}).Active() {
		t.Fatal("ready order reported inactive")
	}
	var nilOrder *Order
	if nilOrder.Active() {
		t.Fatal("nil order reported active")
	}
}

func TestOrderItemValid(t *testing.T) {
	if !(&OrderItem{Name: "Tacos", UnitPrice: 11.50, Quantity: 1}).Valid() {
		t.Fatal("well-formed line rejected")
	}
	bad := []OrderItem{
		{Name: "", UnitPrice: 1, Quantity: 1},
		{Name: "x", UnitPrice: 1, Quantity: 0},
		{Name: "x", UnitPrice: -1, Quantity: 1},
	}
	for i := range bad {
		if bad[i].Valid() {
			t.Errorf("malformed line %d accepted: %+v", i, bad[i])
		}
	}
}

func TestRoleKnown(t *testing.T) {
	for _, r := range []Role{RoleWaiter, RoleKitchen, RoleCashier} {
		if !r.Known() {
			t.Errorf("role %s not recognized", r)
		}
	}
	if Role("manager").Known() {
		t.Fatal("unknown role accepted")
	}
}

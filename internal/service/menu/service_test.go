package menu

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/cache"
	"github.com/restoapp/pos/internal/entity"
	repo "github.com/restoapp/pos/internal/repository/menu"
	"github.com/restoapp/pos/pkg/errorbank"
)

type fakeGateway struct {
	items     map[int64]*entity.MenuItem
	nextID    int64
	listCalls int
}

func newFakeGateway(items ...entity.MenuItem) *fakeGateway {
	f := &fakeGateway{items: map[int64]*entity.MenuItem{}}
	for i := range items {
		f.nextID++
		cp := items[i]
		cp.ID = f.nextID
		f.items[cp.ID] = &cp
	}
	return f
}

func (f *fakeGateway) ListAvailable(context.Context) ([]entity.MenuItem, error) {
	f.listCalls++
	var out []entity.MenuItem
	for id := int64(1); id <= f.nextID; id++ {
		if item, ok := f.items[id]; ok && item.Available {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeGateway) GetByID(_ context.Context, id int64) (*entity.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (f *fakeGateway) Create(_ context.Context, item *entity.MenuItem) error {
	f.nextID++
	item.ID = f.nextID
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeGateway) Update(_ context.Context, item *entity.MenuItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeGateway) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func newTestService() (*Service, *fakeGateway, *memStore) {
	gw := newFakeGateway(
		entity.MenuItem{Category: "Drinks", Name: "Horchata", Price: 3.50, Available: true},
		entity.MenuItem{Category: "Mains", Name: "Tacos", Price: 11.50, Available: true},
		entity.MenuItem{Category: "Mains", Name: "Hidden", Price: 9.00, Available: false},
	)
	store := newMemStore()
	return NewService(gw, store, time.Minute, zap.NewNop()), gw, store
}

func TestCategoriesGroupsAndCaches(t *testing.T) {
	svc, gw, store := newTestService()
	ctx := context.Background()

	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("categories = %d, want 2", len(cats))
	}
	if cats[0].Name != "Drinks" || cats[1].Name != "Mains" {
		t.Fatalf("unexpected grouping: %+v", cats)
	}
	if len(cats[1].Items) != 1 {
		t.Fatalf("unavailable item leaked into the menu: %+v", cats[1].Items)
	}
	if _, ok := store.data[menuCacheKey]; !ok {
		t.Fatal("snapshot not cached")
	}

	// Second read must come from the cache.
	if _, err := svc.Categories(ctx); err != nil {
		t.Fatalf("cached categories: %v", err)
	}
	if gw.listCalls != 1 {
		t.Fatalf("list calls = %d, want 1", gw.listCalls)
	}
}

func TestWritesInvalidateSnapshot(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()

	if _, err := svc.Categories(ctx); err != nil {
		t.Fatalf("categories: %v", err)
	}

	item := &entity.MenuItem{Category: "Desserts", Name: "Flan", Price: 5.00, Available: true}
	if err := svc.Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := store.data[menuCacheKey]; ok {
		t.Fatal("create did not invalidate the snapshot")
	}

	if _, err := svc.Categories(ctx); err != nil {
		t.Fatalf("categories: %v", err)
	}
	item.Price = 6.00
	if err := svc.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := store.data[menuCacheKey]; ok {
		t.Fatal("update did not invalidate the snapshot")
	}

	if _, err := svc.Categories(ctx); err != nil {
		t.Fatalf("categories: %v", err)
	}
	if err := svc.Delete(ctx, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.data[menuCacheKey]; ok {
		t.Fatal("delete did not invalidate the snapshot")
	}
}

func TestValidationAndNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.Create(ctx, &entity.MenuItem{Name: "No Category", Price: 1}); !errorbank.IsKind(err, errorbank.KindBadRequest) {
		t.Fatalf("create invalid: got %v", err)
	}
	if err := svc.Update(ctx, &entity.MenuItem{ID: 99, Category: "X", Name: "Y", Price: 1}); !errorbank.IsKind(err, errorbank.KindNotFound) {
		t.Fatalf("update missing: got %v", err)
	}
	if err := svc.Delete(ctx, 99); !errorbank.IsKind(err, errorbank.KindNotFound) {
		t.Fatalf("delete missing: got %v", err)
	}
	if _, err := svc.Get(ctx, 99); !errorbank.IsKind(err, errorbank.KindNotFound) {
		t.Fatalf("get missing: got %v", err)
	}
}

func TestCorruptSnapshotFallsBack(t *testing.T) {
	svc, gw, store := newTestService()
	ctx := context.Background()

	store.data[menuCacheKey] = []byte("{not json")
	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 || gw.listCalls != 1 {
		t.Fatalf("corrupt snapshot not bypassed: cats=%d calls=%d", len(cats), gw.listCalls)
	}
}

func TestGroupKeepsRepositoryOrder(t *testing.T) {
	items := []entity.MenuItem{
		{ID: 1, Category: "A", Name: "a1"},
		{ID: 2, Category: "B", Name: "b1"},
		{ID: 3, Category: "A", Name: "a2"},
	}
	cats := group(items)
	if len(cats) != 2 || cats[0].Name != "A" || len(cats[0].Items) != 2 {
		t.Fatalf("unexpected grouping: %+v", cats)
	}
}

package menu

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/cache"
	"github.com/restoapp/pos/internal/entity"
	repo "github.com/restoapp/pos/internal/repository/menu"
	"github.com/restoapp/pos/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/restoapp/pos/service/menu")

const menuCacheKey = "menu:categories"

// Gateway is the slice of menu persistence the service consumes.
type Gateway interface {
	ListAvailable(ctx context.Context) ([]entity.MenuItem, error)
	GetByID(ctx context.Context, id int64) (*entity.MenuItem, error)
	Create(ctx context.Context, item *entity.MenuItem) error
	Update(ctx context.Context, item *entity.MenuItem) error
	Delete(ctx context.Context, id int64) error
}

// Service serves the grouped menu and its administration. Reads go through a
// cached snapshot; every write invalidates it, so the next read regroups from
// storage.
type Service struct {
	repo     Gateway
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewService wires a menu service.
func NewService(gw Gateway, store cache.Store, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		repo:     gw,
		cache:    store,
		cacheTTL: ttl,
		logger:   logger,
	}
}

// Categories returns available items grouped by category, in display order.
func (s *Service) Categories(ctx context.Context) ([]entity.MenuCategory, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.Categories")
	defer span.End()

	if cached, err := s.cache.Get(ctx, menuCacheKey); err == nil {
		var cats []entity.MenuCategory
		if err := json.Unmarshal(cached, &cats); err == nil {
			return cats, nil
		}
		// A corrupt snapshot falls through to a storage read.
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("menu cache read failed", zap.Error(err))
	}

	items, err := s.repo.ListAvailable(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, errorbank.Internal("failed to load menu", errorbank.WithCause(err))
	}

	cats := group(items)
	if payload, err := json.Marshal(cats); err == nil {
		if err := s.cache.Set(ctx, menuCacheKey, payload, s.cacheTTL); err != nil {
			s.logger.Warn("menu cache write failed", zap.Error(err))
		}
	}
	return cats, nil
}

// Get fetches one item regardless of availability.
func (s *Service) Get(ctx context.Context, id int64) (*entity.MenuItem, error) {
	ctx, span := serviceTracer.Start(ctx, "MenuService.Get", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("menu item not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "get failed")
		return nil, errorbank.Internal("failed to load menu item", errorbank.WithCause(err))
	}
	return item, nil
}

// Create adds a sellable product and invalidates the grouped snapshot.
func (s *Service) Create(ctx context.Context, item *entity.MenuItem) error {
	if item == nil || !item.Valid() {
		return errorbank.BadRequest("menu item requires category, name, and a positive price")
	}
	ctx, span := serviceTracer.Start(ctx, "MenuService.Create", trace.WithAttributes(attribute.String("menu_item.name", item.Name)))
	defer span.End()

	if err := s.repo.Create(ctx, item); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return errorbank.Internal("failed to create menu item", errorbank.WithCause(err))
	}
	s.invalidate(ctx)
	return nil
}

// Update rewrites an item. Order lines keep the price snapshot they captured
// when staged; this only affects future staging.
func (s *Service) Update(ctx context.Context, item *entity.MenuItem) error {
	if item == nil || item.ID <= 0 || !item.Valid() {
		return errorbank.BadRequest("menu item requires id, category, name, and a positive price")
	}
	ctx, span := serviceTracer.Start(ctx, "MenuService.Update", trace.WithAttributes(attribute.Int64("menu_item.id", item.ID)))
	defer span.End()

	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("menu item not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return errorbank.Internal("failed to update menu item", errorbank.WithCause(err))
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes an item from the menu. Historical order lines are untouched.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "MenuService.Delete", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("menu item not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return errorbank.Internal("failed to delete menu item", errorbank.WithCause(err))
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, menuCacheKey); err != nil {
		s.logger.Warn("menu cache invalidation failed", zap.Error(err))
	}
}

// group preserves the category order the repository returns.
func group(items []entity.MenuItem) []entity.MenuCategory {
	var cats []entity.MenuCategory
	index := make(map[string]int)
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(cats)
			index[item.Category] = i
			cats = append(cats, entity.MenuCategory{Name: item.Category})
		}
		cats[i].Items = append(cats[i].Items, item)
	}
	return cats
}

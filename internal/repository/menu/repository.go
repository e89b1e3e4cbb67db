package menu

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/restoapp/pos/internal/database"
	"github.com/restoapp/pos/internal/entity"
)

var repoTracer = otel.Tracer("github.com/restoapp/pos/repository/menu")

// ErrNotFound is returned when a menu item is missing.
var ErrNotFound = errors.New("menu item not found")

// ErrMalformed is returned when a fetched row fails boundary validation.
var ErrMalformed = errors.New("malformed menu item row")

// Repository encapsulates read/write access for menu reference data.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// ListAvailable returns sellable items ordered by category then name.
func (r *Repository) ListAvailable(ctx context.Context) ([]entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.ListAvailable")
	defer span.End()

	var items []entity.MenuItem
	err := r.reader.NewSelect().Model(&items).
		Where("available = ?", true).
		Order("category ASC", "name ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	for i := range items {
		if !items[i].Valid() {
			span.SetStatus(codes.Error, "validation failed")
			return nil, ErrMalformed
		}
	}
	return items, nil
}

// GetByID fetches one menu item regardless of availability.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.GetByID", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	item := new(entity.MenuItem)
	err := r.reader.NewSelect().Model(item).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return item, nil
}

// Create inserts a new menu item.
func (r *Repository) Create(ctx context.Context, item *entity.MenuItem) error {
	if item == nil {
		return errors.New("nil menu item")
	}
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Create", trace.WithAttributes(attribute.String("menu_item.name", item.Name)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(item).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// Update rewrites a menu item's editable fields. Captured order lines keep
// their price snapshots regardless.
func (r *Repository) Update(ctx context.Context, item *entity.MenuItem) error {
	if item == nil {
		return errors.New("nil menu item")
	}
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Update", trace.WithAttributes(attribute.Int64("menu_item.id", item.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(item).
		Column("category", "name", "price", "available").
		Set("updated_at = CURRENT_TIMESTAMP").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// Delete removes a menu item.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "MenuRepository.Delete", trace.WithAttributes(attribute.Int64("menu_item.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().
		Model((*entity.MenuItem)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

package table

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

var repoTracer = otel.Tracer("github.com/restoapp/pos/repository/table")

// ErrNotFound is returned when a table is missing.
var ErrNotFound = errors.New("table not found")

// ErrMalformed is returned when a fetched row fails boundary validation.
var ErrMalformed = errors.New("malformed table row")

// Repository encapsulates read/write access for dining tables.
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

// List returns every table ordered by its visible number.
func (r *Repository) List(ctx context.Context) ([]entity.Table, error) {
	ctx, span := repoTracer.Start(ctx, "TableRepository.List")
	defer span.End()

	var tables []entity.Table
	if err := r.reader.NewSelect().Model(&tables).Order("number ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	for i := range tables {
		if !tables[i].Valid() {
			span.SetStatus(codes.Error, "validation failed")
			return nil, ErrMalformed
		}
	}
	return tables, nil
}

// GetByNumber fetches one table by its externally visible number.
func (r *Repository) GetByNumber(ctx context.Context, number int) (*entity.Table, error) {
	ctx, span := repoTracer.Start(ctx, "TableRepository.GetByNumber", trace.WithAttributes(attribute.Int("table.number", number)))
	defer span.End()

	tbl := new(entity.Table)
	err := r.reader.NewSelect().Model(tbl).Where("number = ?", number).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	if !tbl.Valid() {
		span.SetStatus(codes.Error, "validation failed")
		return nil, ErrMalformed
	}
	return tbl, nil
}

// SetStatus flips a table's occupancy. The write is a single-row update; the
// occupancy invariant itself is re-derived by the next projection sync.
func (r *Repository) SetStatus(ctx context.Context, id int64, status entity.TableStatus) error {
	ctx, span := repoTracer.Start(ctx, "TableRepository.SetStatus", trace.WithAttributes(
		attribute.Int64("table.id", id),
		attribute.String("table.status", string(status)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.Table)(nil)).
		Set("status = ?", status).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
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

// Create inserts a table row; the seeder uses it to provision the floor.
func (r *Repository) Create(ctx context.Context, tbl *entity.Table) error {
	if tbl == nil {
		return errors.New("nil table")
	}
	ctx, span := repoTracer.Start(ctx, "TableRepository.Create", trace.WithAttributes(attribute.Int("table.number", tbl.Number)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(tbl).
		On("CONFLICT (number) DO NOTHING").
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

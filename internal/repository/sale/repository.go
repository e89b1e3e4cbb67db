package sale

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/restoapp/pos/internal/database"
	"github.com/restoapp/pos/internal/entity"
)

var repoTracer = otel.Tracer("github.com/restoapp/pos/repository/sale")

// ErrNotFound is returned when a sale or closure is missing.
var ErrNotFound = errors.New("sale not found")

// ErrDuplicateClosure is returned when the business date already has a
// closure; the second cashier to close the day loses.
var ErrDuplicateClosure = errors.New("register already closed for this date")

// Repository encapsulates settlement records and end-of-day closures.
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

// Create persists a settlement record. Sales are write-once; nothing in the
// codebase updates them afterwards.
func (r *Repository) Create(ctx context.Context, s *entity.Sale) error {
	if s == nil {
		return errors.New("nil sale")
	}
	ctx, span := repoTracer.Start(ctx, "SaleRepository.Create", trace.WithAttributes(
		attribute.Int64("sale.order_id", s.OrderID),
		attribute.Int("sale.table_number", s.TableNumber),
	))
	defer span.End()

	_, err := r.writer.NewInsert().Model(s).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// ListToday returns the business day's sales, oldest first. The day boundary
// is resolved in the given location.
func (r *Repository) ListToday(ctx context.Context, now time.Time, loc *time.Location) ([]entity.Sale, error) {
	ctx, span := repoTracer.Start(ctx, "SaleRepository.ListToday")
	defer span.End()

	start := startOfDay(now, loc)
	var sales []entity.Sale
	err := r.reader.NewSelect().Model(&sales).
		Where("created_at >= ?", start).
		Where("created_at < ?", start.AddDate(0, 0, 1)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return sales, nil
}

// StatsToday aggregates the day's sales in the database, so the figures are
// authoritative even when this process missed change notifications.
func (r *Repository) StatsToday(ctx context.Context, now time.Time, loc *time.Location) (entity.DailyStats, error) {
	ctx, span := repoTracer.Start(ctx, "SaleRepository.StatsToday")
	defer span.End()

	start := startOfDay(now, loc)
	var row struct {
		SaleCount int     `bun:"sale_count"`
		Total     float64 `bun:"total"`
		ItemCount int     `bun:"item_count"`
	}
	err := r.reader.NewSelect().
		Model((*entity.Sale)(nil)).
		ColumnExpr("COUNT(*) AS sale_count").
		ColumnExpr("COALESCE(SUM(total), 0) AS total").
		ColumnExpr("COALESCE(SUM(item_count), 0) AS item_count").
		Where("created_at >= ?", start).
		Where("created_at < ?", start.AddDate(0, 0, 1)).
		Scan(ctx, &row)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return entity.DailyStats{}, err
	}

	stats := entity.DailyStats{
		SaleCount: row.SaleCount,
		Total:     row.Total,
		ItemCount: row.ItemCount,
	}
	if stats.SaleCount > 0 {
		stats.AverageTicket = stats.Total / float64(stats.SaleCount)
	}
	return stats, nil
}

// CreateClosure archives the day. The unique business_date constraint makes
// a racing second closure a detected duplicate instead of a silent one.
func (r *Repository) CreateClosure(ctx context.Context, c *entity.RegisterClosure) error {
	if c == nil {
		return errors.New("nil closure")
	}
	ctx, span := repoTracer.Start(ctx, "SaleRepository.CreateClosure", trace.WithAttributes(attribute.String("closure.date", c.BusinessDate)))
	defer span.End()

	res, err := r.writer.NewInsert().Model(c).
		On("CONFLICT (business_date) DO NOTHING").
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "duplicate closure")
		return ErrDuplicateClosure
	}
	return nil
}

// ListClosures returns the append-only closure log, newest first.
func (r *Repository) ListClosures(ctx context.Context) ([]entity.RegisterClosure, error) {
	ctx, span := repoTracer.Start(ctx, "SaleRepository.ListClosures")
	defer span.End()

	var closures []entity.RegisterClosure
	err := r.reader.NewSelect().Model(&closures).
		Order("business_date DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return closures, nil
}

func startOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

package register

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

	"github.com/restoapp/pos/internal/entity"
	salerepo "github.com/restoapp/pos/internal/repository/sale"
	"github.com/restoapp/pos/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/restoapp/pos/service/register")

// SaleGateway is the slice of sale persistence the register consumes.
type SaleGateway interface {
	ListToday(ctx context.Context, now time.Time, loc *time.Location) ([]entity.Sale, error)
	StatsToday(ctx context.Context, now time.Time, loc *time.Location) (entity.DailyStats, error)
	CreateClosure(ctx context.Context, c *entity.RegisterClosure) error
	ListClosures(ctx context.Context) ([]entity.RegisterClosure, error)
}

// Service owns the cashier's end-of-day workflow. Stats and closures are
// always computed against storage so a process that missed relay events
// still archives ground truth.
type Service struct {
	sales  SaleGateway
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the register over the sale gateway. The business-day
// boundary resolves in loc.
func NewService(sales SaleGateway, loc *time.Location, logger *zap.Logger) *Service {
	return &Service{
		sales:  sales,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// StatsToday returns the running aggregate for the current business day.
func (s *Service) StatsToday(ctx context.Context) (entity.DailyStats, error) {
	ctx, span := serviceTracer.Start(ctx, "RegisterService.StatsToday")
	defer span.End()

	stats, err := s.sales.StatsToday(ctx, s.now(), s.loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stats failed")
		return entity.DailyStats{}, errorbank.Internal("failed to load daily stats", errorbank.WithCause(err))
	}
	return stats, nil
}

// SalesToday lists the day's settlements, oldest first.
func (s *Service) SalesToday(ctx context.Context) ([]entity.Sale, error) {
	ctx, span := serviceTracer.Start(ctx, "RegisterService.SalesToday")
	defer span.End()

	sales, err := s.sales.ListToday(ctx, s.now(), s.loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, errorbank.Internal("failed to load sales", errorbank.WithCause(err))
	}
	return sales, nil
}

// CloseRegister archives the business day. A day with no sales cannot be
// closed, and the unique business date turns a racing second close into a
// rejected conflict.
func (s *Service) CloseRegister(ctx context.Context, cashierID int64) (*entity.RegisterClosure, error) {
	now := s.now()
	businessDate := now.In(s.loc).Format("2006-01-02")
	ctx, span := serviceTracer.Start(ctx, "RegisterService.CloseRegister", trace.WithAttributes(attribute.String("closure.date", businessDate)))
	defer span.End()

	stats, err := s.sales.StatsToday(ctx, now, s.loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stats failed")
		return nil, errorbank.Internal("failed to load daily stats", errorbank.WithCause(err))
	}
	if stats.SaleCount == 0 {
		return nil, errorbank.BadRequest("no sales to close")
	}

	sales, err := s.sales.ListToday(ctx, now, s.loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, errorbank.Internal("failed to load sales", errorbank.WithCause(err))
	}
	salesJSON, err := json.Marshal(sales)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to snapshot sales", errorbank.WithCause(err))
	}

	closure := &entity.RegisterClosure{
		BusinessDate:  businessDate,
		SaleCount:     stats.SaleCount,
		Total:         stats.Total,
		ItemCount:     stats.ItemCount,
		AverageTicket: stats.AverageTicket,
		SalesJSON:     salesJSON,
		CashierID:     cashierID,
		CreatedAt:     now.UTC(),
	}
	if err := s.sales.CreateClosure(ctx, closure); err != nil {
		if errors.Is(err, salerepo.ErrDuplicateClosure) {
			return nil, errorbank.Conflict("register already closed for today")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "closure failed")
		return nil, errorbank.Internal("failed to close register", errorbank.WithCause(err))
	}

	s.logger.Info("register closed",
		zap.String("business_date", businessDate),
		zap.Int("sales", closure.SaleCount),
		zap.Float64("total", closure.Total),
	)
	return closure, nil
}

// Closures returns the archive, newest first.
func (s *Service) Closures(ctx context.Context) ([]entity.RegisterClosure, error) {
	ctx, span := serviceTracer.Start(ctx, "RegisterService.Closures")
	defer span.End()

	closures, err := s.sales.ListClosures(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, errorbank.Internal("failed to load closures", errorbank.WithCause(err))
	}
	return closures, nil
}

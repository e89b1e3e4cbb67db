package register

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/restoapp/pos/internal/dto"
	"github.com/restoapp/pos/internal/entity"
	"github.com/restoapp/pos/internal/presentation/http/response"
	service "github.com/restoapp/pos/internal/service/register"
	"github.com/restoapp/pos/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/restoapp/pos/transport/http/register")

// Handler exposes the cashier's register endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a register Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/register")
	g.GET("/stats", h.stats)
	g.GET("/sales", h.sales)
	g.GET("/closures", h.closures)
	g.POST("/close", h.close)
}

func (h *Handler) stats(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "register.stats")
	defer span.End()

	stats, err := h.svc.StatsToday(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.DailyStatsResponse{
		SaleCount:     stats.SaleCount,
		Total:         stats.Total,
		ItemCount:     stats.ItemCount,
		AverageTicket: stats.AverageTicket,
	}).Build()
}

func (h *Handler) sales(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "register.sales")
	defer span.End()

	sales, err := h.svc.SalesToday(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, toSaleDTO(&sales[i]))
	}
	return b.WithData(out).Build()
}

func (h *Handler) closures(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "register.closures")
	defer span.End()

	closures, err := h.svc.Closures(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	out := make([]dto.ClosureResponse, 0, len(closures))
	for i := range closures {
		out = append(out, toClosureDTO(&closures[i]))
	}
	return b.WithData(out).Build()
}

func (h *Handler) close(c echo.Context) error {
	b := response.New(c)

	var payload dto.CloseRegisterRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "register.close")
	defer span.End()

	closure, err := h.svc.CloseRegister(ctx, payload.CashierID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toClosureDTO(closure)).Build()
}

func toSaleDTO(s *entity.Sale) dto.SaleResponse {
	return dto.SaleResponse{
		ID:          s.ID,
		Receipt:     s.Receipt,
		OrderID:     s.OrderID,
		TableNumber: s.TableNumber,
		Total:       s.Total,
		ItemCount:   s.ItemCount,
		CreatedAt:   s.CreatedAt,
	}
}

func toClosureDTO(c *entity.RegisterClosure) dto.ClosureResponse {
	return dto.ClosureResponse{
		ID:            c.ID,
		BusinessDate:  c.BusinessDate,
		SaleCount:     c.SaleCount,
		Total:         c.Total,
		ItemCount:     c.ItemCount,
		AverageTicket: c.AverageTicket,
		CreatedAt:     c.CreatedAt,
	}
}

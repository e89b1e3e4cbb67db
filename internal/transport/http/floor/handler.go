package floor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/restoapp/pos/internal/dto"
	"github.com/restoapp/pos/internal/entity"
	"github.com/restoapp/pos/internal/presentation/http/response"
	service "github.com/restoapp/pos/internal/service/floor"
	"github.com/restoapp/pos/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/restoapp/pos/transport/http/floor")

// Handler exposes the floor coordinator over HTTP.
type Handler struct {
	coord *service.Coordinator
}

// NewHandler constructs a floor Handler.
func NewHandler(coord *service.Coordinator) *Handler {
	return &Handler{coord: coord}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/floor")
	g.GET("", h.snapshot)
	g.GET("/stream", h.stream)
	g.POST("/resync", h.resync)

	t := g.Group("/tables/:number")
	t.GET("/staged", h.staged)
	t.POST("/stage", h.stage)
	t.POST("/adjust", h.adjust)
	t.POST("/send", h.send)
	t.POST("/settle", h.settle)

	e.POST("/orders/:id/advance", h.advance)
}

func (h *Handler) snapshot(c echo.Context) error {
	return response.New(c).WithData(h.coord.Snapshot()).Build()
}

func (h *Handler) resync(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "floor.resync")
	defer span.End()

	snap, err := h.coord.Resync(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(snap).Build()
}

func (h *Handler) staged(c echo.Context) error {
	b := response.New(c)
	number, err := tableNumber(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(h.coord.Staged(number)).Build()
}

func (h *Handler) stage(c echo.Context) error {
	b := response.New(c)
	number, err := tableNumber(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.StageItemRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	payload.TableNumber = number

	ctx, span := httpTracer.Start(c.Request().Context(), "floor.stage", trace.WithAttributes(
		attribute.Int("table.number", number),
		attribute.Int64("menu_item.id", payload.MenuItemID),
	))
	defer span.End()

	pad, err := h.coord.StageItem(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(pad).Build()
}

func (h *Handler) adjust(c echo.Context) error {
	b := response.New(c)
	number, err := tableNumber(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.AdjustStagedRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	payload.TableNumber = number

	ctx, span := httpTracer.Start(c.Request().Context(), "floor.adjust", trace.WithAttributes(attribute.Int("table.number", number)))
	defer span.End()

	pad, err := h.coord.AdjustStagedQuantity(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(pad).Build()
}

func (h *Handler) send(c echo.Context) error {
	b := response.New(c)
	number, err := tableNumber(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.SendToKitchenRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	payload.TableNumber = number

	ctx, span := httpTracer.Start(c.Request().Context(), "floor.send", trace.WithAttributes(attribute.Int("table.number", number)))
	defer span.End()

	ord, err := h.coord.SendToKitchen(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(ord).Build()
}

func (h *Handler) settle(c echo.Context) error {
	b := response.New(c)
	number, err := tableNumber(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.SettleBillRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	payload.TableNumber = number

	ctx, span := httpTracer.Start(c.Request().Context(), "floor.settle", trace.WithAttributes(attribute.Int("table.number", number)))
	defer span.End()

	sale, err := h.coord.SettleBill(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toSaleDTO(sale)).Build()
}

func (h *Handler) advance(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "floor.advance", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	ord, err := h.coord.AdvanceKitchenState(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(ord).Build()
}

// stream pushes role-shaped snapshots over server-sent events. Each refresh
// replaces the previous view wholesale, so a reconnecting client just picks
// up the latest state.
func (h *Handler) stream(c echo.Context) error {
	role := entity.Role(c.QueryParam("role"))
	if role == "" {
		role = entity.RoleCashier
	}

	sub, cancel, err := h.coord.Subscribe(role)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}
	defer cancel()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-sub:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "data: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func tableNumber(c echo.Context) (int, error) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		return 0, errorbank.BadRequest("invalid table number")
	}
	return number, nil
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
